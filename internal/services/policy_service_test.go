package services

import (
	"errors"
	"testing"

	"github.com/temptedwithouta/eazy-career-backend/domain"
	"github.com/temptedwithouta/eazy-career-backend/internal/infrastructure/auth"
	"github.com/temptedwithouta/eazy-career-backend/internal/mocks"
)

// createPolicyServiceForTest creates a PolicyService with mock Casbin enforcer
func createPolicyServiceForTest(t *testing.T) (*PolicyServiceImpl, *mocks.MockCasbinEnforcer) {
	t.Helper()

	enforcer := mocks.NewMockCasbinEnforcer()
	return NewPolicyServiceWithEnforcer(enforcer), enforcer
}

func TestPolicyServiceImpl_AddPolicy(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(*mocks.MockCasbinEnforcer)
		expectedError error
		expectedSaves int
	}{
		{
			name:          "successful policy addition",
			setupMock:     func(*mocks.MockCasbinEnforcer) {},
			expectedSaves: 1,
		},
		{
			name: "add policy fails",
			setupMock: func(e *mocks.MockCasbinEnforcer) {
				e.AddPolicyFunc = func(params ...interface{}) (bool, error) {
					return false, domain.ErrUnauthorized
				}
			},
			expectedError: domain.ErrUnauthorized,
		},
		{
			name: "save policy fails",
			setupMock: func(e *mocks.MockCasbinEnforcer) {
				e.SavePolicyFunc = func() error { return errors.New("adapter closed") }
			},
			expectedError: errors.New("adapter closed"),
			expectedSaves: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, enforcer := createPolicyServiceForTest(t)
			tt.setupMock(enforcer)

			err := svc.AddPolicy("role_recruiter", "/user/sfiaScore", "GET")

			if tt.expectedError != nil {
				if err == nil || err.Error() != tt.expectedError.Error() {
					t.Fatalf("expected error %v, got %v", tt.expectedError, err)
				}
			} else if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if enforcer.SaveCalls != tt.expectedSaves {
				t.Errorf("expected %d saves, got %d", tt.expectedSaves, enforcer.SaveCalls)
			}
		})
	}
}

func TestPolicyServiceImpl_CheckPermission(t *testing.T) {
	tests := []struct {
		role, resource, action string
		allowed                bool
	}{
		{"role_candidate", "/user", "GET", true},
		{"role_candidate", "/user/sfiaScore", "GET", true},
		{"role_recruiter", "/user", "GET", true},
		{"role_recruiter", "/user/sfiaScore", "GET", false},
		{"role_recruiter", "/user/sfiaScore", "POST", false},
		{"role_recruiter", "/user/password", "PATCH", true},
		{"role_candidate", "/user/sfiaScore", "POST", true},
		{"role_candidate", "/user/email", "GET", false},
		{"role_candidate", "/user", "DELETE", false},
		{"role_unknown", "/user", "GET", false},
	}

	svc, _ := createPolicyServiceForTest(t)
	for _, tt := range tests {
		t.Run(tt.role+" "+tt.action+" "+tt.resource, func(t *testing.T) {
			ok, err := svc.CheckPermission(tt.role, tt.resource, tt.action)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if ok != tt.allowed {
				t.Errorf("expected allowed=%v, got %v", tt.allowed, ok)
			}
		})
	}
}

func TestPolicyServiceImpl_RemovePolicy(t *testing.T) {
	svc, _ := createPolicyServiceForTest(t)

	if err := svc.RemovePolicy("role_recruiter", "/user", "GET"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	ok, _ := svc.CheckPermission("role_recruiter", "/user", "GET")
	if ok {
		t.Error("expected removed policy to deny")
	}
	if n := len(svc.GetPolicies()); n != len(DefaultPolicies)-1 {
		t.Errorf("expected %d remaining policies, got %d", len(DefaultPolicies)-1, n)
	}
}

func TestPolicyServiceImpl_Seed(t *testing.T) {
	t.Run("existing policies are kept once", func(t *testing.T) {
		svc, enforcer := createPolicyServiceForTest(t)

		if err := svc.Seed(DefaultPolicies); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n := len(svc.GetPolicies()); n != len(DefaultPolicies) {
			t.Errorf("expected %d policies, got %d", len(DefaultPolicies), n)
		}
		if enforcer.SaveCalls != 0 {
			t.Errorf("expected no save, got %d", enforcer.SaveCalls)
		}
	})

	t.Run("enforcer failure", func(t *testing.T) {
		svc, enforcer := createPolicyServiceForTest(t)
		enforcer.AddPolicyFunc = func(params ...interface{}) (bool, error) {
			return false, errors.New("adapter closed")
		}

		if err := svc.Seed(DefaultPolicies); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("real enforcer", func(t *testing.T) {
		enforcer, err := auth.NewMemoryEnforcer()
		if err != nil {
			t.Fatalf("memory enforcer: %v", err)
		}
		svc := NewPolicyService(enforcer)

		if err := svc.Seed(DefaultPolicies); err != nil {
			t.Fatalf("seed: %v", err)
		}
		if err := svc.Seed(DefaultPolicies); err != nil {
			t.Fatalf("reseed: %v", err)
		}
		if n := len(svc.GetPolicies()); n != len(DefaultPolicies) {
			t.Errorf("expected %d policies, got %d", len(DefaultPolicies), n)
		}

		ok, err := svc.CheckPermission("role_candidate", "/user/sfiaScore", "GET")
		if err != nil || !ok {
			t.Errorf("expected candidate to read scores, got %v (%v)", ok, err)
		}
		ok, _ = svc.CheckPermission("role_recruiter", "/user/sfiaScore", "GET")
		if ok {
			t.Error("expected recruiter to be denied scores")
		}
	})
}
