package mocks

import (
	"context"
	"regexp"
	"sync"
	"time"

	"github.com/casbin/casbin/v2/util"
	"github.com/temptedwithouta/eazy-career-backend/domain"
)

// MockCasbinEnforcer implements the CasbinEnforcer interface for testing.
// Default Enforce matches like the keyMatch2/regexMatch model.
type MockCasbinEnforcer struct {
	AddPolicyFunc    func(params ...interface{}) (bool, error)
	RemovePolicyFunc func(params ...interface{}) (bool, error)
	EnforceFunc      func(rvals ...interface{}) (bool, error)
	GetPolicyFunc    func() ([][]string, error)
	SavePolicyFunc   func() error

	SaveCalls int
	policies  [][]string
}

// Compile-time interface compliance verification
var _ domain.CasbinEnforcer = (*MockCasbinEnforcer)(nil)

// NewMockCasbinEnforcer creates a new MockCasbinEnforcer with the default role policies
func NewMockCasbinEnforcer() *MockCasbinEnforcer {
	return &MockCasbinEnforcer{
		policies: [][]string{
			{"role_candidate", "/user", "GET"},
			{"role_candidate", "/user", "PUT"},
			{"role_candidate", "/user/password", "PATCH"},
			{"role_candidate", "/user/email", "PATCH"},
			{"role_candidate", "/user/sfiaScore", "GET"},
			{"role_candidate", "/user/sfiaScore", "POST"},
			{"role_recruiter", "/user", "GET"},
			{"role_recruiter", "/user", "PUT"},
			{"role_recruiter", "/user/password", "PATCH"},
			{"role_recruiter", "/user/email", "PATCH"},
		},
	}
}

func toRule(params []interface{}) []string {
	rule := make([]string, 0, len(params))
	for _, p := range params {
		if s, ok := p.(string); ok {
			rule = append(rule, s)
		}
	}
	return rule
}

func (m *MockCasbinEnforcer) indexOf(rule []string) int {
	for i, p := range m.policies {
		if len(p) != len(rule) {
			continue
		}
		match := true
		for j := range p {
			if p[j] != rule[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// AddPolicy adds a new policy rule
func (m *MockCasbinEnforcer) AddPolicy(params ...interface{}) (bool, error) {
	if m.AddPolicyFunc != nil {
		return m.AddPolicyFunc(params...)
	}
	rule := toRule(params)
	if len(rule) < 3 || m.indexOf(rule) >= 0 {
		return false, nil
	}
	m.policies = append(m.policies, rule)
	return true, nil
}

// RemovePolicy removes a policy rule
func (m *MockCasbinEnforcer) RemovePolicy(params ...interface{}) (bool, error) {
	if m.RemovePolicyFunc != nil {
		return m.RemovePolicyFunc(params...)
	}
	i := m.indexOf(toRule(params))
	if i < 0 {
		return false, nil
	}
	m.policies = append(m.policies[:i], m.policies[i+1:]...)
	return true, nil
}

// Enforce checks if a request should be allowed
func (m *MockCasbinEnforcer) Enforce(rvals ...interface{}) (bool, error) {
	if m.EnforceFunc != nil {
		return m.EnforceFunc(rvals...)
	}
	req := toRule(rvals)
	if len(req) < 3 {
		return false, nil
	}
	for _, p := range m.policies {
		if len(p) < 3 || p[0] != req[0] {
			continue
		}
		if !util.KeyMatch2(req[1], p[1]) {
			continue
		}
		if ok, _ := regexp.MatchString("^("+p[2]+")$", req[2]); ok {
			return true, nil
		}
	}
	return false, nil
}

// GetPolicy returns all policy rules
func (m *MockCasbinEnforcer) GetPolicy() ([][]string, error) {
	if m.GetPolicyFunc != nil {
		return m.GetPolicyFunc()
	}
	out := make([][]string, len(m.policies))
	copy(out, m.policies)
	return out, nil
}

// SavePolicy persists policies
func (m *MockCasbinEnforcer) SavePolicy() error {
	m.SaveCalls++
	if m.SavePolicyFunc != nil {
		return m.SavePolicyFunc()
	}
	return nil
}

// MockPolicyService implements domain.PolicyService interface for testing
type MockPolicyService struct {
	AddPolicyFunc       func(role, resource, action string) error
	RemovePolicyFunc    func(role, resource, action string) error
	CheckPermissionFunc func(role, resource, action string) (bool, error)
	GetPoliciesFunc     func() [][]string

	enforcer *MockCasbinEnforcer
}

// NewMockPolicyService creates a new MockPolicyService backed by the default enforcer rules
func NewMockPolicyService() *MockPolicyService {
	return &MockPolicyService{enforcer: NewMockCasbinEnforcer()}
}

func (m *MockPolicyService) AddPolicy(role, resource, action string) error {
	if m.AddPolicyFunc != nil {
		return m.AddPolicyFunc(role, resource, action)
	}
	_, err := m.enforcer.AddPolicy(role, resource, action)
	return err
}

func (m *MockPolicyService) RemovePolicy(role, resource, action string) error {
	if m.RemovePolicyFunc != nil {
		return m.RemovePolicyFunc(role, resource, action)
	}
	_, err := m.enforcer.RemovePolicy(role, resource, action)
	return err
}

func (m *MockPolicyService) CheckPermission(role, resource, action string) (bool, error) {
	if m.CheckPermissionFunc != nil {
		return m.CheckPermissionFunc(role, resource, action)
	}
	return m.enforcer.Enforce(role, resource, action)
}

func (m *MockPolicyService) GetPolicies() [][]string {
	if m.GetPoliciesFunc != nil {
		return m.GetPoliciesFunc()
	}
	p, _ := m.enforcer.GetPolicy()
	return p
}

var _ domain.PolicyService = (*MockPolicyService)(nil)

// MockRateLimiter implements domain.RateLimiter for testing
type MockRateLimiter struct {
	AllowFunc func(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error)
}

// NewMockRateLimiter creates a limiter that allows everything
func NewMockRateLimiter() *MockRateLimiter {
	return &MockRateLimiter{}
}

func (m *MockRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	if m.AllowFunc != nil {
		return m.AllowFunc(ctx, key, limit, window)
	}
	return true, 0, nil
}

var _ domain.RateLimiter = (*MockRateLimiter)(nil)

// MockAuditLogger records audit events
type MockAuditLogger struct {
	mu     sync.Mutex
	Events []*domain.AuditEvent
}

// NewMockAuditLogger creates an empty recorder
func NewMockAuditLogger() *MockAuditLogger {
	return &MockAuditLogger{}
}

func (m *MockAuditLogger) LogEvent(ctx context.Context, event *domain.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return nil
}

// Types returns the recorded event types in order
func (m *MockAuditLogger) Types() []domain.AuditEventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.AuditEventType, 0, len(m.Events))
	for _, e := range m.Events {
		out = append(out, e.EventType)
	}
	return out
}

var _ domain.AuditLogger = (*MockAuditLogger)(nil)
