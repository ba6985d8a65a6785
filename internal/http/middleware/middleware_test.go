package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temptedwithouta/eazy-career-backend/domain"
	"github.com/temptedwithouta/eazy-career-backend/internal/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMW_RequireSession(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		header         string
		setupMocks     func(*mocks.MockTokenService, *mocks.MockSessionService)
		gate           *SessionGate
		expectedStatus int
	}{
		{
			name:           "raw token accepted",
			header:         "token_1_otp-1",
			setupMocks:     func(*mocks.MockTokenService, *mocks.MockSessionService) {},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "bearer prefix tolerated",
			header:         "Bearer token_1_auth-1",
			setupMocks:     func(*mocks.MockTokenService, *mocks.MockSessionService) {},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing header",
			setupMocks:     func(*mocks.MockTokenService, *mocks.MockSessionService) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "verifier rejects",
			header: "garbage",
			setupMocks: func(tokens *mocks.MockTokenService, _ *mocks.MockSessionService) {
				tokens.VerifyFunc = func(ctx context.Context, raw string) (*domain.AccessClaims, error) {
					return nil, domain.Unauthorized("headers.authorization.payload.exp", "Expired", domain.ErrTokenExpired)
				}
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "otp token refused by user auth gate",
			header:         "token_1_otp-1",
			setupMocks:     func(*mocks.MockTokenService, *mocks.MockSessionService) {},
			gate:           &UserAuthOnly,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "auth token admitted by user auth gate",
			header:         "token_1_auth-1",
			setupMocks:     func(*mocks.MockTokenService, *mocks.MockSessionService) {},
			gate:           &UserAuthOnly,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unknown jti kind",
			header:         "token_1_refresh-1",
			setupMocks:     func(*mocks.MockTokenService, *mocks.MockSessionService) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "session type not allowed",
			header: "token_1_otp-1",
			setupMocks: func(_ *mocks.MockTokenService, sessions *mocks.MockSessionService) {
				sessions.CheckFunc = func(ctx context.Context, id uint, allowed []string) (*domain.Session, error) {
					return nil, domain.Unauthorized("headers.authorization", "Session type not valid", domain.ErrSessionTypeInvalid)
				}
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "session belongs to someone else",
			header: "token_1_auth-1",
			setupMocks: func(_ *mocks.MockTokenService, sessions *mocks.MockSessionService) {
				sessions.CheckFunc = func(ctx context.Context, id uint, allowed []string) (*domain.Session, error) {
					return &domain.Session{ID: id, UserID: 2, ExpiredAt: time.Now().Add(time.Hour)}, nil
				}
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "session lookup server error keeps status",
			header: "token_1_auth-1",
			setupMocks: func(_ *mocks.MockTokenService, sessions *mocks.MockSessionService) {
				sessions.CheckFunc = func(ctx context.Context, id uint, allowed []string) (*domain.Session, error) {
					return nil, domain.NewServerError("session type not found", errors.New("missing row"))
				}
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := mocks.NewMockTokenService()
			sessions := mocks.NewMockSessionService()
			tt.setupMocks(tokens, sessions)
			mw := NewAuthMW(tokens, sessions, discardLogger())
			gate := AnyStage
			if tt.gate != nil {
				gate = *tt.gate
			}

			r := gin.New()
			r.GET("/p", mw.RequireSession(gate), func(c *gin.Context) {
				claims, ok := ClaimsFrom(c)
				require.True(t, ok)
				userID, ok := UserIDFrom(c)
				require.True(t, ok)
				assert.Equal(t, uint(1), userID)

				raw, ok := c.Get(RawClaimsKey)
				require.True(t, ok)
				var decoded domain.AccessClaims
				require.NoError(t, json.Unmarshal(raw.(json.RawMessage), &decoded))
				assert.Equal(t, claims.Payload.Jti, decoded.Payload.Jti)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/p", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				assert.Empty(t, w.Body.String(), "rejections carry no body")
			}
		})
	}
}

func TestAuthMW_PassesAllowedTypes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var got []string
	sessions := mocks.NewMockSessionService()
	sessions.CheckFunc = func(ctx context.Context, id uint, allowed []string) (*domain.Session, error) {
		got = allowed
		return &domain.Session{ID: id, UserID: 1}, nil
	}
	mw := NewAuthMW(mocks.NewMockTokenService(), sessions, discardLogger())

	r := gin.New()
	r.GET("/p", mw.RequireSession(UserAuthOnly), func(c *gin.Context) { c.Status(http.StatusOK) })
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "token_1_auth-9")

	w := serve(r, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{domain.SessionTypeUserAuth}, got)
}

func withProfile(p *domain.UserProfile) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(UserIDKey, p.User.ID)
		c.Set(ProfileKey, p)
		c.Next()
	}
}

func TestCasbinMW_Enforce(t *testing.T) {
	gin.SetMode(gin.TestMode)

	candidate := &domain.UserProfile{User: domain.User{ID: 1}, Role: domain.NewCandidateRole(domain.CandidateProfile{})}
	recruiter := &domain.UserProfile{User: domain.User{ID: 2}, Role: domain.NewRecruiterRole(domain.RecruiterProfile{})}

	tests := []struct {
		name           string
		profile        *domain.UserProfile
		path           string
		expectedStatus int
		expectedEvent  domain.AuditEventType
	}{
		{"candidate reads scores", candidate, "/user/sfiaScore", http.StatusOK, domain.AccessGrantedEvent},
		{"recruiter denied scores", recruiter, "/user/sfiaScore", http.StatusForbidden, domain.AccessDeniedEvent},
		{"recruiter reads profile", recruiter, "/user", http.StatusOK, domain.AccessGrantedEvent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			audit := mocks.NewMockAuditLogger()
			mw := NewCasbinMW(mocks.NewMockPolicyService(), audit, discardLogger())

			r := gin.New()
			r.Use(withProfile(tt.profile), mw.Enforce())
			ok := func(c *gin.Context) { c.Status(http.StatusOK) }
			r.GET("/user", ok)
			r.GET("/user/sfiaScore", ok)

			w := serve(r, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			require.Len(t, audit.Events, 1)
			assert.Equal(t, tt.expectedEvent, audit.Events[0].EventType)
			assert.Equal(t, tt.profile.Role.PolicySubject(), audit.Events[0].Metadata["subject"])
		})
	}
}

func TestCasbinMW_EnforcerError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	policy := mocks.NewMockPolicyService()
	policy.CheckPermissionFunc = func(role, resource, action string) (bool, error) {
		return false, errors.New("adapter down")
	}
	mw := NewCasbinMW(policy, nil, discardLogger())

	r := gin.New()
	r.Use(withProfile(&domain.UserProfile{User: domain.User{ID: 1}, Role: domain.NewCandidateRole(domain.CandidateProfile{})}), mw.Enforce())
	r.GET("/user", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/user", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRoleMW_Resolve(t *testing.T) {
	gin.SetMode(gin.TestMode)

	calls := 0
	authSvc := mocks.NewMockAuthService()
	authSvc.ProfileFunc = func(ctx context.Context, userID uint) (*domain.UserProfile, error) {
		calls++
		if userID != 1 {
			return nil, domain.Unauthorized("headers.authorization.payload.sub", "Not valid", domain.ErrUserNotFound)
		}
		return &domain.UserProfile{User: domain.User{ID: 1}, Role: domain.NewCandidateRole(domain.CandidateProfile{})}, nil
	}
	mw := NewRoleMW(authSvc, discardLogger())

	setUser := func(id uint) gin.HandlerFunc {
		return func(c *gin.Context) { c.Set(UserIDKey, id); c.Next() }
	}

	r := gin.New()
	r.GET("/ok", setUser(1), mw.Resolve(), mw.Resolve(), func(c *gin.Context) {
		p, ok := ProfileFrom(c)
		require.True(t, ok)
		assert.Equal(t, domain.RoleCandidate, p.Role.Kind)
		c.Status(http.StatusOK)
	})
	r.GET("/gone", setUser(2), mw.Resolve(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/anon", mw.Resolve(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/ok", nil)).Code)
	assert.Equal(t, 1, calls, "profile is loaded once per request")
	assert.Equal(t, http.StatusUnauthorized, serve(r, httptest.NewRequest(http.MethodGet, "/gone", nil)).Code)
	assert.Equal(t, http.StatusInternalServerError, serve(r, httptest.NewRequest(http.MethodGet, "/anon", nil)).Code)
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var keys []string
	limiter := mocks.NewMockRateLimiter()
	limiter.AllowFunc = func(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
		keys = append(keys, key)
		if len(keys) > limit {
			return false, 1500 * time.Millisecond, nil
		}
		return true, 0, nil
	}

	r := gin.New()
	r.GET("/x", RateLimit(limiter, "auth", 2, time.Hour, discardLogger()), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
	assert.Equal(t, "auth:192.0.2.1", keys[0])
}

func TestRateLimit_LimiterDown(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := mocks.NewMockRateLimiter()
	limiter.AllowFunc = func(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
		return false, 0, errors.New("dial tcp: connection refused")
	}

	r := gin.New()
	r.GET("/x", RateLimit(limiter, "user", 1, time.Hour, discardLogger()), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestID(), AccessLog(discardLogger()))
	r.GET("/x", func(c *gin.Context) {
		cc := domain.ClientContextFrom(c.Request.Context())
		require.NotNil(t, cc)
		c.String(http.StatusOK, cc.RequestID)
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	id := w.Header().Get(RequestIDHeader)
	assert.Len(t, id, 36)
	assert.Equal(t, id, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	w = serve(r, req)
	assert.Equal(t, "upstream-id", w.Header().Get(RequestIDHeader))
}
