package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/temptedwithouta/eazy-career-backend/internal/app"
	"github.com/temptedwithouta/eazy-career-backend/internal/config"
	"github.com/temptedwithouta/eazy-career-backend/internal/infrastructure/database"
	"github.com/temptedwithouta/eazy-career-backend/internal/mocks"
	testconfig "github.com/temptedwithouta/eazy-career-backend/internal/tests/config"
)

// TestServer runs the full application over sqlite and miniredis, with
// outgoing email captured instead of sent.
type TestServer struct {
	Server    *httptest.Server
	Container *app.Container
	Notifier  *mocks.MockNotificationService
	Redis     *miniredis.Miniredis
	Client    *http.Client
}

// NewTestServer boots the application for one test
func NewTestServer(t *testing.T, overrides ...func(*config.Config)) *TestServer {
	t.Helper()

	gin.SetMode(gin.TestMode)
	cfg := testconfig.LoadTestConfig(t, overrides...)

	db, err := gorm.Open(sqlite.Open(":memory:"), database.Config(logger.Silent))
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	notifier := mocks.NewMockNotificationService()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	c, err := app.NewContainerWith(context.Background(), cfg, logger, app.Infra{
		DB:       db,
		Redis:    redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		Notifier: notifier,
	})
	if err != nil {
		t.Fatalf("Failed to build container: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	router, err := c.Router()
	if err != nil {
		t.Fatalf("Failed to build router: %v", err)
	}

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &TestServer{
		Server:    srv,
		Container: c,
		Notifier:  notifier,
		Redis:     mr,
		Client:    srv.Client(),
	}
}

// Response is a decoded HTTP response
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// JSON decodes the body into a generic map
func (r Response) JSON(t *testing.T) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(r.Body, &out); err != nil {
		t.Fatalf("Response is not JSON (%d): %s", r.Status, r.Body)
	}
	return out
}

// Token returns data.token from the body
func (r Response) Token(t *testing.T) string {
	t.Helper()
	data, _ := r.JSON(t)["data"].(map[string]interface{})
	token, _ := data["token"].(string)
	if token == "" {
		t.Fatalf("No token in response (%d): %s", r.Status, r.Body)
	}
	return token
}

// Do sends a request. token goes in the Authorization header as is.
func (s *TestServer) Do(t *testing.T, method, path, token string, body interface{}) Response {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, s.Server.URL+path, rd)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read body: %v", err)
	}
	return Response{Status: resp.StatusCode, Header: resp.Header, Body: raw}
}

var otpPattern = regexp.MustCompile(`>(\d+)</p>`)

// LastOTP extracts the code from the most recent captured email
func (s *TestServer) LastOTP(t *testing.T) string {
	t.Helper()
	msg, ok := s.Notifier.LastEmail()
	if !ok {
		t.Fatal("No email captured")
	}
	m := otpPattern.FindStringSubmatch(msg.Body)
	if m == nil {
		t.Fatalf("No code in email body: %s", msg.Body)
	}
	return m[1]
}

// CandidatePayload is a valid candidate registration body
func CandidatePayload(email string) map[string]interface{} {
	return map[string]interface{}{
		"name":        "Jane Doe",
		"email":       email,
		"password":    "Secret1!",
		"dateOfBirth": "1999-05-01",
		"phoneNumber": "081234567890",
		"role":        "Candidate",
		"sfiaScores":  map[string]int{"AIFL": 3, "DTAN": 5},
	}
}

// RecruiterPayload is a valid recruiter registration body
func RecruiterPayload(email string) map[string]interface{} {
	return map[string]interface{}{
		"name":        "Rex Hunter",
		"email":       email,
		"password":    "Secret1!",
		"dateOfBirth": "1988-11-20",
		"phoneNumber": "081298765432",
		"role":        "Recruiter",
		"position":    "Talent Lead",
		"company":     "Acme",
	}
}

// SignIn registers payload and completes the OTP step, returning the
// auth-stage token.
func (s *TestServer) SignIn(t *testing.T, payload map[string]interface{}) string {
	t.Helper()

	resp := s.Do(t, http.MethodPost, "/auth/register", "", payload)
	if resp.Status != http.StatusOK {
		t.Fatalf("Register failed (%d): %s", resp.Status, resp.Body)
	}
	otpToken := resp.Token(t)

	resp = s.Do(t, http.MethodPost, "/auth/verify-otp", otpToken, map[string]string{"otp": s.LastOTP(t)})
	if resp.Status != http.StatusOK {
		t.Fatalf("Verify OTP failed (%d): %s", resp.Status, resp.Body)
	}
	return resp.Token(t)
}
