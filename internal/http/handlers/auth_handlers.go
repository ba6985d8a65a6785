package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/temptedwithouta/eazy-career-backend/domain"
	"github.com/temptedwithouta/eazy-career-backend/internal/http/middleware"
)

// AuthHandlers handles the login, registration and OTP routes
type AuthHandlers struct {
	authSvc   domain.AuthService
	tokenSvc  domain.TokenService
	validator *Validator
	logger    *slog.Logger
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authSvc domain.AuthService, tokenSvc domain.TokenService, v *Validator, logger *slog.Logger) *AuthHandlers {
	return &AuthHandlers{
		authSvc:   authSvc,
		tokenSvc:  tokenSvc,
		validator: v,
		logger:    logger.With("component", "auth_handlers"),
	}
}

// RegisterRequest represents registration request
type RegisterRequest struct {
	Name        string         `json:"name" binding:"required,min=2,max=500"`
	Email       string         `json:"email" binding:"required,email,min=5,max=500"`
	Password    string         `json:"password" binding:"required,password"`
	DateOfBirth string         `json:"dateOfBirth" binding:"required,datetime=2006-01-02"`
	PhoneNumber string         `json:"phoneNumber" binding:"required,digits"`
	Role        string         `json:"role" binding:"required,min=2,max=500"`
	SfiaScores  map[string]int `json:"sfiaScores,omitempty"`
	Position    *string        `json:"position,omitempty" binding:"omitempty,min=2,max=500"`
	Company     *string        `json:"company,omitempty" binding:"omitempty,min=2,max=500"`
}

func (r *RegisterRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Password = strings.TrimSpace(r.Password)
	r.DateOfBirth = strings.TrimSpace(r.DateOfBirth)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	r.Role = strings.TrimSpace(r.Role)
	trimPtr(r.Position)
	trimPtr(r.Company)
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,min=5,max=500"`
	Password string `json:"password" binding:"required,min=8,max=20"`
}

func (r *LoginRequest) normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.Password = strings.TrimSpace(r.Password)
}

// SendOTPRequest optionally redirects the code to another address
type SendOTPRequest struct {
	Email *string `json:"email,omitempty" binding:"omitempty,email,min=5,max=500"`
}

func (r *SendOTPRequest) normalize() { trimPtr(r.Email) }

// VerifyOTPRequest represents OTP verification request
type VerifyOTPRequest struct {
	OTP string `json:"otp" binding:"required,otp"`
}

func (r *VerifyOTPRequest) normalize() { r.OTP = strings.TrimSpace(r.OTP) }

func parseDateOfBirth(s string) (time.Time, error) {
	dob, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, domain.NewClientError(http.StatusBadRequest, domain.OriginBody,
			domain.FieldErrors{}.With("body.dateOfBirth", "Not valid"), err)
	}
	return dob, nil
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

// Register handles user registration
func (h *AuthHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := h.validator.Bind(c, &req); err != nil {
		RespondError(c, h.logger, err)
		return
	}

	dob, err := parseDateOfBirth(req.DateOfBirth)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	result, err := h.authSvc.Register(c.Request.Context(), domain.RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		DateOfBirth: dob,
		PhoneNumber: req.PhoneNumber,
		Role:        req.Role,
		SfiaScores:  req.SfiaScores,
		Position:    req.Position,
		Company:     req.Company,
	})
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondData(c, http.StatusOK, gin.H{"token": result.Token})
}

// Login handles user login. Every client error is answered with a bare 401.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := h.validator.Bind(c, &req); err != nil {
		RejectBare(c, h.logger, "login rejected", err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RejectBare(c, h.logger, "login rejected", err)
		return
	}

	RespondData(c, http.StatusOK, gin.H{"token": result.Token})
}

// SendOTP issues a fresh code for the token's user. Every client error is
// answered with a bare 401.
func (h *AuthHandlers) SendOTP(c *gin.Context) {
	var req SendOTPRequest
	if err := h.validator.Bind(c, &req); err != nil {
		RejectBare(c, h.logger, "send otp rejected", err)
		return
	}

	userID, ok := middleware.UserIDFrom(c)
	if !ok {
		RespondError(c, h.logger, domain.NewServerError("send otp", domain.ErrUnauthorized))
		return
	}

	if err := h.authSvc.SendOTP(c.Request.Context(), userID, req.Email); err != nil {
		RejectBare(c, h.logger, "send otp rejected", err)
		return
	}
	c.Status(http.StatusOK)
}

// VerifyOTP checks the code. An otp-stage token is exchanged for an auth
// token; an auth token gets an empty 200.
func (h *AuthHandlers) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := h.validator.Bind(c, &req); err != nil {
		RespondError(c, h.logger, err)
		return
	}

	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		RespondError(c, h.logger, domain.NewServerError("verify otp", domain.ErrUnauthorized))
		return
	}

	result, err := h.authSvc.VerifyOTP(c.Request.Context(), claims, req.OTP)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	if result == nil {
		c.Status(http.StatusOK)
		return
	}
	RespondData(c, http.StatusOK, gin.H{"token": result.Token})
}

// JWKS publishes every verification key
func (h *AuthHandlers) JWKS(c *gin.Context) {
	doc, err := h.tokenSvc.JWKS(c.Request.Context())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondData(c, http.StatusOK, doc)
}
