package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/temptedwithouta/eazy-career-backend/domain"
	"github.com/temptedwithouta/eazy-career-backend/internal/http/middleware"
)

// UserHandlers serves the signed-in user's own records
type UserHandlers struct {
	userSvc   domain.UserService
	validator *Validator
	logger    *slog.Logger
}

func NewUserHandlers(userSvc domain.UserService, v *Validator, logger *slog.Logger) *UserHandlers {
	return &UserHandlers{
		userSvc:   userSvc,
		validator: v,
		logger:    logger.With("component", "user_handlers"),
	}
}

// UpdateUserRequest replaces the account fields. Omitted candidate fields
// keep their stored values; recruiters must send position and company.
type UpdateUserRequest struct {
	Name        string  `json:"name" binding:"required,min=2,max=500"`
	DateOfBirth string  `json:"dateOfBirth" binding:"required,datetime=2006-01-02"`
	PhoneNumber string  `json:"phoneNumber" binding:"required,digits"`
	Portfolio   *string `json:"portofolio,omitempty" binding:"omitempty,url,min=2,max=500"`
	AboutMe     *string `json:"aboutMe,omitempty" binding:"omitempty,min=2,max=2000"`
	Domicile    *string `json:"domicile,omitempty" binding:"omitempty,min=2,max=2000"`
	Position    *string `json:"position,omitempty" binding:"omitempty,min=2,max=500"`
	Company     *string `json:"company,omitempty" binding:"omitempty,min=2,max=500"`
}

func (r *UpdateUserRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.DateOfBirth = strings.TrimSpace(r.DateOfBirth)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	trimPtr(r.Portfolio)
	trimPtr(r.AboutMe)
	trimPtr(r.Domicile)
	trimPtr(r.Position)
	trimPtr(r.Company)
}

type UpdatePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required,password"`
	NewPassword string `json:"newPassword" binding:"required,password"`
}

func (r *UpdatePasswordRequest) normalize() {
	r.OldPassword = strings.TrimSpace(r.OldPassword)
	r.NewPassword = strings.TrimSpace(r.NewPassword)
}

type UpdateEmailRequest struct {
	NewEmail string `json:"newEmail" binding:"required,email,min=5,max=500"`
}

func (r *UpdateEmailRequest) normalize() { r.NewEmail = strings.TrimSpace(r.NewEmail) }

type UpdateSfiaScoreRequest struct {
	SfiaScores map[string]int `json:"sfiaScores" binding:"required"`
}

// Profile returns the caller's profile for its role
func (h *UserHandlers) Profile(c *gin.Context) {
	profile, ok := middleware.ProfileFrom(c)
	if !ok {
		RespondError(c, h.logger, domain.NewServerError("profile not resolved", nil))
		return
	}
	RespondData(c, http.StatusOK, gin.H{"user": profile.View()})
}

// SfiaScore returns the candidate's SFIA scores by category
func (h *UserHandlers) SfiaScore(c *gin.Context) {
	profile, ok := middleware.ProfileFrom(c)
	if !ok {
		RespondError(c, h.logger, domain.NewServerError("profile not resolved", nil))
		return
	}
	candidate := profile.Role.Candidate
	if candidate == nil {
		RespondError(c, h.logger, domain.NewServerError("candidate profile missing", domain.ErrRoleNotFound))
		return
	}

	scores := candidate.SfiaScores
	if scores == nil {
		scores = map[string]int{}
	}
	RespondData(c, http.StatusOK, gin.H{"sfiaScores": scores})
}

func (h *UserHandlers) subject(c *gin.Context, op string) (uint, bool) {
	userID, ok := middleware.UserIDFrom(c)
	if !ok {
		RespondError(c, h.logger, domain.NewServerError(op, domain.ErrUnauthorized))
	}
	return userID, ok
}

// Update replaces the caller's account fields
func (h *UserHandlers) Update(c *gin.Context) {
	var req UpdateUserRequest
	if err := h.validator.Bind(c, &req); err != nil {
		RespondError(c, h.logger, err)
		return
	}
	dob, err := parseDateOfBirth(req.DateOfBirth)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	userID, ok := h.subject(c, "update user")
	if !ok {
		return
	}

	_, err = h.userSvc.Update(c.Request.Context(), userID, domain.UpdateUserInput{
		Name:        req.Name,
		DateOfBirth: dob,
		PhoneNumber: req.PhoneNumber,
		Portfolio:   req.Portfolio,
		AboutMe:     req.AboutMe,
		Domicile:    req.Domicile,
		Position:    req.Position,
		Company:     req.Company,
	})
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusOK)
}

// UpdatePassword changes the caller's password. Every client error is
// answered with a bare 401.
func (h *UserHandlers) UpdatePassword(c *gin.Context) {
	var req UpdatePasswordRequest
	if err := h.validator.Bind(c, &req); err != nil {
		RejectBare(c, h.logger, "password change rejected", err)
		return
	}
	userID, ok := h.subject(c, "update password")
	if !ok {
		return
	}

	if _, err := h.userSvc.UpdatePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		RejectBare(c, h.logger, "password change rejected", err)
		return
	}
	c.Status(http.StatusOK)
}

// UpdateEmail moves the caller's account to a new address
func (h *UserHandlers) UpdateEmail(c *gin.Context) {
	var req UpdateEmailRequest
	if err := h.validator.Bind(c, &req); err != nil {
		RespondError(c, h.logger, err)
		return
	}
	userID, ok := h.subject(c, "update email")
	if !ok {
		return
	}

	if _, err := h.userSvc.UpdateEmail(c.Request.Context(), userID, req.NewEmail); err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusOK)
}

// UpdateSfiaScore upserts the candidate's SFIA scores
func (h *UserHandlers) UpdateSfiaScore(c *gin.Context) {
	var req UpdateSfiaScoreRequest
	if err := h.validator.Bind(c, &req); err != nil {
		RespondError(c, h.logger, err)
		return
	}
	userID, ok := h.subject(c, "update sfia scores")
	if !ok {
		return
	}

	if _, err := h.userSvc.UpdateSfiaScores(c.Request.Context(), userID, req.SfiaScores); err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusOK)
}
