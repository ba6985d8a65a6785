package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/temptedwithouta/eazy-career-backend/domain"
)

// Envelope is the body shape of every response that has one.
type Envelope struct {
	Data   interface{}          `json:"data,omitempty"`
	Page   *Page                `json:"page,omitempty"`
	Errors *domain.ClientErrors `json:"errors,omitempty"`
}

// Page describes one slice of a paginated listing.
type Page struct {
	Size    int `json:"size"`
	Current int `json:"current"`
	Total   int `json:"total"`
}

// RespondData writes data inside the envelope.
func RespondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{Data: data})
}

// RespondError maps err onto the response. Header errors are a bare 401 and
// server errors a bare status; other client errors carry the field errors.
func RespondError(c *gin.Context, logger *slog.Logger, err error) {
	if ce, ok := domain.AsClientError(err); ok {
		logger.Warn("client error",
			"route", c.FullPath(),
			"status", ce.Status,
			"errors", ce.Errors,
			"error", ce.Err,
		)
		if ce.Errors.HasHeaderErrors() {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.AbortWithStatusJSON(ce.Status, Envelope{Errors: &ce.Errors})
		return
	}

	if se, ok := domain.AsServerError(err); ok {
		logger.Error("server error", "route", c.FullPath(), "status", se.Status, "error", se.Error())
		c.AbortWithStatus(se.Status)
		return
	}

	logger.Error("unhandled error", "route", c.FullPath(), "error", err)
	c.AbortWithStatus(http.StatusInternalServerError)
}

// RejectBare answers any client error with a bare 401 and defers the rest
// to RespondError.
func RejectBare(c *gin.Context, logger *slog.Logger, msg string, err error) {
	if ce, ok := domain.AsClientError(err); ok {
		logger.Warn(msg, "route", c.FullPath(), "status", ce.Status, "errors", ce.Errors, "error", ce.Err)
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	RespondError(c, logger, err)
}
