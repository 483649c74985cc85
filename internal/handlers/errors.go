package handlers

import (
	"errors"
	"net/http"
	"tailor_shop/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respondError writes the status and body for a service error.
func respondError(c *gin.Context, err error) {
	var (
		transitionErr  *services.InvalidTransitionError
		overpaymentErr *services.OverpaymentError
	)

	switch {
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":            transitionErr.Error(),
			"current_status":   transitionErr.From,
			"requested_status": transitionErr.To,
			"allowed_statuses": transitionErr.Allowed,
		})
	case errors.As(err, &overpaymentErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     overpaymentErr.Error(),
			"attempted": overpaymentErr.Attempted.StringFixed(2),
			"remaining": overpaymentErr.Remaining.StringFixed(2),
		})
	case errors.Is(err, services.ErrOrderItemNotFound), errors.Is(err, services.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidAmount), errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrPriceLocked), errors.Is(err, services.ErrItemBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		// PersistenceError and anything unexpected; details stay in the request log.
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// respondBindError reports malformed request bodies, listing the failing fields when the
// validator produced them.
func respondBindError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make(map[string]string, len(validationErrors))
		for _, fe := range validationErrors {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
}
