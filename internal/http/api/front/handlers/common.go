package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/foodbridge-dev/foodbridge/internal/access"
	"github.com/foodbridge-dev/foodbridge/internal/donations"
	"github.com/foodbridge-dev/foodbridge/internal/points"
	"github.com/foodbridge-dev/foodbridge/internal/status"
)

// identityKey is the gin context key the auth middleware stores the caller under.
const identityKey = "identity"

// getIdentity returns the caller identity resolved by the auth middleware.
func getIdentity(c *gin.Context) access.Identity {
	val, exists := c.Get(identityKey)
	if !exists {
		return access.Identity{}
	}
	id, ok := val.(access.Identity)
	if !ok {
		return access.Identity{}
	}
	return id
}

// getChecker returns an access checker for the current caller.
func getChecker(c *gin.Context) access.Checker {
	return access.NewChecker(getIdentity(c))
}

// parseIDParam parses a positive numeric path parameter.
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	parsed, errParse := strconv.ParseUint(c.Param(name), 10, 64)
	if errParse != nil || parsed == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return parsed, true
}

// parseDate parses an optional YYYY-MM-DD body field. A parse failure writes
// the error response and returns ok=false.
func parseDate(c *gin.Context, raw, field string) (*time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, true
	}
	parsed, errParse := time.Parse("2006-01-02", trimmed)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + field + ", expected YYYY-MM-DD"})
		return nil, false
	}
	return &parsed, true
}

// containsString reports whether target appears in values.
func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

// formatID renders a numeric ID for string interpolation.
func formatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// writeDomainError maps domain errors onto HTTP status codes.
func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, access.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, access.ErrForbidden),
		errors.Is(err, donations.ErrReserveSelfOnly):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, points.ErrAccountNotFound),
		errors.Is(err, donations.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, points.ErrInvalidAmount),
		errors.Is(err, points.ErrInsufficientBalance),
		errors.Is(err, status.ErrInvalidStatus),
		errors.Is(err, status.ErrInvalidTransition),
		errors.Is(err, donations.ErrNotAvailable),
		errors.Is(err, donations.ErrRecipientRequired),
		errors.Is(err, donations.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
