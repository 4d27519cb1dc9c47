package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/civic-triage-api/internal/middleware"
	"github.com/noah-isme/civic-triage-api/internal/models"
	appErrors "github.com/noah-isme/civic-triage-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// pageFromQuery reads the page query parameter, defaulting to 1.
func pageFromQuery(c *gin.Context) (int, error) {
	raw := strings.TrimSpace(c.DefaultQuery("page", "1"))
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "page must be a positive integer")
	}
	return page, nil
}

func invalidPayload(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
}
