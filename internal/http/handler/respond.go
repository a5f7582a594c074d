package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Ahammedsa/server-site-fitenss/internal/domain"
	"github.com/Ahammedsa/server-site-fitenss/internal/service/lifecycle"
)

func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, lifecycle.ErrMissingEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNoChange):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No changes were made"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized access"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Forbidden Access"})
	default:
		zap.L().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bindDocument decodes a JSON object body. An empty body yields an empty
// document so that the missing-email check reports the problem.
func bindDocument(c *gin.Context) (domain.Document, bool) {
	var doc domain.Document
	if err := c.ShouldBindJSON(&doc); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return nil, false
	}
	if doc == nil {
		doc = domain.Document{}
	}
	return doc, true
}
