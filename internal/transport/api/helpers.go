package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fsdevblog/creator-market/internal/domain"
	"github.com/fsdevblog/creator-market/internal/transport/api/middlewares"
)

func getUserIDFromContext(c *gin.Context) uuid.UUID {
	userIDVal, exist := c.Get(middlewares.CurrentUserIDKey)
	if !exist {
		return uuid.Nil
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return userID
}

func getUserRoleFromContext(c *gin.Context) domain.UserRole {
	roleVal, exist := c.Get(middlewares.CurrentUserRoleKey)
	if !exist {
		return ""
	}
	role, ok := roleVal.(domain.UserRole)
	if !ok {
		return ""
	}
	return role
}

// parseUUIDParam парсит uuid из параметра пути. При ошибке сам абортит запрос с 400.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// abortWithServiceError транслирует доменные ошибки в http статусы.
// Незнакомая ошибка уходит приватной пятисоткой.
func abortWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrInsufficientFunds):
		_ = c.AbortWithError(http.StatusBadRequest, errors.New("insufficient wallet balance")).
			SetType(gin.ErrorTypePublic)
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidState):
		_ = c.AbortWithError(http.StatusBadRequest, err).SetType(gin.ErrorTypePublic)
	case errors.Is(err, domain.ErrLockTimeout):
		_ = c.AbortWithError(http.StatusConflict, errors.New("wallet is locked by another operation, retry later")).
			SetType(gin.ErrorTypePublic)
	case errors.Is(err, domain.ErrDuplicateKey):
		_ = c.AbortWithError(http.StatusConflict, err).SetType(gin.ErrorTypePublic)
	default:
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
	}
}
