package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kmapteam/knowledgemap/internal/app/models"
	"github.com/kmapteam/knowledgemap/internal/app/models/dto"
	"github.com/kmapteam/knowledgemap/internal/pkg/auth"
)

const viewerContextKey = "viewer"

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

func (m *AuthMiddleware) resolveViewer(c *gin.Context) (*models.Viewer, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, nil
	}

	tokenString, err := auth.ExtractBearerToken(authHeader)
	if err != nil {
		return nil, err
	}

	claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
	if err != nil {
		return nil, err
	}

	return &models.Viewer{ID: claims.UserID, IsStaff: claims.IsStaff}, nil
}

func abortTokenError(c *gin.Context, err error) {
	errorCode := dto.ErrorCodeInvalidToken
	details := "Invalid token"
	if errors.Is(err, auth.ErrExpiredToken) {
		errorCode = dto.ErrorCodeExpiredToken
		details = "Token has expired"
	} else if errors.Is(err, auth.ErrInvalidFormat) {
		details = "Invalid token format"
	}

	errorDetail := dto.NewErrorDetail(errorCode, "Authentication failed")
	errorDetail = errorDetail.WithDetails(details)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
}

// JWTAuth requires a valid bearer token and stores the viewer in the context
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
			errorDetail = errorDetail.WithDetails("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		viewer, err := m.resolveViewer(c)
		if err != nil {
			abortTokenError(c, err)
			return
		}

		c.Set(viewerContextKey, viewer)
		c.Next()
	}
}

// OptionalJWTAuth resolves the viewer when a bearer token is present but
// lets anonymous requests through. A present-but-invalid token is still
// rejected rather than silently downgraded to anonymous.
func (m *AuthMiddleware) OptionalJWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer, err := m.resolveViewer(c)
		if err != nil {
			abortTokenError(c, err)
			return
		}

		if viewer != nil {
			c.Set(viewerContextKey, viewer)
		}
		c.Next()
	}
}

// GetViewer returns the authenticated viewer from the context, or nil for
// anonymous requests.
func GetViewer(c *gin.Context) *models.Viewer {
	value, exists := c.Get(viewerContextKey)
	if !exists {
		return nil
	}
	viewer, ok := value.(*models.Viewer)
	if !ok {
		return nil
	}
	return viewer
}

// RequireViewer returns the authenticated viewer or aborts with 401. Meant
// for handlers behind JWTAuth as a guard against miswired routes.
func RequireViewer(c *gin.Context) (*models.Viewer, bool) {
	viewer := GetViewer(c)
	if viewer == nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return nil, false
	}
	return viewer, true
}
