package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/garyjia/trip-expenses/internal/domain/entity"
)

const principalKey = "principal"

// ErrUnauthenticated is returned for missing, malformed or expired access tokens
var ErrUnauthenticated = errors.New("unauthenticated")

// AccessClaims are the claims of a Supabase-issued access token
type AccessClaims struct {
	jwt.RegisteredClaims
	Email        string                 `json:"email"`
	Role         string                 `json:"role"`
	AppMetadata  map[string]interface{} `json:"app_metadata"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
}

// Authenticator verifies HS256 access tokens signed with the project's JWT secret
type Authenticator struct {
	secret []byte
	leeway time.Duration
}

// NewAuthenticator creates an Authenticator
func NewAuthenticator(secret string) (*Authenticator, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &Authenticator{secret: []byte(secret), leeway: 30 * time.Second}, nil
}

// Authenticate verifies token and returns its caller
func (a *Authenticator) Authenticate(token string) (entity.Principal, error) {
	var claims AccessClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithLeeway(a.leeway), jwt.WithExpirationRequired())
	if err != nil {
		return entity.Principal{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if claims.Subject == "" {
		return entity.Principal{}, fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}

	// roles come from app_metadata only; user_metadata is user-writable
	role := entity.RoleRegular
	if metadataRole(claims.AppMetadata) == string(entity.RoleAdmin) {
		role = entity.RoleAdmin
	}

	return entity.Principal{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   role,
	}, nil
}

// Middleware rejects requests without a valid bearer token
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "missing bearer token",
			})
			return
		}

		principal, err := a.Authenticate(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "invalid or expired token",
			})
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

func metadataRole(metadata map[string]interface{}) string {
	if role, ok := metadata["role"].(string); ok {
		return strings.ToLower(role)
	}
	return ""
}

func principalFrom(c *gin.Context) entity.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(entity.Principal); ok {
			return p
		}
	}
	return entity.Principal{}
}
