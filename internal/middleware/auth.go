package middleware

import (
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"

	"audiotable/internal/utils"
)

const (
	tokenContextKey = "jwt"
	usernameKey     = "username"
)

// AuthMiddleware provides bearer token authentication for API endpoints
type AuthMiddleware struct {
	secret []byte
}

// NewAuthMiddleware creates a new authentication middleware verifying HS256
// tokens signed with secret
func NewAuthMiddleware(secret string) *AuthMiddleware {
	return &AuthMiddleware{
		secret: []byte(secret),
	}
}

// JWTProtected rejects requests without a valid bearer token and stores the
// token subject as the request username
func (m *AuthMiddleware) JWTProtected() fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:    m.secret,
		SigningMethod: jwtware.HS256,
		ContextKey:    tokenContextKey,
		SuccessHandler: func(c *fiber.Ctx) error {
			username := subjectFromToken(c.Locals(tokenContextKey))
			if username == "" {
				return utils.SendUnauthorizedError(c, "Invalid/expired token")
			}
			c.Locals(usernameKey, username)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return utils.SendUnauthorizedError(c, "Invalid/expired token")
		},
	})
}

func subjectFromToken(v interface{}) string {
	token, ok := v.(*jwt.Token)
	if !ok || token == nil {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	sub, _ := claims["sub"].(string)
	return sub
}

// GetUsername returns the authenticated username, or "" for anonymous requests
func GetUsername(c *fiber.Ctx) string {
	username, _ := c.Locals(usernameKey).(string)
	return username
}
