package middleware

import (
	"net/http"
	"os"
	"strings"

	"labqc/internal/model"
	"labqc/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// identityKey is the gin context key holding the verified caller identity.
const identityKey = "identity"

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

// GetIdentity returns the verified caller identity placed by RequireRole.
func GetIdentity(c *gin.Context) (model.Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return model.Identity{}, false
	}
	identity, ok := value.(model.Identity)
	return identity, ok
}

// identityFromToken validates the JWT and rebuilds the caller identity from
// its claims.
func identityFromToken(tokenString string) (model.Identity, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return GetJWTSecret(), nil
	})
	if err != nil || !token.Valid {
		return model.Identity{}, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return model.Identity{}, false
	}

	sub, _ := claims["sub"].(string)
	employeeID, _ := claims["employee_id"].(string)
	role, _ := claims["role"].(string)
	department, _ := claims["department"].(string)

	userID, err := uuid.Parse(sub)
	if err != nil || employeeID == "" || !model.Role(role).Valid() {
		return model.Identity{}, false
	}

	return model.Identity{
		UserID:     userID,
		EmployeeID: employeeID,
		Role:       model.Role(role),
		Department: department,
	}, true
}

// bearerToken extracts the token from the access_token cookie or the
// Authorization header.
func bearerToken(c *gin.Context) (string, bool) {
	if tokenString, err := c.Cookie("access_token"); err == nil && tokenString != "" {
		return tokenString, true
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// RequireRole validates the JWT and checks the caller's role against the
// allowed capability set, then places the verified identity in the context.
func RequireRole(allowed map[model.Role]bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}

		identity, ok := identityFromToken(tokenString)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
			return
		}

		if allowed != nil && !identity.Role.In(allowed) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: insufficient permissions"))
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireAuth accepts any authenticated user regardless of role. Operations
// with finer gates check capability sets in the service layer.
func RequireAuth() gin.HandlerFunc {
	return RequireRole(nil)
}
