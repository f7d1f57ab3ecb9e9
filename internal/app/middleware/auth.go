package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mileoa/vehicle-accounting/internal/app/auth"
	"github.com/mileoa/vehicle-accounting/internal/app/ds"
	"github.com/mileoa/vehicle-accounting/internal/app/service"
)

// SessionCookieName - cookie с токеном серверной сессии
const SessionCookieName = "sessionid"

const userKey = "current_user"

// AuthMiddleware - охрана маршрутов: cookie-сессии для веб-страниц,
// Bearer JWT для JSON API
type AuthMiddleware struct {
	sessions   *service.SessionService
	jwtService *auth.JWTService
}

func NewAuthMiddleware(sessions *service.SessionService, jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		sessions:   sessions,
		jwtService: jwtService,
	}
}

// RequireSession - обязательная сессия для веб-страниц.
// Без живой сессии никакие данные о машинах не отдаются ни в каком виде:
// аноним всегда получает redirect на /login/.
func (am *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			c.Redirect(http.StatusFound, "/login/")
			c.Abort()
			return
		}

		user, err := am.sessions.Authorize(token)
		if err != nil {
			c.Redirect(http.StatusFound, "/login/")
			c.Abort()
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// RequireAuth - обязательный Bearer-токен для JSON API
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := am.extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "Authorization token required",
			})
			c.Abort()
			return
		}

		claims, err := am.jwtService.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "Invalid token",
			})
			c.Abort()
			return
		}

		if claims.Type != auth.TokenTypeAccess {
			c.JSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "Invalid token type",
			})
			c.Abort()
			return
		}

		c.Set(userKey, ds.User{ID: claims.UserID, Login: claims.Login, Role: claims.Role})
		c.Next()
	}
}

// extractToken - извлечение токена из заголовка Authorization
func (am *AuthMiddleware) extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// CurrentUser - пользователь текущего запроса из контекста
func CurrentUser(c *gin.Context) (ds.User, bool) {
	value, exists := c.Get(userKey)
	if !exists {
		return ds.User{}, false
	}
	user, ok := value.(ds.User)
	return user, ok
}
