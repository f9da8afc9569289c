package devserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"onlineshop/internal/domain"
)

const currentUserKey = "currentUser"

// authRequired validates the bearer token and loads the user it belongs to.
// A token whose user no longer exists is treated the same as an invalid one.
func authRequired(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respondErr(c, http.StatusUnauthorized, "Authentication required")
			c.Abort()
			return
		}
		userID, err := parseToken(deps.JWTSecret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			respondErr(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}
		user, err := deps.Users.GetByID(c.Request.Context(), userID)
		if err != nil {
			respondErr(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}
		c.Set(currentUserKey, *user)
		c.Next()
	}
}

// adminOnly assumes authRequired already ran.
func adminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user.Role != domain.RoleAdmin {
			respondErr(c, http.StatusForbidden, "Admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) domain.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return domain.User{}
	}
	user, _ := v.(domain.User)
	return user
}
