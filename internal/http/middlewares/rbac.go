package middlewares

import (
	"net/http"
	"strconv"

	"github.com/edutrackpro/edutrack/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// RequireRole gates a route on an explicit role set. The allowed roles are
// fixed per route at wiring time; they are never derived from request input,
// so the role a client claimed at login can never widen its access.
func (m *AuthMiddleware) RequireRole(allowed ...user.Role) gin.HandlerFunc {
	set := make(map[user.Role]struct{}, len(allowed))

	for _, r := range allowed {
		set[r] = struct{}{}
	}

	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)

		if !ok || claims == nil {
			abortUnauthorized(c, "Missing identity context")
			return
		}

		if _, ok := set[claims.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "Insufficient permissions",
				},
			})
			return
		}
		c.Next()
	}
}

// RequireParentParam checks the :parentId path parameter against the
// authenticated claim. A parent may only address their own subtree; admins
// are exempt. This runs before any aggregation query is issued.
//
// Child ownership is NOT checked here; that is re-proven against the live
// student row inside the analytics engine.
func (m *AuthMiddleware) RequireParentParam() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)

		if !ok || claims == nil {
			abortUnauthorized(c, "Missing identity context")
			return
		}

		if claims.Role == user.RoleAdmin {
			c.Next()
			return
		}

		parentID, err := strconv.ParseInt(c.Param("parentId"), 10, 64)

		if err != nil || parentID != claims.UserID {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "Cannot access another parent's data",
				},
			})
			return
		}

		c.Next()
	}
}
