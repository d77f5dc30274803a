package app

import (
	"net/http"

	"lebs_backend/db"
	"lebs_backend/session"

	"github.com/gin-gonic/gin"
)

const AdminSessionCookie = "lebs_session"

// AuthRequired gates every admin endpoint behind the redis-backed session
// cookie. The admin row is re-checked so a deleted account loses access
// immediately.
func AuthRequired(adminSess *session.AdminSessionStore, repo *db.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		ck, err := c.Request.Cookie(AdminSessionCookie)
		if err != nil || ck.Value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		as, err := adminSess.Get(c.Request.Context(), ck.Value)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid session"})
			return
		}

		admin, err := repo.FindAdminByID(c.Request.Context(), as.AdminID)
		if err != nil || !admin.IsVerified {
			_ = adminSess.Delete(c.Request.Context(), ck.Value)
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		c.Set("adminID", admin.ID)
		c.Set("adminEmail", admin.Email)
		c.Set("adminName", admin.FirstName+" "+admin.LastName)

		c.Next()
	}
}

// AdminID reads the authenticated admin from the request context.
func AdminID(c *gin.Context) (uint, bool) {
	v, ok := c.Get("adminID")
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
