// app/seenmw.go
package app

import (
	"fmt"
	"time"

	"lebs_backend/db"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// TouchLastSeen stamps the admin's last_seen_at at most once per throttle
// window, using a redis SetNX as the cheap gate.
func TouchLastSeen(repo *db.Repo, rdb *redis.Client, throttle time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := AdminID(c)
		if !ok {
			c.Next()
			return
		}

		key := fmt.Sprintf("lebs:admin:lastseen:%d", id)
		if ok, _ := rdb.SetNX(c, key, "1", throttle).Result(); ok {
			_ = repo.TouchAdminSeen(c, id) // 忽略错误，不阻塞请求
		}
		c.Next()
	}
}
