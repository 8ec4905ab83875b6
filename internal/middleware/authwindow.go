package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"squadup/backend/internal/models"
)

// AuthWindow limits auth endpoints (login, register) with a per-IP window
// counter kept in the database, so the limit holds across server restarts and
// replicas. At most max requests are allowed per window.
func AuthWindow(db *gorm.DB, window time.Duration, max int) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "auth:" + c.ClientIP()
		now := time.Now()
		allowed := true

		err := db.Transaction(func(tx *gorm.DB) error {
			var w models.RateWindow
			err := tx.Where("key = ?", key).First(&w).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return tx.Create(&models.RateWindow{Key: key, WindowStart: now, Count: 1}).Error
			}
			if err != nil {
				return err
			}
			if now.Sub(w.WindowStart) > window {
				w.WindowStart = now
				w.Count = 1
			} else {
				w.Count++
				if w.Count > max {
					allowed = false
				}
			}
			return tx.Save(&w).Error
		})
		if err != nil {
			// Fail open: a broken limiter must not lock everyone out.
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts, try again later"})
			return
		}
		c.Next()
	}
}
