package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/stackitdev/stackit/pkg/errors"
	"github.com/stackitdev/stackit/pkg/response"
)

// Health returns a status payload useful for readiness checks. The store is
// pinged on every call; an unreachable store reports service unavailable.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(requestContext(c))
			}
			if err != nil {
				response.Error(c, errors.ErrServiceUnavailable)
				return
			}
		}

		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	}
}
