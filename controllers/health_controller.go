package controllers

import (
	"net/http"

	"github.com/campuscarry/campuscarry-api/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	db *gorm.DB
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{db: db}
}

// Health handles GET /api/v1/health
func (h *HealthController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "CampusCarry API is running",
	})
}

// DatabaseStatus handles GET /api/v1/database/status - connectivity and table list
func (h *HealthController) DatabaseStatus(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err != nil {
		_ = c.Error(err)
		abortWithError(c, services.CodeUnexpected, "Failed to get database instance")
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"error": "Database connection failed",
			"code":  services.CodeUnexpected,
		})
		return
	}

	tables, err := h.db.WithContext(c.Request.Context()).Migrator().GetTables()
	if err != nil {
		_ = c.Error(err)
		abortWithError(c, services.CodeUnexpected, "Failed to query tables")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Database connected",
		"tables":  tables,
	})
}
