package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Hems566/eter-projectv1.0/config"
	"github.com/Hems566/eter-projectv1.0/internal/api/handler"
	"github.com/Hems566/eter-projectv1.0/internal/api/middleware"
	"github.com/Hems566/eter-projectv1.0/internal/model"
	"github.com/Hems566/eter-projectv1.0/pkg/jwt"
	"github.com/Hems566/eter-projectv1.0/pkg/redis"
)

const maxBodyBytes = 1 << 20

// Setup builds the gin engine.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	admin := string(model.RoleAdmin)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/auth/login", middleware.RateLimit(rdb, cfg.Auth.LoginRateLimit, time.Minute), h.Auth.Login)

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb, logger))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			users := authorized.Group("/users", middleware.RoleAuth(admin))
			{
				users.GET("", h.Auth.ListUsers)
				users.POST("", h.Auth.CreateUser)
			}

			// capabilities are checked by the services; routes only need a token
			catalog := authorized.Group("/catalog/items")
			{
				catalog.GET("", h.Catalog.ListItems)
				catalog.GET("/:id", h.Catalog.GetItem)
				catalog.POST("", h.Catalog.CreateItem)
				catalog.PUT("/:id", h.Catalog.UpdateItem)
			}

			suppliers := authorized.Group("/suppliers")
			{
				suppliers.GET("", h.Catalog.ListSuppliers)
				suppliers.GET("/:id", h.Catalog.GetSupplier)
				suppliers.POST("", h.Catalog.CreateSupplier)
				suppliers.PUT("/:id", h.Catalog.UpdateSupplier)
			}

			requests := authorized.Group("/requests")
			{
				requests.GET("", h.RentalRequest.List)
				requests.GET("/pending", h.RentalRequest.ListPending)
				requests.GET("/stats", h.RentalRequest.Stats)
				requests.GET("/:id", h.RentalRequest.Get)
				requests.POST("", h.RentalRequest.Create)
				requests.PUT("/:id", h.RentalRequest.Update)
				requests.DELETE("/:id", h.RentalRequest.Delete)
				requests.POST("/:id/submit", h.RentalRequest.Submit)
				requests.POST("/:id/withdraw", h.RentalRequest.Withdraw)
				requests.POST("/:id/decision", h.RentalRequest.Decide)
			}

			assignments := authorized.Group("/assignments")
			{
				assignments.GET("", h.Supply.List)
				assignments.GET("/ready", h.Supply.ListReady)
				assignments.GET("/:id", h.Supply.Get)
				assignments.POST("", h.Supply.Create)
				assignments.PUT("/:id", h.Supply.Update)
				assignments.PUT("/:id/compliance", h.Supply.MarkCompliant)
			}

			engagements := authorized.Group("/engagements")
			{
				engagements.GET("", h.Engagement.List)
				engagements.GET("/expiring", h.Engagement.ListExpiring)
				engagements.GET("/expired", h.Engagement.ListExpired)
				engagements.GET("/stats", h.Engagement.Stats)
				engagements.GET("/:id", h.Engagement.Get)
				engagements.GET("/:id/totals", h.Engagement.Totals)
				engagements.GET("/:id/log-sheets", h.LogSheet.ListByEngagement)
				engagements.POST("", h.Engagement.Create)
				engagements.PUT("/:id", h.Engagement.Update)
			}

			sheets := authorized.Group("/log-sheets")
			{
				sheets.POST("", h.LogSheet.CreateSheet)
				sheets.GET("/:id", h.LogSheet.GetSheet)
				sheets.POST("/:id/entries", h.LogSheet.RecordEntry)
				sheets.POST("/:id/entries/bulk", h.LogSheet.BulkRecord)
				sheets.POST("/:id/fill", h.LogSheet.FillPeriod)
				sheets.GET("/:id/verification", h.Verification.GetByLogSheet)
				sheets.GET("/:id/export", h.Export.ExportLogSheet)
				sheets.POST("/:id/archive", h.Export.ArchiveLogSheet)
			}

			entries := authorized.Group("/entries")
			{
				entries.PUT("/:id", h.LogSheet.UpdateEntry)
				entries.DELETE("/:id", h.LogSheet.DeleteEntry)
			}

			verifications := authorized.Group("/verifications")
			{
				verifications.POST("", h.Verification.Create)
				verifications.GET("/:id", h.Verification.Get)
				verifications.GET("/:id/discrepancy", h.Verification.Discrepancy)
			}

			authorized.GET("/reports/monthly", h.LogSheet.MonthlyReport)
		}
	}

	return r
}
