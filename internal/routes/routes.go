package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/civic-triage-api/internal/handler"
	"github.com/noah-isme/civic-triage-api/internal/middleware"
	"github.com/noah-isme/civic-triage-api/internal/models"
)

// Handlers groups every HTTP handler mounted by Setup.
type Handlers struct {
	Complaints    *handler.ComplaintHandler
	Ranking       *handler.RankingHandler
	Duplicates    *handler.DuplicateHandler
	Lifecycle     *handler.LifecycleHandler
	Municipality  *handler.MunicipalityHandler
	Reviews       *handler.ReviewHandler
	Observability *handler.MetricsHandler
}

// Setup registers ops endpoints at the root and the API under prefix.
func Setup(r *gin.Engine, prefix string, tokens middleware.TokenValidator, h Handlers) {
	r.GET("/health", h.Observability.Health)
	r.GET("/ready", h.Observability.Ready)
	r.GET("/metrics", h.Observability.Prometheus)

	api := r.Group(prefix)
	api.Use(middleware.WithResponseMeta())

	// Public
	api.GET("/complaints/ranked", middleware.OptionalJWT(tokens), h.Ranking.Ranked)
	api.GET("/municipalities/:id/dashboard", h.Municipality.Dashboard)

	staffOnly := middleware.RequireRoles(models.RoleOfficial, models.RoleStaff, models.RoleAdmin)

	secured := api.Group("", middleware.JWT(tokens))

	complaints := secured.Group("/complaints")
	complaints.POST("", h.Complaints.Submit)
	complaints.GET("", h.Complaints.List)
	complaints.POST("/similar", h.Duplicates.Similar)
	complaints.GET("/:id", h.Complaints.Get)
	complaints.PATCH("/:id/status", staffOnly, h.Lifecycle.UpdateStatus)
	complaints.GET("/:id/activities", h.Lifecycle.Activities)
	complaints.POST("/:id/upvote", h.Complaints.Upvote)
	complaints.POST("/:id/comments", h.Complaints.AddComment)
	complaints.GET("/:id/comments", h.Complaints.Comments)

	municipalities := secured.Group("/municipalities/:id")
	municipalities.GET("/complaints", h.Municipality.Complaints)
	municipalities.GET("/complaints/export", staffOnly, h.Municipality.Export)

	reviews := secured.Group("/reviews")
	reviews.POST("", h.Reviews.Create)
	reviews.GET("/mine", h.Reviews.Mine)
}
