package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/dealscope/comps-api/internal/auth"
	"github.com/dealscope/comps-api/internal/cache"
	"github.com/dealscope/comps-api/internal/database"
	"github.com/dealscope/comps-api/internal/enrich"
	"github.com/dealscope/comps-api/internal/logger"
	"github.com/dealscope/comps-api/internal/repository"
	"github.com/dealscope/comps-api/internal/services"
	"github.com/dealscope/comps-api/internal/similarity"
	"github.com/dealscope/comps-api/pkg/config"
)

// Deps carries the wiring for route setup
type Deps struct {
	DB        *database.DB
	Config    *config.Config
	Logger    logger.Logger
	Cache     cache.ResultCache
	Oracle    similarity.TextSimilarity
	CachePing func(ctx context.Context) error
}

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, deps Deps) {
	repos := repository.NewRepositories(deps.DB)

	svcs := services.NewServices(services.Deps{
		Repos:     repos,
		Cache:     deps.Cache,
		Oracle:    deps.Oracle,
		Extractor: enrich.NewExtractor(0),
		Config:    deps.Config,
		Logger:    deps.Logger,
	})

	similarityHandler := NewSimilarityHandler(svcs.Similarity)
	feedbackHandler := NewFeedbackHandler(svcs.Feedback)
	companyHandler := NewCompanyHandler(svcs.Company)
	authHandler := NewAuthHandler(svcs.Auth)
	healthHandler := NewHealthHandler(deps.DB, deps.CachePing)

	// Public routes
	public := r.Group("/api/v1")
	{
		public.POST("/auth/login", authHandler.Login)
		public.POST("/auth/register", authHandler.Register)
		public.POST("/auth/refresh", authHandler.RefreshToken)
		public.GET("/health", healthHandler.GetHealth)
	}

	// Protected routes
	protected := r.Group("/api/v1")
	protected.Use(auth.JWTMiddleware(deps.Config.JWTSecret))
	{
		protected.POST("/companies/similar", similarityHandler.FindSimilar)
		protected.POST("/companies/feedback", feedbackHandler.SubmitFeedback)

		protected.GET("/companies", companyHandler.ListCompanies)
		protected.GET("/companies/:id", companyHandler.GetCompany)
		protected.POST("/companies/:id/enrich", companyHandler.EnrichCompany)
	}
}
