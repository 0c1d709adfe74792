package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/yukikurage/renovation-tracker-api/internal/auth"
	"github.com/yukikurage/renovation-tracker-api/internal/handlers"
	"github.com/yukikurage/renovation-tracker-api/internal/metrics"
	"github.com/yukikurage/renovation-tracker-api/internal/middleware"
	"github.com/yukikurage/renovation-tracker-api/internal/repository"
	"github.com/yukikurage/renovation-tracker-api/internal/services"
	"github.com/yukikurage/renovation-tracker-api/internal/storage"
	"gorm.io/gorm"
)

// Dependencies are the long-lived resources built by main.
type Dependencies struct {
	DB          *gorm.DB
	Tokens      *auth.TokenManager
	Revocations auth.RevocationStore
	BlobStore   storage.BlobStore
	// Links is set only when download links are served by this process.
	Links          storage.LinkResolver
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	BcryptCost     int
	Documents      services.DocumentServiceConfig
	AllowedOrigins []string
}

// Setup wires repositories, services and handlers into a gin engine.
func Setup(deps Dependencies) *gin.Engine {
	userRepo := repository.NewUserRepository(deps.DB)
	resolver := repository.NewOwnershipResolver(deps.DB)

	var orphans services.OrphanRecorder
	if deps.Metrics != nil {
		orphans = deps.Metrics
	}

	documentService := services.NewDocumentService(repository.NewDocumentRepository(deps.DB), resolver, deps.BlobStore, orphans, deps.Documents)
	propertyService := services.NewPropertyService(repository.NewPropertyRepository(deps.DB), resolver, documentService)
	projectService := services.NewProjectService(repository.NewProjectRepository(deps.DB), resolver, documentService)
	authService := services.NewAuthService(userRepo, deps.Tokens, deps.Revocations, deps.BcryptCost)
	accountService := services.NewAccountService(userRepo, documentService)
	summaryService := services.NewSummaryService(userRepo)

	authHandler := handlers.NewAuthHandler(authService, accountService)
	propertyHandler := handlers.NewPropertyHandler(propertyService)
	projectHandler := handlers.NewProjectHandler(projectService)
	documentHandler := handlers.NewDocumentHandler(documentService)
	summaryHandler := handlers.NewSummaryHandler(summaryService)
	healthHandler := handlers.NewHealthHandler(deps.DB)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(), middleware.CORS(deps.AllowedOrigins))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
	}

	// Health check endpoint
	r.GET("/health", healthHandler.Health)
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(deps.Gatherer)))
	}

	requireAuth := middleware.RequireAuth(deps.Tokens, deps.Revocations)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			if authService.CanLogout() {
				authRoutes.POST("/logout", requireAuth, authHandler.Logout)
			}
			authRoutes.GET("/me", requireAuth, authHandler.GetCurrentUser)
			authRoutes.DELETE("/me", requireAuth, authHandler.DeleteAccount)
		}

		// Property routes (protected)
		properties := api.Group("/properties")
		properties.Use(requireAuth)
		{
			properties.POST("", propertyHandler.CreateProperty)
			properties.GET("", propertyHandler.ListProperties)
			properties.GET("/:id", propertyHandler.GetProperty)
			properties.PUT("/:id", propertyHandler.UpdateProperty)
			properties.DELETE("/:id", propertyHandler.DeleteProperty)
		}

		// Project routes (protected)
		projects := api.Group("/projects")
		projects.Use(requireAuth)
		{
			projects.POST("", projectHandler.CreateProject)
			projects.GET("", projectHandler.ListProjects)
			projects.GET("/:id", projectHandler.GetProject)
			projects.PUT("/:id", projectHandler.UpdateProject)
			projects.DELETE("/:id", projectHandler.DeleteProject)
		}

		// Document routes (protected)
		documents := api.Group("/documents")
		documents.Use(requireAuth)
		{
			documents.GET("", documentHandler.ListDocuments)
			documents.POST("", documentHandler.UploadDocument)
			documents.GET("/:id", documentHandler.GetDocument)
			documents.DELETE("/:id", documentHandler.DeleteDocument)
			documents.GET("/:id/download", documentHandler.GetDownloadLink)
		}

		api.GET("/summary", requireAuth, summaryHandler.GetSummary)

		// Signed download links; the token in the path is the credential
		if deps.Links != nil {
			blobHandler := handlers.NewBlobHandler(deps.Links, deps.BlobStore)
			api.GET("/blobs/:token", blobHandler.ServeBlob)
		}
	}

	return r
}
