package v1

import (
	"log/slog"
	"time"

	"go-recruiter-backend/config"
	"go-recruiter-backend/internal/delivery/http/middleware"
	"go-recruiter-backend/internal/domain"
	"go-recruiter-backend/pkg/audit"
	"go-recruiter-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	CareerUC      domain.CareerUsecase
	ApplicationUC domain.ApplicationUsecase
	ExportUC      domain.ExportUsecase
	HealthUC      domain.HealthUsecase
	Verifier      middleware.TokenVerifier
	RateLimiter   *middleware.RateLimiter
	Audit         *audit.Logger
	Log           *slog.Logger
	Config        *config.Config
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterValidators(v)
	}
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = 2*deps.Config.MaxFileSize + 1<<20

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.CORSOrigins)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Log))
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler(deps.Log))

	v1 := r.Group("/v1")

	NewHealthHandler(v1, deps.HealthUC)

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	window := time.Duration(deps.Config.RateLimitWindowSeconds) * time.Second
	limit := func(prefix string, n int) gin.HandlerFunc {
		if deps.RateLimiter == nil {
			return nil
		}
		return deps.RateLimiter.Limit(middleware.RateLimitConfig{
			Limit:     n,
			Window:    window,
			KeyPrefix: "ratelimit:" + prefix + ":",
		})
	}

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Verifier, deps.Config.IsAdmin, deps.Audit))
	{
		NewCareerHandler(v1, protected, deps.CareerUC, limit("careers", deps.Config.RateLimitCareerCreate))
		NewApplicationHandler(protected, deps.ApplicationUC, deps.Config.MaxFileSize, ApplicationLimits{
			Apply: limit("apply", deps.Config.RateLimitApply),
			List:  limit("applications", deps.Config.RateLimitApplications),
		})

		admin := protected.Group("/admin")
		admin.Use(middleware.AdminOnly())
		NewAdminHandler(admin, deps.ApplicationUC, deps.ExportUC)
	}

	return r
}
