package api

import (
	"github.com/T-Watch/T-Watch-Backend/internal/auth"
	"github.com/T-Watch/T-Watch-Backend/internal/repository"
	"github.com/T-Watch/T-Watch-Backend/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services bundles everything the routes call into.
type Services struct {
	Gate     *auth.Gate
	Auth     service.AuthService
	Users    service.UserService
	Training service.TrainingService
	Results  *service.ResultCoordinator
	Plans    service.PlanService
	Messages service.MessageService
	Health   repository.Readiness
}

// SetupRoutes registers every endpoint under /api/v1, plus /healthz.
// Endpoints other than /token and POST /users require a bearer token.
func SetupRoutes(router *gin.Engine, svc Services, corsOrigins []string, log *zap.Logger) {
	router.Use(Recovery(log), RequestLogger(log), CORS(corsOrigins), BearerToken())

	router.GET("/healthz", healthz(svc.Health.Ready))

	e := endpoint{gate: svc.Gate, log: log}
	apiV1 := router.Group("/api/v1")
	NewAuthHandler(svc.Auth, svc.Users).register(apiV1, e)
	NewUserHandler(svc.Users).register(apiV1, e)
	NewTrainingHandler(svc.Training, svc.Results).register(apiV1, e)
	NewPlanHandler(svc.Plans, svc.Messages).register(apiV1, e)
}
