package config

import (
	http "github.com/concord-chat/concord/internal/delivery/http"
	"github.com/concord-chat/concord/internal/delivery/http/middleware"
	"github.com/concord-chat/concord/internal/delivery/http/route"
	"github.com/concord-chat/concord/internal/repository"
	"github.com/concord-chat/concord/internal/usecase"
	"github.com/concord-chat/concord/internal/voice"
	"github.com/minio/minio-go/v7"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knadh/koanf/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type ServerConfig struct {
	Router  *fiber.App
	DB      *pgxpool.Pool
	DBCache *redis.Client
	Log     *zap.Logger
	Config  *koanf.Koanf
	MinIO   *minio.Client
}

func Server(config *ServerConfig) {
	authorizer := usecase.NewAuthorizer(config.Log)

	serverRepository := repository.NewServerRepository(config.Log, config.DB, config.DBCache)
	roleRepository := repository.NewRoleRepository(config.Log, config.DB, config.DBCache)
	userRepository := repository.NewUserRepository(config.Log, config.DB, config.DBCache, config.MinIO)

	roleUsecase := usecase.NewRoleUsecase(roleRepository, serverRepository, authorizer, config.DB, config.Log, config.Config)
	serverUsecase := usecase.NewServerUsecase(serverRepository, roleRepository, authorizer, config.DB, config.Log, config.Config)
	userUsecase := usecase.NewUserUsecase(userRepository, serverRepository, config.DB, config.Log, config.Config)

	userController := http.NewUserController(userUsecase, config.Log, config.Config)
	serverController := http.NewServerController(serverUsecase, config.Log, config.Config)
	roleController := http.NewRoleController(roleUsecase, config.Log, config.Config)

	authMiddleware := middleware.NewAuthMiddleware(config.Router, config.Log, config.Config, userUsecase)
	permissionMiddleware := middleware.NewPermissionMiddleware(config.Log, roleUsecase, authorizer)

	voiceRegistry := voice.NewRoomRegistry()
	voiceHub := voice.NewHub(config.Log)
	voiceGateway := voice.NewGateway(voiceRegistry, voiceHub, userUsecase, config.Log)

	routeConfig := route.RouteConfig{
		App:                  config.Router,
		AuthMiddleware:       authMiddleware,
		PermissionMiddleware: permissionMiddleware,
		UserController:       userController,
		ServerController:     serverController,
		RoleController:       roleController,
		VoiceGateway:         voiceGateway,
	}

	routeConfig.SetupRoute()
}
