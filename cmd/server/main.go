package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"squadup/backend/internal/auth"
	"squadup/backend/internal/config"
	"squadup/backend/internal/database"
	"squadup/backend/internal/handler"
	"squadup/backend/internal/hub"
	"squadup/backend/internal/middleware"
	"squadup/backend/internal/relation"

	// Swagger imports
	_ "squadup/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           SquadUp API
// @version         1.0
// @description     This is the API for the SquadUp session coordination service.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := buildLogger(cfg.Debug)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	events := hub.NewHub()

	userHandler := handler.NewUserHandler(db, relation.NewUserService(db), cfg.JWTSecret)
	friendHandler := handler.NewFriendHandler(relation.NewFriendService(db), events)
	groupHandler := handler.NewGroupHandler(relation.NewGroupService(db), events)
	sessionHandler := handler.NewSessionHandler(relation.NewSessionService(db), events)
	gameHandler := handler.NewGameHandler(db)
	tagHandler := handler.NewTagHandler(db)
	storeHandler := handler.NewStoreHandler(db)
	streamHandler := handler.NewStreamHandler(events, cfg.JWTSecret)

	router := gin.New()
	router.Use(
		middleware.TraceID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.RateLimit(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),
	)

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// API v1 routes
	apiV1 := router.Group("/api/v1")
	{
		// Auth routes, with a database-backed window limit on top of the
		// global per-IP limiter.
		authWindow := middleware.AuthWindow(db, time.Duration(cfg.AuthWindowSeconds)*time.Second, cfg.AuthWindowMax)
		authRoutes := apiV1.Group("/auth")
		authRoutes.Use(authWindow)
		{
			authRoutes.POST("/register", userHandler.Register)
			authRoutes.POST("/login", userHandler.Login)
		}

		// Event stream; authenticates via token query parameter because
		// EventSource cannot set headers.
		apiV1.GET("/events", streamHandler.Stream)

		// User routes (protected)
		userRoutes := apiV1.Group("/users")
		userRoutes.Use(auth.AuthMiddleware(cfg.JWTSecret))
		{
			userRoutes.GET("", userHandler.Search) // Must be before /:id
			userRoutes.GET("/me", userHandler.GetMe)
			userRoutes.PATCH("/me", userHandler.UpdateMe)
			userRoutes.DELETE("/me", userHandler.DeleteMe)
			userRoutes.GET("/me/friends", friendHandler.List)
			userRoutes.GET("/:id", userHandler.GetByID)

			// Friendship routes
			userRoutes.POST("/:id/request", friendHandler.SendRequest)
			userRoutes.POST("/:id/accept", friendHandler.AcceptRequest)
			userRoutes.POST("/:id/decline", friendHandler.DeclineRequest)
			userRoutes.POST("/:id/remove", friendHandler.Remove)
		}

		// Group routes (protected)
		groupRoutes := apiV1.Group("/groups")
		groupRoutes.Use(auth.AuthMiddleware(cfg.JWTSecret))
		{
			groupRoutes.POST("", groupHandler.Create)
			groupRoutes.GET("", groupHandler.List)
			groupRoutes.GET("/:id", groupHandler.Get)
			groupRoutes.PATCH("/:id", groupHandler.Update)
			groupRoutes.DELETE("/:id", groupHandler.Delete)
			groupRoutes.POST("/:id/members", groupHandler.AddMembers)
			groupRoutes.DELETE("/:id/members", groupHandler.RemoveMembers)
			groupRoutes.POST("/:id/accept", groupHandler.Accept)
			groupRoutes.POST("/:id/decline", groupHandler.Decline)
		}

		// Session routes (protected)
		sessionRoutes := apiV1.Group("/sessions")
		sessionRoutes.Use(auth.AuthMiddleware(cfg.JWTSecret))
		{
			sessionRoutes.POST("", sessionHandler.Create)
			sessionRoutes.GET("", sessionHandler.List)
			sessionRoutes.GET("/:id", sessionHandler.Get)
			sessionRoutes.PATCH("/:id", sessionHandler.Update)
			sessionRoutes.DELETE("/:id", sessionHandler.Delete)
			sessionRoutes.POST("/:id/participants", sessionHandler.AddParticipants)
			sessionRoutes.DELETE("/:id/participants", sessionHandler.RemoveParticipants)
			sessionRoutes.POST("/:id/accept", sessionHandler.Accept)
			sessionRoutes.POST("/:id/decline", sessionHandler.Decline)
		}

		// Catalog routes. Browsable without an account; a valid token still
		// identifies the viewer.
		gameRoutes := apiV1.Group("/games")
		gameRoutes.Use(auth.OptionalAuthMiddleware(cfg.JWTSecret))
		{
			gameRoutes.GET("", gameHandler.List)
			gameRoutes.GET("/:id", gameHandler.GetByID)
		}
		apiV1.GET("/tags", auth.OptionalAuthMiddleware(cfg.JWTSecret), tagHandler.List)
		apiV1.GET("/stores", auth.OptionalAuthMiddleware(cfg.JWTSecret), storeHandler.List)

		// Admin routes (protected by auth and admin check)
		adminRoutes := apiV1.Group("/admin")
		adminRoutes.Use(auth.AuthMiddleware(cfg.JWTSecret), auth.AdminMiddleware(db))
		{
			// Games CRUD (admin-only parts)
			adminGameRoutes := adminRoutes.Group("/games")
			{
				adminGameRoutes.POST("", gameHandler.Create)
				adminGameRoutes.PUT("/:id", gameHandler.Update)
				adminGameRoutes.DELETE("/:id", gameHandler.Delete)
			}

			// Tags CRUD
			adminTagRoutes := adminRoutes.Group("/tags")
			{
				adminTagRoutes.POST("", tagHandler.Create)
				adminTagRoutes.PUT("/:id", tagHandler.Update)
				adminTagRoutes.DELETE("/:id", tagHandler.Delete)
			}

			// Stores CRUD
			adminStoreRoutes := adminRoutes.Group("/stores")
			{
				adminStoreRoutes.POST("", storeHandler.Create)
				adminStoreRoutes.PUT("/:id", storeHandler.Update)
				adminStoreRoutes.DELETE("/:id", storeHandler.Delete)
			}
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("server starting",
		zap.String("addr", addr),
		zap.String("swagger", fmt.Sprintf("http://localhost%s/swagger/index.html", addr)),
	)
	if err := router.Run(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func buildLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
