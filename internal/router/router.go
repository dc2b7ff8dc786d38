package router

import (
	"log"

	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/irisvest/backend/internal/handlers"
	"github.com/irisvest/backend/internal/middleware"
	"github.com/irisvest/backend/internal/repositories"
	"github.com/irisvest/backend/internal/store"
	"github.com/irisvest/backend/pkg/firebase"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, db *mongo.Database, firebaseAuthClient *auth.Client, messagingClient *messaging.Client) {
	users := store.Wrap(db.Collection("users"))
	posts := store.Wrap(db.Collection("posts"))
	comments := store.Wrap(db.Collection("comments"))
	companies := store.Wrap(db.Collection("companies"))
	funds := store.Wrap(db.Collection("funds"))
	notifications := store.Wrap(db.Collection("notifications"))

	// --- Initialize Repositories ---
	userRepo := repositories.NewMongoUserRepository(users, companies)
	postRepo := repositories.NewMongoPostRepository(posts, users, companies)
	commentRepo := repositories.NewMongoCommentRepository(comments, posts)
	companyRepo := repositories.NewMongoCompanyRepository(companies)
	fundRepo := repositories.NewMongoFundRepository(funds)
	pusher := firebase.NewMessenger(messagingClient)
	notificationRepo := repositories.NewMongoNotificationRepository(notifications, users, pusher)

	// Health check - always accessible
	healthHandler := handlers.NewHealthHandler(postRepo)
	e.GET("/health", healthHandler.HealthCheck)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// User profile, follow graph and visibility routes
	userHandler := handlers.NewUserHandler(userRepo, companyRepo, notificationRepo)
	userHandler.RegisterUserRoutes(api)
	log.Println("User routes configured.")

	// Post routes
	postHandler := handlers.NewPostHandler(postRepo, userRepo, companyRepo, notificationRepo)
	postHandler.RegisterPostRoutes(api)
	log.Println("Post routes configured.")

	// Feed routes
	feedHandler := handlers.NewFeedHandler(postRepo, userRepo)
	feedHandler.RegisterFeedRoutes(api)
	log.Println("Feed routes configured.")

	// Comment routes
	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo, userRepo, companyRepo, notificationRepo)
	commentHandler.RegisterCommentRoutes(api)
	log.Println("Comment routes configured.")

	// Company routes
	companyHandler := handlers.NewCompanyHandler(companyRepo)
	companyHandler.RegisterCompanyRoutes(api)
	log.Println("Company routes configured.")

	// Fund routes
	fundHandler := handlers.NewFundHandler(fundRepo)
	fundHandler.RegisterFundRoutes(api)
	log.Println("Fund routes configured.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	log.Println("All routes configured.")
}
