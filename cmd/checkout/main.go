package main

import (
	"context"
	"encoding/hex"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shoply/checkout/config"
	"github.com/shoply/checkout/internal/auth"
	"github.com/shoply/checkout/internal/gateway"
	handler "github.com/shoply/checkout/internal/handler/http"
	"github.com/shoply/checkout/internal/logger"
	"github.com/shoply/checkout/internal/middleware"
	"github.com/shoply/checkout/internal/notify"
	"github.com/shoply/checkout/internal/repository"
	"github.com/shoply/checkout/internal/repository/postgres"
	"github.com/shoply/checkout/internal/service"
	"go.uber.org/zap"
)

const authTokenKey = "2cf24dba5fb0a30e26e83b2ac5b9e29e"

func main() {

	// create new config
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// initialize logger
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Log.Sync()

	// create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// initialize database
	db, err := postgres.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Log.Fatal("Error initializing database", zap.Error(err))
	}
	defer db.Close()

	// migrate database
	if err := db.Migrate(); err != nil {
		logger.Log.Fatal("Error migrating database", zap.Error(err))
	}

	tokenKey, err := hex.DecodeString(authTokenKey)
	if err != nil {
		logger.Log.Fatal("Error extracting token key", zap.Error(err))
	}
	token := auth.NewAuthToken(tokenKey)

	// external collaborators
	gatewayClient := gateway.NewClient(cfg.GatewayAddr)
	notifier := notify.NewEmailNotifier(cfg.SMTPAddr, cfg.SMTPFrom)

	// dependency injection
	// user
	userRepo := repository.NewUserRepository(db)
	userService := service.NewUserService(userRepo, token)
	userHandler := handler.NewUserHandler(userService)

	// order
	orderRepo := repository.NewOrderRepository(db)
	orderService := service.NewOrderService(orderRepo, gatewayClient, notifier, cfg.PublicBaseURL)
	orderHandler := handler.NewOrderHandler(orderService)
	callbackHandler := handler.NewCallbackHandler(orderService, cfg.GatewaySecret)

	router := chi.NewRouter()

	router.Use(middleware.Logging(logger.Log))

	router.Post("/api/user/register", userHandler.RegisterUser())
	router.Post("/api/user/login", userHandler.LoginUser())

	// server-to-server gateway notification, authenticated by signature
	router.Post("/api/gateway/callback", callbackHandler.HandleCallback())

	// routes that require authentication
	router.Group(func(group chi.Router) {
		group.Use(middleware.Auth(token))
		group.Post("/api/user/orders", orderHandler.CreateOrder())
		group.Get("/api/user/orders", orderHandler.ListUserOrders())
		group.Get("/api/user/orders/{orderID}", orderHandler.GetOrderStatus())
	})

	logger.Log.Info("Running server", zap.String("addr", cfg.ServerAddr))

	if err := http.ListenAndServe(cfg.ServerAddr, router); err != nil {
		logger.Log.Fatal("Error starting server", zap.Error(err))
	}
}
