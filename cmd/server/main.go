package main

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/quizdrill/backend/internal/auth"
	"github.com/quizdrill/backend/internal/config"
	"github.com/quizdrill/backend/internal/database"
	"github.com/quizdrill/backend/internal/mistakes"
	"github.com/quizdrill/backend/internal/practice"
	"github.com/quizdrill/backend/internal/progress"
	"github.com/quizdrill/backend/internal/sets"
	"github.com/quizdrill/backend/internal/stats"
	"github.com/quizdrill/backend/internal/training"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Stores
	setStore := sets.NewStore(db)
	mistakeStore := mistakes.NewStore(db)
	trainStore := training.NewStore(db)
	progressStore := progress.NewStore(db)
	statsStore := stats.NewStore(db)

	// Services
	setService := sets.NewService(setStore)
	mistakeService := mistakes.NewService(mistakeStore)
	trainService := training.NewService(setStore, trainStore)
	practiceService := practice.NewService(practice.NewRegistry(), setService, trainService, mistakeService, progressStore)
	statsService := stats.NewService(statsStore, mistakeStore)
	authService := auth.NewService(cfg.AdminKey, cfg.AdminKeyHash, cfg.JWTSecret)

	// Handlers
	setHandler := sets.NewHandler(setService)
	mistakeHandler := mistakes.NewHandler(mistakeService)
	trainHandler := training.NewHandler(trainService)
	practiceHandler := practice.NewHandler(practiceService)
	statsHandler := stats.NewHandler(statsService)
	authHandler := auth.NewHandler(authService)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	setHandler.RegisterRoutes(api)
	mistakeHandler.RegisterRoutes(api)
	trainHandler.RegisterRoutes(api)
	practiceHandler.RegisterRoutes(api)
	statsHandler.RegisterRoutes(api)
	authHandler.RegisterRoutes(api)

	// Admin routes: content import, deletion and cloning
	admin := api.PathPrefix("").Subrouter()
	admin.Use(authHandler.Middleware)
	setHandler.RegisterAdminRoutes(admin)

	if !authService.Enabled() {
		log.Println("[auth] no admin key configured, admin routes are open")
	}

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Admin-Key"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	log.Printf("Server starting on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
