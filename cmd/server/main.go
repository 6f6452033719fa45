package main

import (
	"context"
	"errors"
	"fmt"
	"go-writer-app/internal/cache"
	"go-writer-app/internal/config"
	"go-writer-app/internal/content"
	"go-writer-app/internal/data"
	"go-writer-app/internal/handler"
	"go-writer-app/internal/logger"
	"go-writer-app/internal/mail"
	"go-writer-app/internal/markdown"
	"go-writer-app/internal/metrics"
	"go-writer-app/internal/middleware"
	"go-writer-app/internal/service"
	"go-writer-app/internal/session"
	"go-writer-app/internal/tree"
	"go-writer-app/internal/view"
	"go-writer-app/web"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/v2"
)

func main() {
	// --- Configuration Loading ---
	cfg, err := config.LoadConfig()
	if err != nil {
		// Use fmt.Printf here because the logger is not yet initialized.
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Initialization ---
	log := logger.New(cfg.Log, os.Stdout)

	// --- Pre-flight Checks ---
	if cfg.Session.SecretKey == "" || cfg.Session.SecretKey == "CHANGE_ME_IN_PRODUCTION_SECRET!!" {
		log.Fatal(errors.New("session secret key not set"), "Please set a secure WRITER_SESSION_SECRET_KEY environment variable.")
	}

	// --- Database Initialization and Migration ---
	log.Info("Applying database migrations...")
	if err := data.ApplyMigrations(cfg.DB.DSN, "migrations"); err != nil {
		log.Fatal(err, "Failed to apply migrations")
	}
	log.Info("Migrations applied successfully.")

	log.Info("Connecting to the database...")
	db, err := data.NewDB(cfg.DB.DSN)
	if err != nil {
		log.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()
	log.Info("Database connection successful.")

	// --- Session Management Setup ---
	sessionManager := scs.New()
	sessionManager.Store = mysqlstore.New(db.DB)
	sessionManager.Lifetime = time.Duration(cfg.Session.Lifetime) * time.Hour
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = cfg.Server.TLS.Enabled
	sessions := session.NewSCS(sessionManager)

	// --- View Template Initialization ---
	log.Info("Initializing view templates...")
	viewService, err := view.New(web.TemplateFS)
	if err != nil {
		log.Fatal(err, "Failed to initialize view templates")
	}
	log.Info("View templates initialized.")

	// --- Cache Initialization ---
	log.Info("Initializing SQLite cache...")
	navCache, err := cache.New(cfg.Cache)
	if err != nil {
		log.Fatal(err, "Failed to initialize cache")
	}
	defer navCache.Close()
	log.Info("Cache initialized.")

	// --- Dependency Injection and Handler Initialization ---
	// Initialize the application layers, injecting dependencies from top to bottom.
	pageRepository := data.NewPageRepository(db)
	versionRepository := data.NewVersionRepository(db)
	tagRepository := data.NewTagRepository(db)
	userRepository := data.NewUserRepository(db)
	subscriberRepository := data.NewSubscriberRepository(db)
	definitionRepository := data.NewDefinitionRepository(db)
	linkRepository := data.NewLinkRepository(db)
	recordRepository := data.NewRecordRepository(db)

	navigator := tree.NewNavigator(pageRepository)
	engine := metrics.NewEngine(navigator)
	contentResolver := content.NewResolver(pageRepository, cfg.Site.BaseURL)
	renderer := markdown.New()

	sender := mail.NewSMTPSender(cfg.Mail)
	notifier := service.NewMailNotifier(subscriberRepository, contentResolver, sender, cfg.Site.BaseURL, cfg.Site.Name, log)

	pageService := service.NewPageService(db, pageRepository, versionRepository, navigator, engine, contentResolver, renderer, notifier, log)
	tagService := service.NewTagService(tagRepository)
	userService := service.NewUserService(userRepository)
	subscriberService := service.NewSubscriberService(subscriberRepository)
	definitionService := service.NewDefinitionService(definitionRepository)
	linkService := service.NewLinkService(linkRepository)
	recordService := service.NewRecordService(recordRepository)
	navService := service.NewNavService(pageRepository, navCache, time.Duration(cfg.Site.NavTTLMinutes)*time.Minute, log)

	pageHandler := handler.NewPageHandler(pageService, navService, subscriberService, viewService, log)
	adminHandler := handler.NewAdminHandler(pageService, tagService, userService, subscriberService, definitionService, linkService, recordService, navService, viewService, log)
	authHandler := handler.NewAuthHandler(userService, sessions, viewService, log)
	sitemapHandler := handler.NewSitemapHandler(pageService, cfg.Site.BaseURL)

	errorMiddleware := middleware.Error(log, viewService)

	// --- Router Setup ---
	// The router is the central hub that directs incoming requests to the correct handlers.
	router := handler.NewRouter(pageHandler, adminHandler, authHandler, sitemapHandler, errorMiddleware, sessions)

	// --- Server Initialization and Graceful Shutdown ---
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}
	go func() {
		if cfg.Server.TLS.Enabled {
			log.Info(fmt.Sprintf("Starting HTTPS server on %s", server.Addr))
			if err := server.ListenAndServeTLS(cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTPS server")
			}
		} else {
			log.Info(fmt.Sprintf("Starting HTTP server on %s", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal(err, "Could not start HTTP server")
			}
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Warn("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal(err, "Server forced to shutdown")
	}
	log.Info("Server exiting")
}
