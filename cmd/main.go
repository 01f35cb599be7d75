package main

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"github.com/sendgrid/sendgrid-go"
	twilio "github.com/twilio/twilio-go"

	"github.com/poofware/mono-repo/backend/services/structure-service/internal/app"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/catalog"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/config"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/controllers"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/middleware"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/repositories"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/routes"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/services"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()
	defer cfg.Close()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize structure-service:", err)
	}
	defer application.Close()

	catalogClient := catalog.NewClient(cfg.CatalogBaseURL, cfg.CatalogAPIToken, cfg.CatalogTimeout)
	viewService := services.NewBuildingViewService(catalogClient, cfg.ViewCacheTTL)
	bulkService := services.NewBulkGenerateService(catalogClient, viewService)

	var email services.EmailSender
	if cfg.SendGridAPIKey != "" {
		email = sendgrid.NewSendClient(cfg.SendGridAPIKey)
	}
	var sms services.SMSSender
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		twClient := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		})
		sms = twClient.Api
	}
	notifier := services.NewNotificationReporter(cfg, email, sms)

	var (
		runRepo repositories.GenerationRunRepository
		pinger  controllers.Pinger
	)
	c := cron.New()
	if application.DB != nil {
		runRepo = repositories.NewGenerationRunRepository(application.DB)
		pinger = application.DB

		retention := services.NewRunRetentionService(runRepo, cfg.RunRetentionDays)
		_, cleanupErr := c.AddFunc("5 0 * * *", func() {
			if e := retention.CleanupDaily(context.Background()); e != nil {
				utils.Logger.WithError(e).Error("Scheduled generation run cleanup failed")
			}
		})
		if cleanupErr != nil {
			utils.Logger.WithError(cleanupErr).Fatal("Failed to schedule generation run cleanup cron")
		}
	}
	c.Start()
	defer c.Stop()

	generationService := services.NewGenerationService(cfg, catalogClient, viewService, runRepo, notifier)

	healthController := controllers.NewHealthController(pinger)
	generationController := controllers.NewGenerationController(generationService)
	viewsController := controllers.NewBuildingViewsController(viewService, bulkService)

	router := mux.NewRouter()

	// Public
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)

	admin := router.NewRoute().Subrouter()
	admin.Use(middleware.AdminAuthMiddleware(cfg.RSAPublicKey))
	admin.HandleFunc(routes.AdminGenerateStructure, generationController.GenerateHandler).Methods(http.MethodPost)
	admin.HandleFunc(routes.AdminBuildingFloors, viewsController.ListFloorsHandler).Methods(http.MethodGet)
	admin.HandleFunc(routes.AdminBuildingUnits, viewsController.ListUnitsHandler).Methods(http.MethodGet)
	admin.HandleFunc(routes.AdminBulkGenerate, viewsController.BulkGenerateHandler).Methods(http.MethodPost)

	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, utils.CORSLowSecurityAllowedOriginLocalhost)
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "ngrok-skip-browser-warning"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("structure-service failed to start:", err)
	}
}
