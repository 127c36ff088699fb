package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/document"
	enduserservice "github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/enduser/service"
	enduserstore "github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/enduser/store/enduser"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/extraction"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/facematch"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/platform/config"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/platform/database"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/platform/httpserver"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/platform/logger"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/platform/metrics"
	platformredis "github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/platform/redis"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/security"
	submissionservice "github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/submission/service"
	submissionstore "github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/submission/store/submission"
	tenantcache "github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/tenant/cache"
	tenantservice "github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/tenant/service"
	tenantstore "github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/tenant/store/tenant"
	httptransport "github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/transport/http"
	"github.com/Enxt-AI/enxtai-kyc-system-sub001/internal/webhook"
)

// main wires dependencies and owns the server lifecycle. Every piece of
// infrastructure degrades to an in-process implementation when its endpoint
// is not configured, so a bare `go run` serves the full API for development.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.PostgresURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Stores: relational when configured, in-memory otherwise.
	var (
		tenants     tenantservice.TenantStore
		endUsers    enduserservice.EndUserStore
		submissions submissionservice.SubmissionStore
	)
	if db != nil {
		tenants = tenantstore.NewPostgres(db)
		endUsers = enduserstore.NewPostgres(db)
		submissions = submissionstore.NewPostgres(db)
	} else {
		log.Warn("postgres not configured, using in-memory stores")
		tenants = tenantstore.NewInMemory()
		endUsers = enduserstore.NewInMemory()
		submissions = submissionstore.NewInMemory()
	}

	tenantOpts := []tenantservice.Option{tenantservice.WithLogger(log)}
	var locker submissionservice.Locker = submissionservice.NewInProcessLocker()
	if redisClient != nil {
		tenantOpts = append(tenantOpts, tenantservice.WithResolutionCache(tenantcache.NewRedis(redisClient, log), time.Minute))
		locker = platformredis.NewSubmissionLocker(redisClient, cfg.Pipeline.LockTTL)
	}
	tenantSvc := tenantservice.NewTenantService(tenants, tenantOpts...)

	var objects document.ObjectStore
	minioStore, err := document.NewMinioStore(ctx, cfg.Object)
	if err != nil {
		log.Error("object store connection failed", "error", err)
		os.Exit(1)
	}
	if minioStore != nil {
		objects = minioStore
	} else {
		log.Warn("object store not configured, documents held in memory")
		objects = document.NewInMemoryObjectStore()
	}

	var publisher webhook.Publisher = webhook.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher, err := webhook.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			log.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	var describer facematch.FaceDescriber
	dlib, err := facematch.NewDlibDescriber(cfg.Pipeline.FaceModelsDir)
	if err != nil {
		log.Warn("face recognition models unavailable, face matches will route to manual review",
			"models_dir", cfg.Pipeline.FaceModelsDir,
			"error", err,
		)
		describer = facematch.Disabled{}
	} else {
		defer dlib.Close()
		describer = dlib
	}

	pipeline := submissionservice.New(submissionservice.Deps{
		Submissions: submissions,
		Users: enduserservice.NewResolver(endUsers, cfg.Pipeline.PlaceholderEmailDomain,
			enduserservice.WithLogger(log), enduserservice.WithMetrics(m)),
		Validator:          document.NewValidator(),
		Objects:            objects,
		Extractor:          extraction.NewEngine(objects, extraction.NewTesseractRecognizer(), cfg.Pipeline.OCRMinConfidence, log),
		Faces:              facematch.NewEngine(objects, describer, log),
		Locker:             locker,
		Publisher:          publisher,
		Security:           security.NewReporter(log),
		Metrics:            m,
		Logger:             log,
		FaceMatchThreshold: cfg.Pipeline.FaceMatchThreshold,
	})

	var admin *httptransport.AdminHandler
	if cfg.AdminToken != "" {
		admin = httptransport.NewAdminHandler(tenantSvc, cfg.AdminToken, log)
	} else {
		log.Warn("admin token not configured, tenant provisioning endpoint disabled")
	}

	router := httptransport.NewRouter(httptransport.NewHandler(pipeline, log), tenantSvc, admin)
	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
