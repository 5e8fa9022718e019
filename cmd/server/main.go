package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"fides/internal/consent"
	consenthandler "fides/internal/consent/handler"
	"fides/internal/credential"
	credentialhandler "fides/internal/credential/handler"
	"fides/internal/jwttoken"
	"fides/internal/platform/clock"
	"fides/internal/platform/config"
	"fides/internal/platform/httpserver"
	"fides/internal/platform/logger"
	"fides/internal/platform/metrics"
	platformredis "fides/internal/platform/redis"
	"fides/internal/risk"
	riskhandler "fides/internal/risk/handler"
	httptransport "fides/internal/transport/http"
	"fides/internal/verification"
	verificationhandler "fides/internal/verification/handler"
	id "fides/pkg/domain"
	audit "fides/pkg/platform/audit"
	"fides/pkg/platform/audit/publisher"
	auditmemory "fides/pkg/platform/audit/store/memory"
	auditpostgres "fides/pkg/platform/audit/store/postgres"
)

const shutdownTimeout = 10 * time.Second

// main wires the four registries behind one HTTP surface. Stores default to
// in-memory; Redis (consent) and Postgres (audit trail) attach when
// configured.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	bootstrap, err := id.ParseIdentity(cfg.Bootstrap)
	if err != nil {
		log.Error("invalid bootstrap admin identity", "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	source := clock.NewWall()
	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "fides", "fides")
	jwtValidator := httptransport.NewJWTAdapter(jwtService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Audit trail: Postgres when configured, in-memory otherwise.
	var auditStore audit.Store
	if cfg.Postgres.DSN != "" {
		pgStore, err := auditpostgres.Open(cfg.Postgres.DSN)
		if err != nil {
			log.Error("failed to open audit store", "error", err)
			os.Exit(1)
		}
		defer pgStore.Close()
		auditStore = pgStore
		log.Info("audit trail backed by postgres")
	} else {
		auditStore = auditmemory.NewInMemoryStore()
	}
	auditor := publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(256),
		publisher.WithLogger(log),
	)
	defer auditor.Close()

	// Consent store: Redis when configured, in-memory otherwise.
	var consentStore consent.Store = consent.NewInMemory(bootstrap)
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		store, err := consent.NewRedisStore(ctx, redisClient, bootstrap)
		if err != nil {
			log.Error("failed to initialize redis consent store", "error", err)
			os.Exit(1)
		}
		consentStore = store
		log.Info("consent registry backed by redis")
	}

	verificationService := verification.NewService(verification.NewInMemory(bootstrap),
		verification.WithLogger(log),
		verification.WithAuditPublisher(auditor),
		verification.WithMetrics(m),
	)
	credentialService := credential.NewService(credential.NewInMemory(bootstrap),
		credential.WithLogger(log),
		credential.WithAuditPublisher(auditor),
		credential.WithMetrics(m),
	)
	consentService := consent.NewService(consentStore,
		consent.WithLogger(log),
		consent.WithAuditPublisher(auditor),
		consent.WithMetrics(m),
	)
	riskService := risk.NewService(risk.NewInMemory(bootstrap),
		risk.WithLogger(log),
		risk.WithAuditPublisher(auditor),
		risk.WithMetrics(m),
	)

	health := func() error {
		if redisClient != nil {
			return redisClient.Health(context.Background())
		}
		return nil
	}

	router := httptransport.NewRouter(httptransport.Config{
		Logger:  log,
		Clock:   source,
		Metrics: m,
		Handlers: []httptransport.Registrar{
			verificationhandler.New(verificationService, log, jwtValidator),
			credentialhandler.New(credentialService, log, jwtValidator),
			consenthandler.New(consentService, log, jwtValidator),
			riskhandler.New(riskService, log, jwtValidator),
		},
		Health: health,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting fides", "addr", cfg.Addr, "bootstrap_admin", bootstrap.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
