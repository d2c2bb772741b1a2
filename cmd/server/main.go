package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"chefpass/internal/audit"
	"chefpass/internal/docstore"
	identityhandler "chefpass/internal/identity/handler"
	identitymetrics "chefpass/internal/identity/metrics"
	identityservice "chefpass/internal/identity/service"
	identitystore "chefpass/internal/identity/store"
	passhandler "chefpass/internal/pass/handler"
	passmetrics "chefpass/internal/pass/metrics"
	passservice "chefpass/internal/pass/service"
	passstore "chefpass/internal/pass/store"
	"chefpass/internal/platform/config"
	"chefpass/internal/platform/health"
	"chefpass/internal/platform/httpserver"
	"chefpass/internal/platform/logger"
	"chefpass/internal/platform/tracer"
	printqhandler "chefpass/internal/printq/handler"
	printqmetrics "chefpass/internal/printq/metrics"
	printqservice "chefpass/internal/printq/service"
	printqstore "chefpass/internal/printq/store"
	"chefpass/internal/sentinel"
	httptransport "chefpass/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing chefpass",
		"addr", cfg.Addr,
		"public_base_url", cfg.PublicBaseURL,
	)

	docs := docstore.NewInMemoryWithAttempts(cfg.TxAttempts)
	ids := identitystore.New(docs)
	passes := passstore.New(docs)
	jobs := printqstore.New(docs)

	auditor := audit.NewPublisher(audit.NewInMemoryStore(),
		audit.WithAsyncBuffer(256),
		audit.WithPublisherLogger(log),
	)
	defer auditor.Close()

	passSvc := passservice.New(ids, passes, cfg.PublicBaseURL,
		passservice.WithLogger(log),
		passservice.WithMetrics(passmetrics.New()),
		passservice.WithTracer(tracer.NewOTel()),
	)
	identitySvc := identityservice.New(ids, docs,
		identityservice.WithPassSyncer(passSvc),
		identityservice.WithLogger(log),
		identityservice.WithMetrics(identitymetrics.New()),
		identityservice.WithTracer(tracer.NewOTel()),
	)
	printSvc := printqservice.New(jobs, ids, passSvc,
		printqservice.WithAuditor(auditor),
		printqservice.WithLogger(log),
		printqservice.WithMetrics(printqmetrics.New()),
	)

	healthHandler := health.New(cfg.Env)
	healthHandler.RegisterCheck("docstore", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if _, err := docs.Get(ctx, identitystore.CollectionCounters, identitystore.CounterWaitlist); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return err
		}
		return nil
	})

	router := httptransport.NewRouter(httptransport.Handlers{
		Identity: identityhandler.New(identitySvc, log),
		Pass:     passhandler.New(passSvc, log),
		PrintQ:   printqhandler.New(printSvc, log),
		Health:   healthHandler,
	}, cfg.ApproverSigningKey, cfg.ApproverTokenHash, log)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
