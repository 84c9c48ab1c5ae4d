/**
 * @description
 * This is the main entry point for the disbursement-service. It is responsible
 * for initializing all components of the service: configuration, the seeded
 * in-memory world, the repository, the transfer orchestration engine, the core
 * application service, the reminder scheduler, and the HTTP server. It wires
 * everything together and starts the service.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - internal/api, internal/app, internal/config, internal/orchestrator,
 *   internal/scheduler, internal/seed, internal/store: Internal packages for the service.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mchkit/disbursement-service/internal/api"
	"github.com/mchkit/disbursement-service/internal/app"
	"github.com/mchkit/disbursement-service/internal/config"
	"github.com/mchkit/disbursement-service/internal/orchestrator"
	"github.com/mchkit/disbursement-service/internal/scheduler"
	"github.com/mchkit/disbursement-service/internal/seed"
	"github.com/mchkit/disbursement-service/internal/store"
)

func main() {
	// Load application configuration from environment variables.
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}

	log.Printf("level=info component=bootstrap msg=\"starting disbursement-service\" port=%s", cfg.ServerPort)

	// Build the synthetic world. All state is process-lifetime; a restart
	// reseeds everything deterministically from the configured seed.
	data := seed.Build(rand.New(rand.NewSource(cfg.SeedRandomSeed)))
	registry, err := seed.LoadRegistryFile(cfg.RegistryFilePath)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"registry file load failed\" path=%s err=%v", cfg.RegistryFilePath, err)
	}
	if registry != nil {
		data.ApplyRegistry(registry)
		log.Printf("level=info component=bootstrap msg=\"registry overrides applied\" path=%s", cfg.RegistryFilePath)
	}
	data.SettlementMode = cfg.SettlementModeDef
	log.Printf("level=info component=bootstrap msg=\"world seeded\" beneficiaries=%d connectors=%d payments=%d fraud_signals=%d",
		len(data.Beneficiaries), len(data.Connectors), len(data.Payments), len(data.FraudSignals))

	// Initialize the data access layer (repository).
	repository := store.NewMemoryRepository(
		data.Beneficiaries,
		data.Connectors,
		data.Payments,
		data.FraudSignals,
		data.StageAmounts,
		data.SettlementMode,
	)

	// Initialize the transfer orchestration engine with scaled stage delays.
	delays := scaleDelays(orchestrator.DefaultDelays(), cfg.StageDelayScale)
	engine := orchestrator.New(repository, orchestrator.RealClock{}, delays)

	// Initialize the core application service with its dependencies.
	disbursementService := app.NewService(repository, engine, data.Tables, data.NudgeTemplates)

	// Start the benefit-stage reminder scheduler.
	reminder := scheduler.New(repository, cfg.ReminderCronSpec)
	if err := reminder.Start(); err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"scheduler start failed\" err=%v", err)
	}
	defer reminder.Stop()

	// Initialize the API handlers and router.
	handlers := api.NewHandlers(disbursementService)
	router := api.Routes(handlers)

	// Start the HTTP server.
	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)

	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=http msg=\"shutdown started\"")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	log.Println("level=info component=http msg=\"shutdown complete\"")
}

// scaleDelays applies the configured percentage to every stage delay so demos
// can speed the pipeline up or slow it down without recompiling.
func scaleDelays(d orchestrator.Delays, percent int) orchestrator.Delays {
	scale := func(base time.Duration) time.Duration {
		return base * time.Duration(percent) / 100
	}
	return orchestrator.Delays{
		RiskCheck:          scale(d.RiskCheck),
		Auth3DS:            scale(d.Auth3DS),
		AuthUPIPIN:         scale(d.AuthUPIPIN),
		AuthInstant:        scale(d.AuthInstant),
		AuthPendingInitial: scale(d.AuthPendingInitial),
		AuthPendingConfirm: scale(d.AuthPendingConfirm),
		Routing:            scale(d.Routing),
		CreditInstruction:  scale(d.CreditInstruction),
		PayoutRequest:      scale(d.PayoutRequest),
		SettlementInstant:  scale(d.SettlementInstant),
		SettlementT1:       scale(d.SettlementT1),
	}
}
