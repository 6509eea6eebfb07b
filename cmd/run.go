package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"closetcoins/api"
	"closetcoins/config"
	"closetcoins/database"
	"closetcoins/events"
	"closetcoins/metrics"
	"closetcoins/repository"
	"closetcoins/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the coin ledger service
func Run(ctx context.Context) error {
	cfg := config.Get()

	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	}

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	eventBus := events.NewBus()
	subscribeObservers(eventBus)

	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	earningService := service.NewEarningService(uowFactory)
	redemptionService := service.NewRedemptionService(uowFactory)
	historyService := service.NewHistoryService(uowFactory)

	server := api.NewServer(cfg, earningService, redemptionService, historyService)
	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"addr": cfg.ListenAddr,
			"env":  cfg.Environment,
		}).Info("Coin ledger service listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		db.Close()
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown incomplete")
	}

	db.Close()
	log.Info("Shutdown completed")

	return nil
}

// subscribeObservers wires the metrics recorder and audit logger onto the
// event bus. Both run after commit; neither can affect a ledger mutation.
func subscribeObservers(bus *events.Bus) {
	bus.Subscribe(events.EventTypeCoinChange, func(ctx context.Context, e events.Event) {
		change, ok := e.(events.CoinChangeEvent)
		if !ok {
			return
		}
		metrics.LedgerMutations.WithLabelValues(string(change.Reason)).Inc()
		if change.Amount >= 0 {
			metrics.CoinsMoved.WithLabelValues("credit").Add(float64(change.Amount))
		} else {
			metrics.CoinsMoved.WithLabelValues("debit").Add(float64(-change.Amount))
		}
	})

	bus.Subscribe(events.EventTypeAccountCreated, func(ctx context.Context, e events.Event) {
		created, ok := e.(events.AccountCreatedEvent)
		if !ok {
			return
		}
		metrics.AccountsCreated.Inc()
		log.WithFields(log.Fields{
			"userID":         created.UserID,
			"initialBalance": created.InitialBalance,
		}).Info("Account created")
	})

	bus.Subscribe(events.EventTypeRewardRedeemed, func(ctx context.Context, e events.Event) {
		redeemed, ok := e.(events.RewardRedeemedEvent)
		if !ok {
			return
		}
		metrics.Redemptions.Inc()
		log.WithFields(log.Fields{
			"userID":     redeemed.UserID,
			"rewardID":   redeemed.RewardID,
			"rewardName": redeemed.RewardName,
			"cost":       redeemed.Cost,
			"newBalance": redeemed.NewBalance,
		}).Info("Reward redeemed")
	})
}
