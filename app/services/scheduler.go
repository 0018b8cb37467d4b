package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/MouctarBahLk/soorocampus-sub001/app/database"
	"github.com/MouctarBahLk/soorocampus-sub001/app/logger"
	"github.com/MouctarBahLk/soorocampus-sub001/app/routes/payments"
)

// StartScheduler starts the background task scheduler
func StartScheduler(db *sql.DB, reconciler *payments.Reconciler) {
	go func() {
		log := logger.Get()
		log.Info().Msg("Scheduler started")
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			if err := ReverifyStalePayments(db, reconciler); err != nil {
				log.Error().Err(err).Msg("Stale payment sweep failed")
			}
		}
	}()
}

// ReverifyStalePayments re-checks payments stuck pending for over an hour
// against their provider. A lost webhook is the usual cause; the provider's
// check endpoint is the source of truth either way.
func ReverifyStalePayments(db *sql.DB, reconciler *payments.Reconciler) error {
	stale, err := database.ListStalePendingPayments(db, time.Hour)
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	log := logger.Get()
	log.Info().Int("count", len(stale)).Msg("Re-verifying stale pending payments")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	for _, p := range stale {
		if err := reconciler.Reverify(ctx, p); err != nil {
			log.Warn().Err(err).Str("transaction_id", p.ID).Msg("Re-verification failed")
		}
	}
	return nil
}
