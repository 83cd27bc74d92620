package workers

import (
	"context"
	"log"
	"time"

	"kinetic-engine/services"
)

// PollLedger periodically audits the cached kinetics balances against the
// transaction ledger and repairs any drift. Under normal operation every
// balance change is written atomically with its ledger row, so a non-zero
// repair count points at a bug or a manual database edit.
func PollLedger(ctx context.Context, ledger *services.LedgerService, pollInterval time.Duration) {
	log.Println("Starting ledger audit worker...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Ledger audit worker stopped.")
			return
		case <-ticker.C:
			repaired, err := ledger.Reconcile()
			if err != nil {
				log.Printf("❌ Ledger audit failed: %v", err)
				continue
			}
			if repaired > 0 {
				log.Printf("⚠️ Ledger audit repaired %d drifted balance(s).", repaired)
			}
		}
	}
}
