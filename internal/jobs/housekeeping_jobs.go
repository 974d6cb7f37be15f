package jobs

import (
	"context"
	"time"

	"ecoloop-backend/internal/logger"
)

// Used and expired rows are kept around for a day before deletion so a
// support engineer can still inspect a failed verification.
const deadRowRetention = 24 * time.Hour

// PurgeDeadOTPs removes used and expired OTP rows past the retention window
func (jr *JobRunner) PurgeDeadOTPs() {
	jr.runWithRecovery("PurgeDeadOTPs", func() {
		ctx := context.Background()
		cutoff := time.Now().UTC().Add(-deadRowRetention)

		count, err := jr.store.OTPRepository.DeleteDead(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to purge dead OTPs", "error", err)
			return
		}
		logger.Info("Purged dead OTPs", "count", count)
	})
}

// PurgeDeadRegistrations removes consumed and expired pending registrations
// past the retention window
func (jr *JobRunner) PurgeDeadRegistrations() {
	jr.runWithRecovery("PurgeDeadRegistrations", func() {
		ctx := context.Background()
		cutoff := time.Now().UTC().Add(-deadRowRetention)

		count, err := jr.store.PendingRegistrationRepository.DeleteDead(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to purge dead registrations", "error", err)
			return
		}
		logger.Info("Purged dead pending registrations", "count", count)
	})
}

// PurgeRevokedTokens removes blacklist entries whose tokens have expired on
// their own, so the table never grows unbounded
func (jr *JobRunner) PurgeRevokedTokens() {
	jr.runWithRecovery("PurgeRevokedTokens", func() {
		ctx := context.Background()

		count, err := jr.store.TokenBlacklistRepository.DeleteExpired(ctx, time.Now().UTC())
		if err != nil {
			logger.Error("Failed to purge revoked tokens", "error", err)
			return
		}
		logger.Info("Purged expired revoked tokens", "count", count)
	})
}
