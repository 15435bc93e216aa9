// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ExpiredCleaner removes documents past their expiry.
type ExpiredCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// OAuthStateCleanupJob creates a job that removes expired OAuth state tokens.
// This is a backup for when MongoDB's TTL index cleanup is delayed.
func OAuthStateCleanupJob(states ExpiredCleaner, logger *zap.Logger) Job {
	return cleanupJob("oauth-state-cleanup", time.Hour, states, logger, "cleaned up expired OAuth states")
}

// DraftCleanupJob creates a job that removes abandoned onboarding drafts.
func DraftCleanupJob(drafts ExpiredCleaner, logger *zap.Logger) Job {
	return cleanupJob("onboarding-draft-cleanup", 6*time.Hour, drafts, logger, "cleaned up expired onboarding drafts")
}

func cleanupJob(name string, every time.Duration, c ExpiredCleaner, logger *zap.Logger, msg string) Job {
	return Job{
		Name:     name,
		Interval: every,
		Run: func(ctx context.Context) error {
			count, err := c.CleanupExpired(ctx)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Debug(msg, zap.Int64("count", count))
			}
			return nil
		},
	}
}
