package slog

import (
	"log/slog"
	"time"
)

// RetryLogger returns a retry.Policy OnRetry hook that logs each retry of op.
func RetryLogger(logger *slog.Logger, op string) func(attempt int, delay time.Duration, err error) {
	return func(attempt int, delay time.Duration, err error) {
		logger.Warn("retrying",
			"op", op,
			"attempt", attempt,
			"delay", delay,
			"err", err,
		)
	}
}
