package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/adamsdoc"
)

// Ensure LoggingDownloader implements adamsdoc.Downloader.
var _ adamsdoc.Downloader = (*LoggingDownloader)(nil)

// LoggingDownloader wraps a Downloader with logging. Failed downloads are
// logged at warn level with their reason.
type LoggingDownloader struct {
	next   adamsdoc.Downloader
	logger *slog.Logger
}

// NewLoggingDownloader creates a new LoggingDownloader.
func NewLoggingDownloader(next adamsdoc.Downloader, logger *slog.Logger) *LoggingDownloader {
	return &LoggingDownloader{next: next, logger: logger}
}

// Download delegates to the wrapped downloader and logs the outcome.
func (d *LoggingDownloader) Download(ctx context.Context, documentID, groupingHint string) (res *adamsdoc.DownloadResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"id", documentID,
			"hint", groupingHint,
			"duration", time.Since(begin),
		}
		switch {
		case err != nil:
			d.logger.Error("download", append(attrs, "err", err)...)
		case res == nil:
			d.logger.Info("download", attrs...)
		case !res.Success:
			d.logger.Warn("download", append(attrs, "reason", res.Error)...)
		default:
			d.logger.Info("download", append(attrs, "path", res.FilePath, "size", res.Size, "url", res.URL)...)
		}
	}(time.Now())
	return d.next.Download(ctx, documentID, groupingHint)
}
