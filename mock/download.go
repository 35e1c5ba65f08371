package mock

import (
	"context"

	"github.com/fwojciec/adamsdoc"
)

var (
	_ adamsdoc.Downloader  = (*Downloader)(nil)
	_ adamsdoc.DownloadLog = (*DownloadLog)(nil)
)

// Downloader is a mock implementation of adamsdoc.Downloader.
type Downloader struct {
	DownloadFn func(ctx context.Context, documentID, groupingHint string) (*adamsdoc.DownloadResult, error)
}

func (d *Downloader) Download(ctx context.Context, documentID, groupingHint string) (*adamsdoc.DownloadResult, error) {
	return d.DownloadFn(ctx, documentID, groupingHint)
}

// DownloadLog is a mock implementation of adamsdoc.DownloadLog.
type DownloadLog struct {
	RecordDownloadFn func(ctx context.Context, result *adamsdoc.DownloadResult) error
	DownloadStatsFn  func(ctx context.Context) (*adamsdoc.DownloadStats, error)
}

func (l *DownloadLog) RecordDownload(ctx context.Context, result *adamsdoc.DownloadResult) error {
	return l.RecordDownloadFn(ctx, result)
}

func (l *DownloadLog) DownloadStats(ctx context.Context) (*adamsdoc.DownloadStats, error) {
	return l.DownloadStatsFn(ctx)
}
