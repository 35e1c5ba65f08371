package adamsdoc

import (
	"context"
	"time"
)

// DownloadResult is the outcome of downloading one document.
// A failed download is reported through Success and Error, not a Go error.
type DownloadResult struct {
	DocumentID string `json:"documentId"`
	Success    bool   `json:"success"`
	FilePath   string `json:"filePath,omitempty"`
	Size       int64  `json:"size,omitempty"`
	URL        string `json:"url,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Downloader fetches document PDFs and stores them on disk.
type Downloader interface {
	// Download stores the PDF for documentID in a folder derived from
	// groupingHint. Per-document failures are reported in the result; a
	// non-nil error is reserved for invalid input, local storage failures
	// and a canceled context.
	Download(ctx context.Context, documentID, groupingHint string) (*DownloadResult, error)
}

// DownloadLog records download outcomes.
type DownloadLog interface {
	RecordDownload(ctx context.Context, result *DownloadResult) error
	DownloadStats(ctx context.Context) (*DownloadStats, error)
}

// DownloadStats aggregates recorded downloads.
type DownloadStats struct {
	Attempts    int       `json:"attempts"`
	Successes   int       `json:"successes"`
	SuccessRate float64   `json:"successRate"`
	AverageSize float64   `json:"averageSize"`
	LastAttempt time.Time `json:"lastAttempt"`
}
