package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/fwojciec/adamsdoc"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ adamsdoc.DownloadLog = (*DownloadLog)(nil)

// DownloadLog implements adamsdoc.DownloadLog using SQLite.
type DownloadLog struct {
	db *DB
}

// NewDownloadLog creates a new DownloadLog.
func NewDownloadLog(db *DB) *DownloadLog {
	return &DownloadLog{db: db}
}

// RecordDownload stores one download attempt.
func (l *DownloadLog) RecordDownload(ctx context.Context, result *adamsdoc.DownloadResult) error {
	if result == nil || result.DocumentID == "" {
		return adamsdoc.Errorf(adamsdoc.EINVALID, "download result requires a document ID")
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO downloads (id, document_id, success, file_path, size, url, error, attempted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, uuid.New().String(), result.DocumentID, result.Success, result.FilePath, result.Size,
		result.URL, result.Error, l.db.now().Format(time.RFC3339))

	return err
}

// DownloadStats aggregates every recorded attempt. AverageSize covers
// successful downloads only.
func (l *DownloadLog) DownloadStats(ctx context.Context) (*adamsdoc.DownloadStats, error) {
	var stats adamsdoc.DownloadStats
	var lastAttempt sql.NullString

	err := l.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(success), 0),
			COALESCE(AVG(CASE WHEN success THEN size END), 0),
			MAX(attempted_at)
		FROM downloads
	`).Scan(&stats.Attempts, &stats.Successes, &stats.AverageSize, &lastAttempt)
	if err != nil {
		return nil, err
	}

	if stats.Attempts > 0 {
		stats.SuccessRate = float64(stats.Successes) / float64(stats.Attempts)
	}
	if lastAttempt.Valid {
		stats.LastAttempt, err = parseRFC3339(lastAttempt.String, "attempted_at")
		if err != nil {
			return nil, err
		}
	}

	return &stats, nil
}
