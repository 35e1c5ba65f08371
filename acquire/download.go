package acquire

import (
	"context"
	"time"

	"github.com/fwojciec/adamsdoc"
	"golang.org/x/time/rate"
)

// DefaultDownloadInterval is the pause enforced between batch downloads.
const DefaultDownloadInterval = 1 * time.Second

var _ adamsdoc.Downloader = (*CachedDownloader)(nil)

// CachedDownloader memoizes successful downloads under "download_<id>".
type CachedDownloader struct {
	next  adamsdoc.Downloader
	cache adamsdoc.Cache[*adamsdoc.DownloadResult]
}

// NewCachedDownloader wraps next with cache.
func NewCachedDownloader(next adamsdoc.Downloader, cache adamsdoc.Cache[*adamsdoc.DownloadResult]) *CachedDownloader {
	return &CachedDownloader{next: next, cache: cache}
}

// DownloadCacheKey returns the memoization key for a document.
func DownloadCacheKey(documentID string) string {
	return "download_" + documentID
}

// Download returns a memoized successful result or delegates to next.
func (d *CachedDownloader) Download(ctx context.Context, documentID, groupingHint string) (*adamsdoc.DownloadResult, error) {
	key := DownloadCacheKey(documentID)
	if r, ok := d.cache.Get(key); ok {
		return r, nil
	}

	r, err := d.next.Download(ctx, documentID, groupingHint)
	if err != nil {
		return nil, err
	}
	if r.Success {
		d.cache.Set(key, r)
	}
	return r, nil
}

// Batch downloads descriptors one at a time, paced by a rate limiter,
// until a target number of successes is reached.
type Batch struct {
	downloader adamsdoc.Downloader
	log        adamsdoc.DownloadLog
	limiter    *rate.Limiter
	onResult   func(*adamsdoc.Descriptor, *adamsdoc.DownloadResult)
}

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// WithInterval sets the minimum time between download starts.
func WithInterval(d time.Duration) BatchOption {
	return func(b *Batch) {
		b.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithDownloadLog records every result in log.
func WithDownloadLog(log adamsdoc.DownloadLog) BatchOption {
	return func(b *Batch) {
		b.log = log
	}
}

// WithProgress calls fn after each download attempt.
func WithProgress(fn func(*adamsdoc.Descriptor, *adamsdoc.DownloadResult)) BatchOption {
	return func(b *Batch) {
		b.onResult = fn
	}
}

// NewBatch creates a Batch over downloader.
func NewBatch(downloader adamsdoc.Downloader, opts ...BatchOption) *Batch {
	b := &Batch{
		downloader: downloader,
		limiter:    rate.NewLimiter(rate.Every(DefaultDownloadInterval), 1),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// BatchResult summarizes a batch run.
type BatchResult struct {
	Results   []*adamsdoc.DownloadResult
	Attempts  int
	Successes int
}

// Run downloads docs in order into the folder for groupingHint. It stops
// once target downloads have succeeded or 3×target have been attempted;
// a target of 0 or less attempts every descriptor. Per-document failures
// are reported in the results and never stop the batch.
func (b *Batch) Run(ctx context.Context, docs []*adamsdoc.Descriptor, target int, groupingHint string) (*BatchResult, error) {
	if target <= 0 {
		target = len(docs)
	}
	maxAttempts := target * 3

	out := &BatchResult{}
	for _, d := range docs {
		if out.Successes >= target || out.Attempts >= maxAttempts {
			break
		}

		if err := b.limiter.Wait(ctx); err != nil {
			return out, err
		}

		r, err := b.downloader.Download(ctx, d.ID, groupingHint)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			r = &adamsdoc.DownloadResult{DocumentID: d.ID, Error: err.Error()}
		}

		out.Attempts++
		if r.Success {
			out.Successes++
		}
		out.Results = append(out.Results, r)

		if b.log != nil {
			if err := b.log.RecordDownload(ctx, r); err != nil {
				return out, err
			}
		}
		if b.onResult != nil {
			b.onResult(d, r)
		}
	}
	return out, nil
}
