package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/adamsdoc"
	"github.com/fwojciec/adamsdoc/retry"
)

// MinPDFSize is the size a payload must exceed to be accepted as a PDF.
const MinPDFSize = 100

var pdfSignature = []byte("%PDF")

var _ adamsdoc.Downloader = (*Downloader)(nil)

// Downloader fetches PDFs into <baseDir>/<group>_<date>/<id>.pdf, trying
// each URL strategy in order.
type Downloader struct {
	baseDir string
	cfg     config
	client  *http.Client
}

// NewDownloader creates a Downloader storing files under baseDir.
func NewDownloader(baseDir string, opts ...Option) *Downloader {
	cfg := newConfig(DefaultDownloadTimeout, opts)
	return &Downloader{
		baseDir: baseDir,
		cfg:     cfg,
		client:  newClient(cfg.timeout),
	}
}

// Download stores the document's PDF. A file already present at the target
// path is reused. When every URL fails the result reports the reasons and
// the returned error is nil.
func (d *Downloader) Download(ctx context.Context, documentID, groupingHint string) (*adamsdoc.DownloadResult, error) {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return nil, adamsdoc.Errorf(adamsdoc.EINVALID, "document ID required")
	}
	if err := adamsdoc.ValidateDocumentID(documentID); err != nil {
		return nil, err
	}

	dir := filepath.Join(d.baseDir, adamsdoc.GroupFolder(groupingHint, d.cfg.now()))
	path := filepath.Join(dir, documentID+".pdf")
	result := &adamsdoc.DownloadResult{DocumentID: documentID}

	if size, ok := existingPDF(path); ok {
		result.Success = true
		result.FilePath = path
		result.Size = size
		return result, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	var reasons []string
	for _, u := range d.cfg.urls(documentID) {
		data, err := retry.Do(ctx, d.cfg.policy, "download "+documentID, func(ctx context.Context) ([]byte, error) {
			return d.fetch(ctx, u)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			reasons = append(reasons, fmt.Sprintf("%s: %s", u, adamsdoc.ErrorMessage(err)))
			continue
		}

		if err := writeFileAtomic(path, data); err != nil {
			return nil, err
		}
		result.Success = true
		result.FilePath = path
		result.Size = int64(len(data))
		result.URL = u
		return result, nil
	}

	result.Error = strings.Join(reasons, "; ")
	return result, nil
}

// fetch downloads url and validates the payload as a PDF.
func (d *Downloader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retry.Permanent(adamsdoc.Errorf(adamsdoc.EINVALID, "invalid URL %s: %v", url, err))
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/pdf,*/*")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, requestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, requestError(ctx, err)
	}

	if err := ValidatePDF(data); err != nil {
		return nil, retry.Permanent(err)
	}
	return data, nil
}

// ValidatePDF returns an ECONTENT error unless data starts with the PDF
// signature and is larger than MinPDFSize.
func ValidatePDF(data []byte) error {
	if len(data) <= MinPDFSize {
		return adamsdoc.Errorf(adamsdoc.ECONTENT, "payload too small: %d bytes", len(data))
	}
	if !bytes.HasPrefix(data, pdfSignature) {
		return adamsdoc.Errorf(adamsdoc.ECONTENT, "payload is not a PDF")
	}
	return nil
}

// existingPDF reports the size of the file at path if it passes the same
// size and signature checks as a downloaded payload.
func existingPDF(path string) (int64, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.Size() <= MinPDFSize {
		return 0, false
	}
	head := make([]byte, len(pdfSignature))
	if _, err := io.ReadFull(f, head); err != nil || !bytes.Equal(head, pdfSignature) {
		return 0, false
	}
	return info.Size(), true
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place, so readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
