package main_test

import (
	"context"
	"testing"

	"github.com/fwojciec/adamsdoc"
	main "github.com/fwojciec/adamsdoc/cmd/adamsdoc"
	"github.com/fwojciec/adamsdoc/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadCmd_Run(t *testing.T) {
	t.Parallel()

	newDownloader := func() *mock.Downloader {
		return &mock.Downloader{
			DownloadFn: func(_ context.Context, id, hint string) (*adamsdoc.DownloadResult, error) {
				if id == "ML24001A001" {
					return &adamsdoc.DownloadResult{DocumentID: id, Success: true, FilePath: "/pdfs/" + hint + "/" + id + ".pdf", Size: 4096}, nil
				}
				return &adamsdoc.DownloadResult{DocumentID: id, Error: "not a PDF"}, nil
			},
		}
	}

	t.Run("downloads and records each document", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(t)
		deps.Downloader = newDownloader()
		var recorded []string
		deps.DownloadLog = &mock.DownloadLog{
			RecordDownloadFn: func(_ context.Context, r *adamsdoc.DownloadResult) error {
				recorded = append(recorded, r.DocumentID)
				return nil
			},
		}

		cmd := &main.DownloadCmd{IDs: []string{"ML24001A001", "ML24001A002"}, Hint: "reactor"}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Equal(t, []string{"ML24001A001", "ML24001A002"}, recorded)
		assert.Contains(t, stdout.String(), "ok    ML24001A001  /pdfs/reactor/ML24001A001.pdf (4096 bytes)")
		assert.Contains(t, stdout.String(), "fail  ML24001A002  not a PDF")
	})

	t.Run("returns error when nothing downloaded", func(t *testing.T) {
		t.Parallel()

		deps, _, _ := newDeps(t)
		deps.Downloader = newDownloader()
		deps.DownloadLog = &mock.DownloadLog{
			RecordDownloadFn: func(context.Context, *adamsdoc.DownloadResult) error { return nil },
		}

		cmd := &main.DownloadCmd{IDs: []string{"ML24001A002"}, Hint: "general"}
		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Equal(t, adamsdoc.EUNAVAILABLE, adamsdoc.ErrorCode(err))
	})
}
