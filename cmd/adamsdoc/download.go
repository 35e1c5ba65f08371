package main

import (
	"fmt"
	"io"

	"github.com/fwojciec/adamsdoc"
)

// Run executes the download command.
func (c *DownloadCmd) Run(deps *Dependencies) error {
	var succeeded int
	for _, id := range c.IDs {
		r, err := deps.Downloader.Download(deps.Ctx, id, c.Hint)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", adamsdoc.ErrorMessage(err))
			return err
		}
		if err := deps.DownloadLog.RecordDownload(deps.Ctx, r); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", adamsdoc.ErrorMessage(err))
			return err
		}

		printDownload(deps.Stdout, r)
		if r.Success {
			succeeded++
		}
	}

	if succeeded == 0 {
		return adamsdoc.Errorf(adamsdoc.EUNAVAILABLE, "no documents downloaded")
	}
	return nil
}

func printDownload(w io.Writer, r *adamsdoc.DownloadResult) {
	if r.Success {
		fmt.Fprintf(w, "ok    %s  %s (%d bytes)\n", r.DocumentID, r.FilePath, r.Size)
		return
	}
	fmt.Fprintf(w, "fail  %s  %s\n", r.DocumentID, r.Error)
}
