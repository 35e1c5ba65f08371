package main

import (
	"fmt"

	"github.com/fwojciec/adamsdoc"
)

// Run executes the cache command.
func (c *CacheCmd) Run(deps *Dependencies) error {
	dir := c.Dir
	if dir == "" {
		dir = deps.PDFDir
	}

	res, err := deps.TextCache.CacheDir(deps.Ctx, dir)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", adamsdoc.ErrorMessage(err))
		return err
	}

	for _, e := range res.Errors {
		fmt.Fprintf(deps.Stdout, "skipped %s\n", e)
	}
	fmt.Fprintf(deps.Stdout, "Cached %d PDFs, skipped %d.\n", res.Processed, res.Skipped)
	return nil
}
