package main

import (
	"fmt"

	"github.com/fwojciec/adamsdoc"
)

// Run executes the fetch command.
func (c *FetchCmd) Run(deps *Dependencies) error {
	res, err := deps.Pipeline.Run(deps.Ctx, c.Query, c.Max, c.Target)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", adamsdoc.ErrorMessage(err))
		return err
	}

	if len(res.Descriptors) == 0 {
		fmt.Fprintf(deps.Stdout, "No documents found for %q.\n", c.Query)
		return nil
	}

	var chunks int
	for _, r := range res.Indexed {
		chunks += r.Chunks
	}
	fmt.Fprintf(deps.Stdout, "Found %d documents, downloaded %d of %d attempted, indexed %d (%d chunks).\n",
		len(res.Descriptors), res.Downloads.Successes, res.Downloads.Attempts, len(res.Indexed), chunks)
	for _, f := range res.Failures {
		fmt.Fprintf(deps.Stdout, "skipped %s: %s\n", f.DocumentID, adamsdoc.ErrorMessage(f.Err))
	}

	if c.Question == "" || len(res.Indexed) == 0 {
		return nil
	}
	fmt.Fprintln(deps.Stdout)
	return answer(deps, c.Question, c.TopK)
}
