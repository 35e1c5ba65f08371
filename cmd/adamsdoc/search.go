package main

import (
	"fmt"

	"github.com/fwojciec/adamsdoc"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	docs, err := deps.Searcher.Search(deps.Ctx, c.Query, c.Max)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", adamsdoc.ErrorMessage(err))
		return err
	}

	if len(docs) == 0 {
		fmt.Fprintf(deps.Stdout, "No documents found for %q.\n", c.Query)
		return nil
	}

	if err := deps.Descriptors.SaveDescriptors(deps.Ctx, c.Query, docs); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", adamsdoc.ErrorMessage(err))
		return err
	}

	for _, d := range docs {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s\n", d.ID, d.DateAdded, d.Title)
	}
	return nil
}
