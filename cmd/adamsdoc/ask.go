package main

import (
	"fmt"

	"github.com/fwojciec/adamsdoc"
)

// Run executes the ask command. Every cached document is indexed before
// the question is answered.
func (c *AskCmd) Run(deps *Dependencies) error {
	indexed, err := indexCached(deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", adamsdoc.ErrorMessage(err))
		return err
	}
	if indexed == 0 {
		fmt.Fprintln(deps.Stderr, "error: no cached documents. Use 'adamsdoc fetch' or 'adamsdoc cache' first.")
		return adamsdoc.Errorf(adamsdoc.ENOTFOUND, "no cached documents")
	}

	return answer(deps, c.Question, c.TopK)
}

// indexCached indexes the text of every cached document and returns how
// many were indexed.
func indexCached(deps *Dependencies) (int, error) {
	entries := deps.TextCache.Entries()
	for _, e := range entries {
		var title string
		if d, err := deps.Descriptors.FindDescriptorByID(deps.Ctx, e.DocumentID); err == nil {
			title = d.Title
		} else if adamsdoc.ErrorCode(err) != adamsdoc.ENOTFOUND {
			return 0, err
		}

		if _, err := deps.Indexer.IndexDocument(deps.Ctx, e.DocumentID, e.Text, adamsdoc.DocumentMetadata{Title: title}, e.Pages); err != nil {
			return 0, err
		}
	}
	return len(entries), nil
}

// answer prints a generated answer when an Asker is configured, and the
// topK retrieved excerpts otherwise. The Asker applies its own topK.
func answer(deps *Dependencies, question string, topK int) error {
	if deps.Asker != nil {
		a, err := deps.Asker.Ask(deps.Ctx, question)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", adamsdoc.ErrorMessage(err))
			return err
		}
		fmt.Fprintln(deps.Stdout, a.Text)
		fmt.Fprintln(deps.Stdout, "\nSources:")
		for _, s := range a.Sources {
			fmt.Fprintf(deps.Stdout, "- %s\n", s.Citation)
		}
		return nil
	}

	results, err := deps.Retriever.Search(deps.Ctx, question, topK)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", adamsdoc.ErrorMessage(err))
		return err
	}
	if len(results) == 0 {
		fmt.Fprintf(deps.Stdout, "No cached text matches %q.\n", question)
		return nil
	}
	fmt.Fprintln(deps.Stdout, adamsdoc.FormatResults(results))
	return nil
}
