// Package gemini provides embeddings, answer generation and token counting
// backed by Google Gemini.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/adamsdoc"
	"google.golang.org/genai"
)

const model = "gemini-2.5-flash"

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 5

// Ensure Asker implements adamsdoc.Asker at compile time.
var _ adamsdoc.Asker = (*Asker)(nil)

// Asker implements adamsdoc.Asker using Google Gemini.
type Asker struct {
	client    *genai.Client
	retriever adamsdoc.Retriever
	topK      int

	counter     adamsdoc.TokenCounter
	tokenBudget int
}

// AskerOption configures an Asker.
type AskerOption func(*Asker)

// WithTopK sets how many chunks are retrieved per question.
func WithTopK(k int) AskerOption {
	return func(a *Asker) {
		a.topK = k
	}
}

// WithTokenBudget drops the lowest-ranked sources until the prompt fits in
// budget tokens as counted by counter.
func WithTokenBudget(counter adamsdoc.TokenCounter, budget int) AskerOption {
	return func(a *Asker) {
		a.counter = counter
		a.tokenBudget = budget
	}
}

// NewAsker creates a new Asker.
func NewAsker(client *genai.Client, retriever adamsdoc.Retriever, opts ...AskerOption) *Asker {
	a := &Asker{client: client, retriever: retriever, topK: DefaultTopK}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Ask answers a natural language question from the most relevant indexed chunks.
func (a *Asker) Ask(ctx context.Context, question string) (*adamsdoc.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, adamsdoc.Errorf(adamsdoc.EINVALID, "question required")
	}

	results, err := a.retriever.Search(ctx, question, a.topK)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, adamsdoc.Errorf(adamsdoc.ENOTFOUND, "no indexed documents match %q", question)
	}

	results, err = TrimToBudget(ctx, a.counter, a.tokenBudget, results, question)
	if err != nil {
		return nil, err
	}

	result, err := a.client.Models.GenerateContent(ctx, model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: BuildUserPrompt(results, question)}},
		}},
		BuildConfig(),
	)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, adamsdoc.Errorf(adamsdoc.EINTERNAL, "gemini returned nil result")
	}

	return &adamsdoc.Answer{Text: result.Text(), Sources: results}, nil
}

// TrimToBudget drops results from the end until the prompt built from them
// is within budget tokens. At least one result is always kept. A nil counter
// or non-positive budget disables trimming.
func TrimToBudget(ctx context.Context, counter adamsdoc.TokenCounter, budget int, results []adamsdoc.SearchResult, question string) ([]adamsdoc.SearchResult, error) {
	if counter == nil || budget <= 0 {
		return results, nil
	}
	for len(results) > 1 {
		n, err := counter.CountTokens(ctx, BuildUserPrompt(results, question))
		if err != nil {
			return nil, fmt.Errorf("count prompt tokens: %w", err)
		}
		if n <= budget {
			break
		}
		results = results[:len(results)-1]
	}
	return results, nil
}

// BuildConfig returns the GenerateContentConfig for Gemini API calls.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.2)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You are a helpful assistant answering questions about NRC regulatory documents. Answer based only on the excerpts provided. Cite each fact with the citation shown in the excerpt's source heading. If the answer is not in the excerpts, say so.",
			}},
		},
		Temperature: &temp,
	}
}

// BuildUserPrompt builds the user prompt containing the retrieved excerpts
// and the question.
func BuildUserPrompt(results []adamsdoc.SearchResult, question string) string {
	var sb strings.Builder
	sb.WriteString("<excerpts>\n")
	sb.WriteString(adamsdoc.FormatResults(results))
	sb.WriteString("\n</excerpts>\n\n")
	fmt.Fprintf(&sb, "Question: %s", question)
	return sb.String()
}
