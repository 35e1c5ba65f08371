package gemini

import (
	"context"

	"github.com/fwojciec/adamsdoc"
	"google.golang.org/genai"
)

// DefaultEmbeddingModel is the model used for chunk and question embeddings.
const DefaultEmbeddingModel = "text-embedding-004"

// Ensure Embedder implements adamsdoc.Embedder at compile time.
var _ adamsdoc.Embedder = (*Embedder)(nil)

// Embedder implements adamsdoc.Embedder using the Gemini embeddings API.
type Embedder struct {
	client *genai.Client
	model  string
}

// NewEmbedder creates an Embedder. An empty model selects DefaultEmbeddingModel.
func NewEmbedder(client *genai.Client, model string) *Embedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &Embedder{client: client, model: model}
}

// Embed returns one vector per text in a single request.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, "user")
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, nil)
	if err != nil {
		return nil, adamsdoc.Errorf(adamsdoc.EUNAVAILABLE, "embed content: %v", err)
	}
	if resp == nil || len(resp.Embeddings) != len(texts) {
		return nil, adamsdoc.Errorf(adamsdoc.EINTERNAL, "gemini returned wrong number of embeddings")
	}

	vectors := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		if emb == nil {
			return nil, adamsdoc.Errorf(adamsdoc.EINTERNAL, "gemini returned empty embedding %d", i)
		}
		vectors[i] = emb.Values
	}
	return vectors, nil
}
