package ai

import (
	"context"
	"fmt"
	"log/slog"
)

// BatchItem is the per-slot outcome of a batched embedding call. Exactly one
// of Vector or Err is set.
type BatchItem struct {
	Vector []float32
	Err    error
}

// EmbedEach embeds a batch of texts, isolating failures to individual slots.
//
// It first attempts one batched call for throughput. If the batch fails as a
// whole, every text is retried individually so that one bad item costs only
// its own slot instead of the entire batch. The result always has the same
// length and order as texts.
func EmbedEach(ctx context.Context, embedder Embedder, texts []string) []BatchItem {
	items := make([]BatchItem, len(texts))
	if len(texts) == 0 {
		return items
	}

	vectors, err := embedder.EmbedTexts(ctx, texts)
	if err == nil && len(vectors) != len(texts) {
		err = fmt.Errorf("embedding result mismatch: expected %d, received %d", len(texts), len(vectors))
	}
	if err == nil {
		for i := range items {
			items[i].Vector = vectors[i]
		}
		return items
	}

	slog.Debug("batch embedding failed, retrying items individually", "count", len(texts), "err", err)

	for i, text := range texts {
		if ctx.Err() != nil {
			items[i].Err = ctx.Err()
			continue
		}
		vector, itemErr := embedder.EmbedText(ctx, text)
		if itemErr != nil {
			items[i].Err = itemErr
			continue
		}
		items[i].Vector = vector
	}

	return items
}
