// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	"fmt"
	"math"
	"sort"

	"github.com/jaycherian/gcp-go-media-verify/internal/core/cor"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/model"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/services"
)

// SemanticRankerCommand orders the candidate articles by how closely each one
// matches the transcript summary and keeps the top K.
//
// The primary input is the transcript summary; the article slice is read from
// a second, named context parameter set by the workflow. Both the summary and
// every article's combined text are embedded, articles are sorted by
// descending cosine similarity to the summary, and ties keep the original
// retrieval order (the sort is explicitly stable).
type SemanticRankerCommand struct {
	cor.BaseCommand
	embedder          services.TextEmbedder
	topK              int
	articlesParamName string // Context key holding the []*model.Article to rank.
}

func NewSemanticRankerCommand(name string, embedder services.TextEmbedder, topK int, articlesParamName string) *SemanticRankerCommand {
	return &SemanticRankerCommand{
		BaseCommand:       *cor.NewBaseCommand(name),
		embedder:          embedder,
		topK:              topK,
		articlesParamName: articlesParamName,
	}
}

// Execute ranks the articles against the input summary and outputs the top K
// in rank order. An empty article slice passes through untouched.
func (c *SemanticRankerCommand) Execute(context cor.Context) {
	summary := context.Get(c.GetInputParam()).(string)
	articles := context.Get(c.articlesParamName).([]*model.Article)
	ctx := context.GetContext()

	if len(articles) == 0 {
		c.GetSuccessCounter().Add(ctx, 1)
		context.Add(c.GetOutputParam(), articles)
		return
	}

	summaryVector, err := c.embedder.Embed(ctx, summary)
	if err != nil {
		c.GetErrorCounter().Add(ctx, 1)
		context.AddError(c.GetName(), fmt.Errorf("unable to embed transcript summary: %w", err))
		return
	}

	similarities := make([]float64, len(articles))
	for i, article := range articles {
		vector, err := c.embedder.Embed(ctx, article.EmbeddingText())
		if err != nil {
			c.GetErrorCounter().Add(ctx, 1)
			context.AddError(c.GetName(), fmt.Errorf("unable to embed article %d: %w", i, err))
			return
		}
		similarities[i] = cosineSimilarity(summaryVector, vector)
	}

	// Stable sort so equal similarities keep their retrieval order.
	indices := make([]int, len(articles))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return similarities[indices[a]] > similarities[indices[b]]
	})

	limit := c.topK
	if len(indices) < limit {
		limit = len(indices)
	}
	ranked := make([]*model.Article, 0, limit)
	for _, idx := range indices[:limit] {
		ranked = append(ranked, articles[idx])
	}

	c.GetSuccessCounter().Add(ctx, 1)
	context.Add(c.GetOutputParam(), ranked)
}

// cosineSimilarity returns the cosine of the angle between two vectors, or 0
// when either vector has zero magnitude or the dimensions disagree.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
