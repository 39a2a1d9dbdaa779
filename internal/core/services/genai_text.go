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

// This file binds the text capabilities (summarization, keyword extraction,
// text embedding) to Vertex AI generative models through the rate-limited
// wrappers in the cloud package.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/jaycherian/gcp-go-media-verify/internal/cloud"
	"google.golang.org/genai"
)

// summaryPromptTemplate instructs the model to behave like a fixed-length
// abstractive summarizer. The word bounds land in the prompt because the
// capability contract expresses lengths per call site (70/50 for transcripts,
// 100/100 for article bodies).
const summaryPromptTemplate = "Summarize the following text in at least %d and at most %d words. " +
	"Return only the summary, with no preamble.\n\nTEXT:\n%s"

// keywordPromptTemplate instructs the model to act as a keyword extractor.
// Stop words are excluded and the output is one keyphrase per line, most
// relevant first, so parsing stays trivial.
const keywordPromptTemplate = "Extract up to %d short keyword phrases that best represent the topic of the " +
	"following text. Exclude common stop words. Return one phrase per line, most relevant first, " +
	"with no numbering and no other text.\n\nTEXT:\n%s"

// GenAISummarizer implements Summarizer on a rate-limited generative model.
type GenAISummarizer struct {
	Model *cloud.QuotaAwareGenerativeAIModel
}

// Summarize condenses the text to the requested word bounds.
func (s *GenAISummarizer) Summarize(ctx context.Context, text string, maxLength int, minLength int) (string, error) {
	return s.Model.GenerateText(ctx, fmt.Sprintf(summaryPromptTemplate, minLength, maxLength, text))
}

// GenAIKeywordExtractor implements KeywordExtractor on a rate-limited
// generative model.
type GenAIKeywordExtractor struct {
	Model *cloud.QuotaAwareGenerativeAIModel
}

// Extract returns up to topN keyphrases, one parsed per response line. The
// model occasionally returns fewer lines than asked; that is fine — the
// keyword set is "up to" topN terms.
func (k *GenAIKeywordExtractor) Extract(ctx context.Context, text string, topN int) ([]string, error) {
	raw, err := k.Model.GenerateText(ctx, fmt.Sprintf(keywordPromptTemplate, topN, text))
	if err != nil {
		return nil, err
	}

	keywords := make([]string, 0, topN)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.Trim(strings.TrimSpace(line), "-*"))
		if line == "" {
			continue
		}
		keywords = append(keywords, line)
		if len(keywords) == topN {
			break
		}
	}
	return keywords, nil
}

// VertexEmbedder implements TextEmbedder on a Vertex AI embedding model.
type VertexEmbedder struct {
	Models    *genai.Models
	ModelName string
}

// Embed returns the embedding vector for a single text.
func (e *VertexEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
	resp, err := e.Models.EmbedContent(ctx, e.ModelName, contents, nil)
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("embedding model %s returned no vectors", e.ModelName)
	}
	return resp.Embeddings[0].Values, nil
}

// compile-time interface checks for the production bindings in this file.
var (
	_ Summarizer       = (*GenAISummarizer)(nil)
	_ KeywordExtractor = (*GenAIKeywordExtractor)(nil)
	_ TextEmbedder     = (*VertexEmbedder)(nil)
)
