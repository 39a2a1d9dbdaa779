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

// Package newsapi implements the news-search capability against the NewsAPI
// "everything" endpoint. The client fetches a single page per call; the
// article retriever command owns pagination, result capping, and the
// short-page exhaustion signal.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jaycherian/gcp-go-media-verify/internal/core/model"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/services"
)

// Client queries the news-search API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	sortBy     string
	httpClient *http.Client
}

// NewClient builds a news-search client. A missing API key is a configuration
// error surfaced immediately — before any pipeline ever runs a query.
//
// Inputs:
//   - baseURL: The search endpoint (e.g., https://newsapi.org/v2/everything).
//   - apiKey: The NewsAPI key.
//   - sortBy: The sort order requested from the API (e.g., "relevance").
//   - timeout: Per-request HTTP timeout.
func NewClient(baseURL string, apiKey string, sortBy string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "news-search API key is empty", nil)
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		sortBy:     sortBy,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// wireArticle matches the upstream JSON shape. Description and content are
// nullable upstream; decoding them into plain strings maps absent values to
// empty text, which is exactly the substitution the pipeline requires.
type wireArticle struct {
	Title  string `json:"title"`
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

type searchResponse struct {
	Status   string         `json:"status"`
	Articles []*wireArticle `json:"articles"`
}

// Search implements services.NewsSearcher: it fetches one result page for the
// given disjunctive query. A non-success HTTP status is returned as a
// retrieval error for the caller to absorb.
func (c *Client) Search(ctx context.Context, query string, pageSize int, page int) ([]*model.Article, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("pageSize", strconv.Itoa(pageSize))
	params.Set("page", strconv.Itoa(page))
	params.Set("sortBy", c.sortBy)
	params.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrRetrieval, "news-search request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrRetrieval, fmt.Sprintf("news-search returned status %d", resp.StatusCode), nil)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, services.Wrap(services.ErrRetrieval, "failed to decode news-search response", err)
	}

	out := make([]*model.Article, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		out = append(out, &model.Article{
			Title:       a.Title,
			SourceName:  a.Source.Name,
			URL:         a.URL,
			Description: a.Description,
			Content:     a.Content,
		})
	}
	return out, nil
}
