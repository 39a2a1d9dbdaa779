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

// Package services_test contains unit tests for the production capability
// bindings. The HTTP clients are tested against httptest servers that mimic
// the upstream wire formats.
package services_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-media-verify/internal/core/services"
	"github.com/jaycherian/gcp-go-media-verify/internal/core/services/newsapi"
	"github.com/stretchr/testify/assert"
)

// TestNewsClientRejectsMissingKey verifies that a missing API key is a
// configuration error raised at construction, before any request is made.
func TestNewsClientRejectsMissingKey(t *testing.T) {
	client, err := newsapi.NewClient("https://newsapi.example/v2/everything", "", "relevancy", time.Second)
	assert.Nil(t, client)
	assert.ErrorIs(t, err, services.ErrConfiguration)
}

// TestNewsClientSearch verifies the request parameters and the mapping of the
// upstream JSON, including null description/content becoming empty text.
func TestNewsClientSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "election OR fraud", q.Get("q"))
		assert.Equal(t, "40", q.Get("pageSize"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "relevancy", q.Get("sortBy"))
		assert.Equal(t, "secret-key", q.Get("apiKey"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"articles": [
				{"title": "t1", "source": {"name": "Reuters"}, "url": "https://r.example/1", "description": "d1", "content": "c1"},
				{"title": "t2", "source": {"name": "AP"}, "url": "https://ap.example/2", "description": null, "content": null}
			]
		}`))
	}))
	defer srv.Close()

	client, err := newsapi.NewClient(srv.URL, "secret-key", "relevancy", time.Second)
	assert.NoError(t, err)

	articles, err := client.Search(context.Background(), "election OR fraud", 40, 2)
	assert.NoError(t, err)
	assert.Len(t, articles, 2)
	assert.Equal(t, "t1", articles[0].Title)
	assert.Equal(t, "Reuters", articles[0].SourceName)
	assert.Equal(t, "c1", articles[0].Content)
	// Nulls decode to empty strings, the substitution downstream relies on.
	assert.Equal(t, "", articles[1].Description)
	assert.Equal(t, "", articles[1].Content)
}

// TestNewsClientNonSuccessIsRetrievalError verifies that any non-200 status
// maps to the retrieval sentinel the retriever absorbs.
func TestNewsClientNonSuccessIsRetrievalError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, err := newsapi.NewClient(srv.URL, "secret-key", "relevancy", time.Second)
	assert.NoError(t, err)

	articles, err := client.Search(context.Background(), "q", 10, 1)
	assert.Nil(t, articles)
	assert.ErrorIs(t, err, services.ErrRetrieval)
}
