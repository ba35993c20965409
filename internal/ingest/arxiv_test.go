// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2301.07041v2</id>
    <title>Attention Is Not Enough</title>
    <summary>  We study attention mechanisms.  </summary>
    <published>2023-01-17T12:00:00Z</published>
    <author><name>Jane Smith</name></author>
    <author><name>Ada Doe</name></author>
    <link href="http://arxiv.org/abs/2301.07041v2" rel="alternate" type="text/html"/>
    <link href="http://arxiv.org/pdf/2301.07041v2" rel="related" type="application/pdf" title="pdf"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2302.00001v1</id>
    <title>Second Paper</title>
    <summary>Another abstract.</summary>
    <published>not-a-date</published>
    <author><name>Solo Author</name></author>
  </entry>
</feed>`

func TestArxivFetchParsesFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "search_query=all:graph+neural")
		assert.Contains(t, r.URL.RawQuery, "max_results=5")
		w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	oldBase := arxivAPIBase
	arxivAPIBase = server.URL
	defer func() { arxivAPIBase = oldBase }()

	src := NewArxivSource(types.IngestConfig{})
	papers, err := src.Fetch(context.Background(), "graph neural", 5)
	require.NoError(t, err)
	require.Len(t, papers, 2)

	first := papers[0]
	assert.Equal(t, "2301.07041", first.ArxivID)
	assert.Equal(t, "Attention Is Not Enough", first.Title)
	assert.Equal(t, "We study attention mechanisms.", first.Summary)
	assert.Equal(t, "Jane Smith, Ada Doe", first.Authors)
	assert.Equal(t, "http://arxiv.org/abs/2301.07041v2", first.Link)
	assert.Equal(t, "http://arxiv.org/pdf/2301.07041v2", first.PDFURL)
	require.NotNil(t, first.PublishedAt)
	assert.Equal(t, 2023, first.PublishedAt.Year())

	// Unparseable dates are dropped rather than failing the fetch.
	second := papers[1]
	assert.Equal(t, "2302.00001", second.ArxivID)
	assert.Nil(t, second.PublishedAt)
	assert.Empty(t, second.PDFURL)
}

func TestArxivFetchEmptyQuery(t *testing.T) {
	src := NewArxivSource(types.IngestConfig{})
	_, err := src.Fetch(context.Background(), "   ", 5)
	assert.Error(t, err)
}

func TestArxivFetchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	oldBase := arxivAPIBase
	arxivAPIBase = server.URL
	defer func() { arxivAPIBase = oldBase }()

	// 503 is retried with backoff; shrink the base delay so the retries
	// exhaust quickly instead of sleeping for real.
	oldDelay := httputil.RetryBaseDelay
	httputil.RetryBaseDelay = time.Millisecond
	defer func() { httputil.RetryBaseDelay = oldDelay }()

	start := time.Now()
	src := NewArxivSource(types.IngestConfig{})
	_, err := src.Fetch(context.Background(), "query", 5)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestExtractArxivID(t *testing.T) {
	tests := []struct {
		idURL string
		want  string
	}{
		{"http://arxiv.org/abs/2301.07041v1", "2301.07041"},
		{"http://arxiv.org/abs/2301.07041", "2301.07041"},
		{"http://arxiv.org/abs/cs/0112017v3", "cs/0112017"},
		{"http://example.com/nothing", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractArxivID(tt.idURL), tt.idURL)
	}
}
