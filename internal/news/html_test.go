package news

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speedwagon-io/plantwatch/internal/config"
)

const searchPage = `<!DOCTYPE html>
<html><body>
<div class="results">
  <article>
    <h2>  Auvere   power plant back online </h2>
    <a href="/1610000001/auvere-back-online">read</a>
    <time datetime="2026-10-17">17.10.2026</time>
  </article>
  <article>
    <h2>Eesti Energia halts Auvere again</h2>
    <a href="https://news.example/abs/2">read</a>
    <time datetime="2026-10-12"></time>
  </article>
  <article>
    <h2>Block without link</h2>
  </article>
  <article>
    <a href="/1610000004/untitled">Untitled block uses link text</a>
  </article>
  <article>
    <h2>Fifth</h2>
    <a href="/5">read</a>
  </article>
</div>
</body></html>`

func htmlFetcher(serverURL string) *Fetcher {
	src := NewHTMLSearchSource(&http.Client{Timeout: 5 * time.Second}, config.HTMLSearchConfig{
		URL:           serverURL + "/search",
		QueryParam:    "phrase",
		ItemSelector:  "article",
		TitleSelector: "h2",
		LinkSelector:  "a[href]",
		DateSelector:  "time",
	}, "")
	return NewFetcher(testLogger(), 0, map[SourceKind]Source{SourceHTMLSearch: src})
}

func TestHTMLSearchFetch(t *testing.T) {
	var req http.Request
	server := serveBody(http.StatusOK, searchPage, &req)
	defer server.Close()

	items := htmlFetcher(server.URL).Fetch(context.Background(), "auvere", 3, SourceHTMLSearch)

	assert.Equal(t, "/search", req.URL.Path)
	assert.Equal(t, "auvere", req.URL.Query().Get("phrase"))

	require.Len(t, items, 3)

	assert.Equal(t, "Auvere power plant back online", items[0].Title)
	assert.Equal(t, server.URL+"/1610000001/auvere-back-online", items[0].Link)
	assert.Equal(t, "17.10.2026", items[0].Published)

	assert.Equal(t, "Eesti Energia halts Auvere again", items[1].Title)
	assert.Equal(t, "https://news.example/abs/2", items[1].Link)
	assert.Equal(t, "2026-10-12", items[1].Published, "falls back to the datetime attribute")

	assert.Equal(t, "Untitled block uses link text", items[2].Title)
	assert.Equal(t, "", items[2].Published)
}

func TestHTMLSearchNoResults(t *testing.T) {
	server := serveBody(http.StatusOK, `<html><body><p>Nothing found</p></body></html>`, nil)
	defer server.Close()

	items := htmlFetcher(server.URL).Fetch(context.Background(), "auvere", 3, SourceHTMLSearch)
	require.NotNil(t, items)
	assert.Empty(t, items)
}

func TestHTMLSearchServerError(t *testing.T) {
	server := serveBody(http.StatusServiceUnavailable, searchPage, nil)
	defer server.Close()

	assert.Empty(t, htmlFetcher(server.URL).Fetch(context.Background(), "auvere", 3, SourceHTMLSearch))
}
