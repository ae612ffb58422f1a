package ingestion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

const sampleHTML = `<html><head>
<meta name="description" content="Acme builds widgets for everyone.">
<meta property="og:title" content="Acme Inc">
</head><body>
<nav>Home About</nav>
<main>
<h1>Acme Inc</h1>
<p>Acme is a widget marketplace connecting makers and buyers.</p>
<p>We have grown to 10,000 users this year.</p>
</main>
<footer>Copyright 2026</footer>
</body></html>`

func TestExtractHTMLFindsMetaAndMainContent(t *testing.T) {
	page, err := extractHTML([]byte(sampleHTML))
	if err != nil {
		t.Fatalf("extractHTML: %v", err)
	}
	assert.Equal(t, "Acme builds widgets for everyone.", page.MetaDescription)
	assert.Equal(t, "Acme Inc", page.OGTitle)
	if page.MainContent == "" {
		t.Fatal("expected non-empty main content")
	}
	if contains := stringsContains(page.MainContent, "Copyright"); contains {
		t.Fatal("footer text leaked into main content extraction")
	}
}

func TestExtractHTMLFallsBackToAllParagraphsWithoutMainContainer(t *testing.T) {
	html := `<html><body><p>Just a paragraph with no main tag.</p></body></html>`
	page, err := extractHTML([]byte(html))
	if err != nil {
		t.Fatalf("extractHTML: %v", err)
	}
	if page.MainContent == "" {
		t.Fatal("expected fallback extraction to find paragraph text")
	}
}

func TestFetchURLSendsBrowserUserAgent(t *testing.T) {
	var capturedUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedUA = r.Header.Get("User-Agent")
		w.Write([]byte(sampleHTML))
	}))
	defer srv.Close()

	client := &http.Client{Timeout: 2 * time.Second}
	body, err := fetchURL(context.Background(), client, srv.URL)
	if err != nil {
		t.Fatalf("fetchURL: %v", err)
	}
	if len(body) == 0 {
		t.Fatal("expected non-empty body")
	}
	assert.Equal(t, browserUserAgent, capturedUA)
}

func TestFetchURLReturnsErrorOnHTTPFailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := &http.Client{Timeout: 2 * time.Second}
	_, err := fetchURL(context.Background(), client, srv.URL)
	if err == nil {
		t.Fatal("expected an error for a 404 response")
	}
}

func stringsContains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
