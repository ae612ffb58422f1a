package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const urlFetchTimeout = 10 * time.Second

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

const maxRegionLength = 2000

// fetchURL retrieves the page at rawURL with a browser-like User-Agent and
// a bounded deadline, grounded on the teacher's news fetchers' plain
// *http.Client pattern.
func fetchURL(ctx context.Context, client *http.Client, rawURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, urlFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("ingestion: build request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ingestion: fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("ingestion: fetch url: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ingestion: read response body: %w", err)
	}
	return body, nil
}

// pageExtract is the result of scraping one HTML document: meta tags and
// main-content text, each independently truncated per §4.6's URL path.
type pageExtract struct {
	MetaDescription string
	OGTitle          string
	OGDescription    string
	MainContent      string
}

// Corpus merges every extracted region into one text blob for the shared
// LLM/heuristic extraction step.
func (p pageExtract) Corpus() string {
	return strings.Join([]string{p.OGTitle, p.MetaDescription, p.OGDescription, p.MainContent}, "\n\n")
}

// extractHTML parses raw HTML bytes into a pageExtract: meta description/
// og:title/og:description, plus text from a main/article/content container
// (paragraphs and headings), falling back to all paragraphs/headings in
// the document when no such container exists.
func extractHTML(body []byte) (pageExtract, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return pageExtract{}, fmt.Errorf("ingestion: parse html: %w", err)
	}

	var result pageExtract
	var mainContainer *html.Node
	var allTextNodes []*html.Node

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			case "meta":
				name := attr(n, "name")
				property := attr(n, "property")
				content := attr(n, "content")
				switch {
				case name == "description":
					result.MetaDescription = content
				case property == "og:title":
					result.OGTitle = content
				case property == "og:description":
					result.OGDescription = content
				}
			case "main", "article":
				if mainContainer == nil {
					mainContainer = n
				}
			case "div":
				if mainContainer == nil && hasContentClass(n) {
					mainContainer = n
				}
			case "p", "h1", "h2", "h3", "h4", "h5", "h6":
				allTextNodes = append(allTextNodes, n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	var textSource []*html.Node
	if mainContainer != nil {
		var collect func(*html.Node)
		collect = func(n *html.Node) {
			if n.Type == html.ElementNode {
				switch n.Data {
				case "p", "h1", "h2", "h3", "h4", "h5", "h6":
					textSource = append(textSource, n)
				}
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				collect(c)
			}
		}
		collect(mainContainer)
	} else {
		textSource = allTextNodes
	}

	var paragraphs []string
	for _, n := range textSource {
		text := strings.TrimSpace(textContent(n))
		if text != "" {
			paragraphs = append(paragraphs, text)
		}
	}

	result.MainContent = truncate(strings.Join(paragraphs, "\n\n"), maxRegionLength)
	result.MetaDescription = truncate(result.MetaDescription, maxRegionLength)
	result.OGDescription = truncate(result.OGDescription, maxRegionLength)
	result.OGTitle = truncate(result.OGTitle, maxRegionLength)

	return result, nil
}

func hasContentClass(n *html.Node) bool {
	class := strings.ToLower(attr(n, "class"))
	for _, kw := range []string{"content", "main", "article"} {
		if strings.Contains(class, kw) {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
