// Package source provides the external content collaborators: fetching raw
// document exports over HTTP and listing the local image pool.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

// ErrDocUnavailable indicates a document could not be fetched through either
// the plain-text export or the HTML fallback.
var ErrDocUnavailable = errors.New("document unavailable")

const (
	defaultDocBaseURL      = "https://docs.google.com"
	defaultFetchTimeout    = 30 * time.Second
	fetchLimiterBurst      = 2
	maxDocBodySizeMB       = 10
	maxDocBodySizeBytes    = maxDocBodySizeMB * 1024 * 1024
	defaultFetchRPS        = 1
	exportFormatText       = "txt"
	exportFormatHTML       = "html"
	logFieldDocID          = "doc_id"
	msgFallingBackToHTML   = "plain text export empty or unavailable, trying html export"
	errFmtExportRequest    = "document export request: %w"
	errFmtExportReadBody   = "read document export body: %w"
	errFmtFetchRateLimiter = "document fetch rate limiter wait: %w"
)

// DocFetcher retrieves raw document text by opaque document id. The primary
// path is the plain-text export; when it yields empty or unavailable content
// the structured HTML export is fetched and flattened to plain text.
type DocFetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
	logger  *zerolog.Logger
}

// NewDocFetcher creates a fetcher with the given request timeout and a
// global requests-per-second budget shared by both export paths.
func NewDocFetcher(timeout time.Duration, rps float64, logger *zerolog.Logger) *DocFetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}

	if rps <= 0 {
		rps = defaultFetchRPS
	}

	return &DocFetcher{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), fetchLimiterBurst),
		baseURL: defaultDocBaseURL,
		logger:  logger,
	}
}

// SetBaseURL overrides the document host, used by tests.
func (f *DocFetcher) SetBaseURL(u string) {
	f.baseURL = strings.TrimRight(u, "/")
}

// Fetch returns the raw text of the document with the given id.
func (f *DocFetcher) Fetch(ctx context.Context, docID string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf(errFmtFetchRateLimiter, err)
	}

	body, status, err := f.export(ctx, docID, exportFormatText)
	if err == nil && status == http.StatusOK && strings.TrimSpace(body) != "" {
		return body, nil
	}

	if err != nil {
		f.logger.Warn().Err(err).Str(logFieldDocID, docID).Msg(msgFallingBackToHTML)
	} else {
		f.logger.Debug().Int("status", status).Str(logFieldDocID, docID).Msg(msgFallingBackToHTML)
	}

	body, status, err = f.export(ctx, docID, exportFormatHTML)
	if err != nil {
		return "", fmt.Errorf("fetch document %s: %w", docID, err)
	}

	if status != http.StatusOK {
		return "", fmt.Errorf("fetch document %s: %w: status %d", docID, ErrDocUnavailable, status)
	}

	return FlattenHTML(body), nil
}

func (f *DocFetcher) export(ctx context.Context, docID, format string) (string, int, error) {
	url := fmt.Sprintf("%s/document/d/%s/export?format=%s", f.baseURL, docID, format)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, fmt.Errorf(errFmtExportRequest, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf(errFmtExportRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocBodySizeBytes))
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf(errFmtExportReadBody, err)
	}

	return string(body), resp.StatusCode, nil
}

// FlattenHTML strips markup from an HTML document, joining text nodes with
// newlines so the document's line structure survives the round trip.
// Script and style contents are dropped.
func FlattenHTML(doc string) string {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return doc
	}

	var parts []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}

		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return strings.Join(parts, "\n")
}
