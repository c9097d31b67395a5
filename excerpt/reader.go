// Package excerpt fetches a PDF for a given document URL and extracts
// one page's text at query time. It is invoked lazily by the chat
// engine and is never part of the ingest path.
package excerpt

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"legalresearch-engine/pkg/logger"
	"legalresearch-engine/storage"
)

const pageMarker = "\n----- page %d -----\n"

// Reader resolves a stable document URL to bytes via Storage, then
// extracts page text.
type Reader struct {
	store storage.Storage
}

func New(store storage.Storage) *Reader {
	return &Reader{store: store}
}

// ExtractPageContent returns the text of the requested page. Out of
// range page numbers, download failures, and unparsable PDFs all
// degrade to an empty string with a logged warning; this never errors
// outward.
func (r *Reader) ExtractPageContent(ctx context.Context, documentURL string, pageNumber int) string {
	pages, err := r.fetchPages(ctx, documentURL)
	if err != nil {
		logger.Warn("excerpt: fetch failed", zap.String("url", documentURL), zap.Error(err))
		return ""
	}
	if pageNumber < 1 || pageNumber > len(pages) {
		logger.Warn("excerpt: page out of range", zap.String("url", documentURL), zap.Int("page", pageNumber))
		return ""
	}
	return pages[pageNumber-1]
}

// ExtractFullPDFContent returns the concatenation of up to maxPages
// pages, separated by a page marker line.
func (r *Reader) ExtractFullPDFContent(ctx context.Context, documentURL string, maxPages int) string {
	pages, err := r.fetchPages(ctx, documentURL)
	if err != nil {
		logger.Warn("excerpt: fetch failed", zap.String("url", documentURL), zap.Error(err))
		return ""
	}
	if maxPages > len(pages) {
		maxPages = len(pages)
	}

	var b strings.Builder
	for i := 0; i < maxPages; i++ {
		fmt.Fprintf(&b, pageMarker, i+1)
		b.WriteString(pages[i])
	}
	return b.String()
}

func (r *Reader) fetchPages(ctx context.Context, documentURL string) ([]string, error) {
	storagePath, err := resolveToStoragePath(documentURL)
	if err != nil {
		return nil, err
	}

	rc, err := r.store.Download(ctx, storagePath)
	if err != nil {
		return nil, fmt.Errorf("excerpt: download: %w", err)
	}
	defer rc.Close()

	tmp, err := os.CreateTemp("", "excerpt-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("excerpt: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, rc); err != nil {
		return nil, fmt.Errorf("excerpt: write temp file: %w", err)
	}

	f, reader, err := pdf.Open(tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("excerpt: open pdf: %w", err)
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, textErr := page.GetPlainText(nil)
		if textErr != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// resolveToStoragePath strips the canonical URL down to the bucket-
// relative storage key Storage.Download expects, accepting both
// s3://bucket/key and https://bucket.s3... forms.
func resolveToStoragePath(documentURL string) (string, error) {
	if strings.HasPrefix(documentURL, "s3://") {
		rest := strings.TrimPrefix(documentURL, "s3://")
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) != 2 {
			return "", fmt.Errorf("excerpt: malformed s3 url: %s", documentURL)
		}
		return parts[1], nil
	}
	canonical, err := storage.FromHTTPS(documentURL)
	if err != nil {
		return documentURL, nil
	}
	rest := strings.TrimPrefix(canonical, "s3://")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("excerpt: malformed canonical url: %s", canonical)
	}
	return parts[1], nil
}
