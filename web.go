package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jadenpxrk/fastats/internal/fasta"
)

// isWebURL checks if the input string is an HTTP/HTTPS URL.
func isWebURL(input string) bool {
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}

// webSource downloads url when the source is opened, so each download
// happens in turn with the other sources.
func (a *app) webSource(url string) Source {
	return Source{
		Name: url,
		Open: func() (io.ReadCloser, error) {
			return a.fetchURL(url)
		},
	}
}

type bodyCloser struct {
	io.ReadCloser
	body io.Closer
}

func (b *bodyCloser) Close() error {
	err := b.ReadCloser.Close()
	if cerr := b.body.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// fetchURL returns the FASTA stream behind url. HTML pages yield the text
// of their <pre> blocks, where sequence viewers put the records; any other
// body is streamed as-is.
func (a *app) fetchURL(url string) (io.ReadCloser, error) {
	a.log.Debug("fetching", "url", url)
	res, err := a.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL %s: %w", url, err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		res.Body.Close()
		return nil, fmt.Errorf("failed to fetch URL %s: status code %d", url, res.StatusCode)
	}

	contentType := res.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		rc, err := fasta.Decompress(res.Body)
		if err != nil {
			res.Body.Close()
			return nil, err
		}
		return &bodyCloser{ReadCloser: rc, body: res.Body}, nil
	}

	defer res.Body.Close()
	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", url, err)
	}
	var blocks []string
	doc.Find("pre").Each(func(i int, s *goquery.Selection) {
		blocks = append(blocks, strings.TrimSpace(s.Text()))
	})
	a.log.Debug("extracted <pre> blocks", "url", url, "blocks", len(blocks))
	return io.NopCloser(strings.NewReader(strings.Join(blocks, "\n"))), nil
}
