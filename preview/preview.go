package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"short-link-service/model"

	"golang.org/x/net/html"
)

var (
	ErrNotHTML   = errors.New("target did not return an HTML document")
	ErrBadStatus = errors.New("target returned an error status")
)

// Fetcher performs a single best-effort GET of a target page and extracts
// social-preview metadata from its markup. Open-Graph tags are preferred,
// falling back to the page title and the generic description meta tag.
type Fetcher struct {
	client       *http.Client
	maxBodyBytes int64
}

// NewFetcher creates a fetcher with a bounded overall timeout so a slow
// target site cannot stall link creation.
func NewFetcher(timeout time.Duration, maxBodyBytes int64) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		maxBodyBytes: maxBodyBytes,
	}
}

// Fetch retrieves the page at target and scrapes its preview metadata.
// Callers treat any error as "no metadata"; it is logged, never surfaced.
func (f *Fetcher) Fetch(ctx context.Context, target string) (model.Preview, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return model.Preview{}, err
	}
	req.Header.Set("User-Agent", "short-link-service/1.0 (+preview-fetch)")
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return model.Preview{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return model.Preview{}, fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "text/html") {
		return model.Preview{}, ErrNotHTML
	}

	return parse(io.LimitReader(resp.Body, f.maxBodyBytes)), nil
}

// parse walks the document collecting og:title / og:description / og:image,
// the <title> text, and the name="description" meta tag. Parsing stops at the
// end of <head>; preview tags never appear later.
func parse(r io.Reader) model.Preview {
	var (
		p         model.Preview
		title     string
		metaDesc  string
		inTitle   bool
		tokenizer = html.NewTokenizer(r)
	)

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return merge(p, title, metaDesc)

		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			switch token.Data {
			case "title":
				inTitle = true
			case "meta":
				property, name, content := metaAttrs(token)
				switch property {
				case "og:title":
					p.Title = content
				case "og:description":
					p.Description = content
				case "og:image":
					p.ImageURL = content
				}
				if name == "description" {
					metaDesc = content
				}
			case "body":
				return merge(p, title, metaDesc)
			}

		case html.TextToken:
			if inTitle && title == "" {
				title = strings.TrimSpace(tokenizer.Token().Data)
			}

		case html.EndTagToken:
			token := tokenizer.Token()
			if token.Data == "title" {
				inTitle = false
			}
			if token.Data == "head" {
				return merge(p, title, metaDesc)
			}
		}
	}
}

func metaAttrs(token html.Token) (property, name, content string) {
	for _, attr := range token.Attr {
		switch attr.Key {
		case "property":
			property = attr.Val
		case "name":
			name = attr.Val
		case "content":
			content = attr.Val
		}
	}
	return property, name, content
}

func merge(p model.Preview, title, metaDesc string) model.Preview {
	if p.Title == "" {
		p.Title = title
	}
	if p.Description == "" {
		p.Description = metaDesc
	}
	return p
}
