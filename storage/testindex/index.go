// Package testindex lists the test pages available for assignment by scraping
// a directory-index HTML page for anchors ending in .html. This is a
// convention-based interface, not a structured API: a host that stops
// emitting an index breaks it.
package testindex

import (
	"context"
	"net/http"
	"path"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

const fileExt = ".html"

type (
	// File is one selectable test page.
	File struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}

	Index struct {
		url        string
		httpClient *http.Client
	}
)

func New(url string) *Index {
	return &Index{url: url, httpClient: http.DefaultClient}
}

// Available fetches the index page and extracts the test files it links to.
func (idx *Index) Available(ctx context.Context) ([]File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, idx.url, nil)
	if err != nil {
		return nil, err
	}
	res, err := idx.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetching test index")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, errors.Errorf("test index returned %d", res.StatusCode)
	}

	doc, err := html.Parse(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "parsing test index")
	}

	var files []File
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" && strings.HasSuffix(attr.Val, fileExt) {
					files = append(files, File{Name: path.Base(attr.Val), URL: attr.Val})
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return files, nil
}
