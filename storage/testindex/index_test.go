package testindex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

const indexPage = `<html><head><title>Index of /tests</title></head><body>
<h1>Index of /tests</h1>
<ul>
<li><a href="../">../</a></li>
<li><a href="unit1.html">unit1.html</a></li>
<li><a href="/tests/unit2.html">unit2.html</a></li>
<li><a href="notes.txt">notes.txt</a></li>
<li><a>no href</a></li>
</ul>
</body></html>`

func TestIndex_Available(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(indexPage))
	}))
	defer srv.Close()

	files, err := New(srv.URL).Available(context.Background())
	if err != nil {
		t.Fatalf("Available() failed: %v", err)
	}

	assert.Equal(t, []File{
		{Name: "unit1.html", URL: "unit1.html"},
		{Name: "unit2.html", URL: "/tests/unit2.html"},
	}, files)
}

func TestIndex_Available_badStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := New(srv.URL).Available(context.Background()); err == nil {
		t.Fatal("Available() must fail on a non-OK index")
	}
}

func TestIndex_Available_noAnchors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>empty</body></html>"))
	}))
	defer srv.Close()

	files, err := New(srv.URL).Available(context.Background())
	if err != nil {
		t.Fatalf("Available() failed: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("files = %v; want none", files)
	}
}
