package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// newPagedServer serves pages[i] at /items?page=i+1, linking each page to
// the next one. The last page carries only a "prev" link.
func newPagedServer(t *testing.T, pages []string) (*httptest.Server, *int32) {
	t.Helper()
	var requests int32
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)

		page := 1
		if p := r.URL.Query().Get("page"); p != "" {
			if _, err := fmt.Sscanf(p, "%d", &page); err != nil {
				http.Error(w, "bad page", http.StatusBadRequest)
				return
			}
		}
		if page < 1 || page > len(pages) {
			http.NotFound(w, r)
			return
		}

		if page < len(pages) {
			w.Header().Set("Link", fmt.Sprintf(`<%s/items?page=%d>; rel="next", <%s/items?page=%d>; rel="last"`,
				server.URL, page+1, server.URL, len(pages)))
		} else if page > 1 {
			w.Header().Set("Link", fmt.Sprintf(`<%s/items?page=%d>; rel="prev"`, server.URL, page-1))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, pages[page-1])
	}))
	t.Cleanup(server.Close)
	return server, &requests
}

func TestGetAllConcatenatesPages(t *testing.T) {
	server, requests := newPagedServer(t, []string{
		`[{"id": 1}, {"id": 2}]`,
		`[]`,
		`[{"id": 3}]`,
		`[{"id": 4}, {"id": 5}]`,
	})

	items, err := NewClient(server.Client()).GetAll(context.Background(), server.URL+"/items")
	if err != nil {
		t.Fatalf("GetAll() unexpected error: %v", err)
	}

	if len(items) != 5 {
		t.Fatalf("GetAll() returned %d items, want 5", len(items))
	}
	for i, item := range items {
		want := fmt.Sprintf(`{"id":%d}`, i+1)
		if item.String() != want {
			t.Errorf("items[%d] = %s, want %s", i, item, want)
		}
	}
	if got := atomic.LoadInt32(requests); got != 4 {
		t.Errorf("server saw %d requests, want 4", got)
	}
}

func TestGetAllSinglePage(t *testing.T) {
	server, requests := newPagedServer(t, []string{`["a", "b"]`})

	items, err := NewClient(server.Client()).GetAll(context.Background(), server.URL+"/items")
	if err != nil {
		t.Fatalf("GetAll() unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("GetAll() returned %d items, want 2", len(items))
	}
	if got := atomic.LoadInt32(requests); got != 1 {
		t.Errorf("server saw %d requests, want 1", got)
	}
}

func TestGetAllReplaysOptions(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "token abc" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message": "Bad credentials"}`)
			return
		}
		if r.URL.Query().Get("page") == "" {
			w.Header().Set("Link", fmt.Sprintf(`<%s/?page=2>; rel="next"`, server.URL))
		}
		fmt.Fprint(w, `[1]`)
	}))
	defer server.Close()

	items, err := NewClient(server.Client()).GetAll(context.Background(), server.URL+"/",
		WithHeader("Authorization", "token abc"))
	if err != nil {
		t.Fatalf("GetAll() unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("GetAll() returned %d items, want 2", len(items))
	}
}

func TestGetAllRejectsNonListPage(t *testing.T) {
	server, _ := newPagedServer(t, []string{
		`[{"id": 1}]`,
		`{"message": "not a list"}`,
	})

	items, err := NewClient(server.Client()).GetAll(context.Background(), server.URL+"/items")
	if !errors.Is(err, ErrNotList) {
		t.Fatalf("GetAll() error = %v, want ErrNotList", err)
	}
	if items != nil {
		t.Errorf("GetAll() returned items %v alongside error", items)
	}
}

func TestGetAllPropagatesHTTPError(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"message": "boom"}`)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s/?page=2>; rel="next"`, server.URL))
		fmt.Fprint(w, `[1]`)
	}))
	defer server.Close()

	_, err := NewClient(server.Client()).GetAll(context.Background(), server.URL+"/")
	var httpError *HTTPError
	if !errors.As(err, &httpError) {
		t.Fatalf("GetAll() error = %v, want *HTTPError", err)
	}
	if httpError.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d", httpError.StatusCode)
	}
}

func TestPageIteratorNext(t *testing.T) {
	server, _ := newPagedServer(t, []string{`[1, 2]`, `[3]`})

	it := NewClient(server.Client()).Paginate(server.URL + "/items")
	ctx := context.Background()

	first, err := it.Next(ctx)
	if err != nil || len(first) != 2 {
		t.Fatalf("first page = %v, %v", first, err)
	}
	second, err := it.Next(ctx)
	if err != nil || len(second) != 1 {
		t.Fatalf("second page = %v, %v", second, err)
	}
	done, err := it.Next(ctx)
	if err != nil || done != nil {
		t.Fatalf("after last page = %v, %v; want nil, nil", done, err)
	}
}
