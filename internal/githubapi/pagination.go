package githubapi

import (
	"context"
	"fmt"

	"github.com/klimeurt/repo-collector/internal/jsonvalue"
)

// PageIterator walks a paginated listing one page at a time, following the
// "next" link of each response. Pages are fetched sequentially since each
// page's URL is only known from the previous response.
//
// The iterator is not safe for concurrent use.
type PageIterator struct {
	client  *Client
	nextURL string
	opts    []RequestOption
	done    bool
}

// Paginate returns an iterator starting at url
func (c *Client) Paginate(url string, opts ...RequestOption) *PageIterator {
	return &PageIterator{
		client:  c,
		nextURL: url,
		opts:    opts,
	}
}

// Next fetches the next page and returns its items. It returns nil, nil
// once the previous page carried no "next" link.
func (it *PageIterator) Next(ctx context.Context) ([]jsonvalue.Value, error) {
	if it.done {
		return nil, nil
	}

	url := it.nextURL
	resp, err := it.client.Do(ctx, url, it.opts...)
	if err != nil {
		it.done = true
		return nil, err
	}

	items, ok := resp.Body.Items()
	if !ok {
		it.done = true
		return nil, fmt.Errorf("%w: %s returned %s", ErrNotList, url, resp.Body.Kind())
	}

	next, ok := resp.Links["next"]
	if ok {
		it.nextURL = next
	} else {
		it.done = true
	}

	if items == nil {
		items = []jsonvalue.Value{}
	}
	return items, nil
}

// Collect fetches all remaining pages and returns their items concatenated
// in page order.
func (it *PageIterator) Collect(ctx context.Context) ([]jsonvalue.Value, error) {
	all := []jsonvalue.Value{}
	for {
		items, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if items == nil {
			return all, nil
		}
		all = append(all, items...)
	}
}

// GetAll fetches url and every page reachable through "next" links,
// returning all array elements in order.
func (c *Client) GetAll(ctx context.Context, url string, opts ...RequestOption) ([]jsonvalue.Value, error) {
	return c.Paginate(url, opts...).Collect(ctx)
}
