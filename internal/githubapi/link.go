package githubapi

import (
	"fmt"
	"net/http"
	"strings"
)

// Links maps a link relation name ("next", "last", ...) to its URL
type Links map[string]string

// ParseLinks extracts the pagination links from response headers. A
// response without a Link header yields an empty map. Multiple Link lines
// are treated as one comma-separated list.
func ParseLinks(header http.Header) (Links, error) {
	values := header.Values("Link")
	if len(values) == 0 {
		return Links{}, nil
	}
	return ParseLink(strings.Join(values, ","))
}

// ParseLink parses an RFC 5988 Link header value.
//
// Format: <https://api.github.com/user/repos?page=2>; rel="next", <...>; rel="last"
//
// Any entry that does not have exactly that shape is rejected with an
// error wrapping ErrMalformedLink.
func ParseLink(value string) (Links, error) {
	links := Links{}
	for _, part := range strings.Split(value, ",") {
		urlPart, relPart, _ := strings.Cut(part, ";")
		urlPart = strings.TrimSpace(urlPart)
		relPart = strings.TrimSpace(relPart)

		if len(urlPart) < 2 || !strings.HasPrefix(urlPart, "<") || !strings.HasSuffix(urlPart, ">") {
			return nil, fmt.Errorf("%w: link target %q is not enclosed in <>", ErrMalformedLink, urlPart)
		}

		name, ok := strings.CutPrefix(relPart, `rel="`)
		if !ok || len(name) < 2 || !strings.HasSuffix(name, `"`) || strings.Contains(name[:len(name)-1], `"`) {
			return nil, fmt.Errorf("%w: relation %q is not of the form rel=\"name\"", ErrMalformedLink, relPart)
		}

		links[name[:len(name)-1]] = urlPart[1 : len(urlPart)-1]
	}
	return links, nil
}
