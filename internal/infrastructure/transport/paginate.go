package transport

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

// PageMeta is the pagination metadata a page-number style endpoint reports.
// TotalPages 0 means the endpoint did not report a page count; the walk then
// stops on the first short page.
type PageMeta struct {
	TotalPages int
}

// FetchAllPages walks a page-number style collection endpoint to completion.
// decode parses one response body into items plus pagination metadata. The
// walk stops when the reported last page is reached, or on a short page when
// no page count is reported. An empty first page yields an empty slice.
func FetchAllPages[T any](ctx context.Context, ex *Executor, rawURL string, query url.Values, pageSize int, decode func([]byte) ([]T, PageMeta, error)) ([]T, error) {
	var all []T
	for page := 1; ; page++ {
		q := cloneValues(query)
		q.Set("page", strconv.Itoa(page))
		q.Set("limit", strconv.Itoa(pageSize))

		resp, err := ex.Do(ctx, "GET", rawURL, q, nil)
		if err != nil {
			return nil, err
		}
		items, meta, err := decode(resp.Body)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)

		if meta.TotalPages > 0 {
			if page >= meta.TotalPages {
				return all, nil
			}
			continue
		}
		if len(items) < pageSize {
			return all, nil
		}
	}
}

// FetchAllLinked walks a cursor style collection endpoint to completion by
// following the Link response header until no rel="next" target remains.
// The server encodes the cursor in the next URL; query parameters are only
// sent on the first request.
func FetchAllLinked[T any](ctx context.Context, ex *Executor, rawURL string, query url.Values, decode func([]byte) ([]T, error)) ([]T, error) {
	var all []T
	next := rawURL
	q := query
	for next != "" {
		resp, err := ex.Do(ctx, "GET", next, q, nil)
		if err != nil {
			return nil, err
		}
		items, err := decode(resp.Body)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)

		next = NextLink(resp.Header.Get("Link"))
		q = nil
	}
	return all, nil
}

// NextLink extracts the rel="next" target from a Link header, or "" when no
// further page exists.
func NextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		segs := strings.Split(part, ";")
		if len(segs) < 2 {
			continue
		}
		target := strings.TrimSpace(segs[0])
		target = strings.TrimPrefix(target, "<")
		target = strings.TrimSuffix(target, ">")
		for _, attr := range segs[1:] {
			attr = strings.TrimSpace(attr)
			if attr == `rel="next"` || attr == "rel=next" {
				return target
			}
		}
	}
	return ""
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v)+2)
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
