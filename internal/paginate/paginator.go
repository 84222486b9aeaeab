// Package paginate implements the limit/offset pagination arithmetic and
// the meta envelope carried by list responses.
package paginate

import (
	"net/url"
	"strconv"
)

// Paginator computes the meta envelope for one page of a list response.
// A zero limit yields zero objects and a zero count by contract.
type Paginator struct {
	Limit   int
	Offset  int
	Total   int
	ListURI string

	// Params are the request's query parameters, preserved on the
	// next/previous links so a page link re-runs the same query.
	Params url.Values
}

// New creates a paginator for one request.
func New(limit, offset, total int, listURI string, params url.Values) *Paginator {
	return &Paginator{
		Limit:   limit,
		Offset:  offset,
		Total:   total,
		ListURI: listURI,
		Params:  params,
	}
}

// Meta returns the list response envelope: total_count, limit, offset and
// the next/previous page links (nil when no such page exists). The links
// are relative; the dehydrator's URI pass absolutizes them.
func (p *Paginator) Meta() map[string]interface{} {
	total := p.Total
	if p.Limit == 0 {
		total = 0
	}

	meta := map[string]interface{}{
		"total_count": total,
		"limit":       p.Limit,
		"offset":      p.Offset,
		"next":        nil,
		"previous":    nil,
	}

	if p.Limit > 0 && p.Offset+p.Limit < total {
		meta["next"] = p.pageLink(p.Offset + p.Limit)
	}
	if p.Limit > 0 && p.Offset > 0 {
		prev := p.Offset - p.Limit
		if prev < 0 {
			prev = 0
		}
		meta["previous"] = p.pageLink(prev)
	}

	return meta
}

// pageLink renders a relative link to the page starting at offset.
func (p *Paginator) pageLink(offset int) string {
	params := url.Values{}
	for key, values := range p.Params {
		for _, v := range values {
			params.Add(key, v)
		}
	}
	params.Set("limit", strconv.Itoa(p.Limit))
	params.Set("offset", strconv.Itoa(offset))
	return p.ListURI + "?" + params.Encode()
}
