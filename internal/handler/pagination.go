// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/url"
	"strconv"

	"github.com/olegiv/aromapure/internal/listquery"
)

// PageLinks are the navigation links for one page of a list.
type PageLinks struct {
	First string     `json:"first,omitempty"`
	Prev  string     `json:"prev,omitempty"`
	Next  string     `json:"next,omitempty"`
	Last  string     `json:"last,omitempty"`
	Pages []PageLink `json:"pages"`
}

// PageLink is a single numbered link, or an ellipsis gap.
type PageLink struct {
	Number     int    `json:"number,omitempty"`
	URL        string `json:"url,omitempty"`
	IsCurrent  bool   `json:"is_current,omitempty"`
	IsEllipsis bool   `json:"is_ellipsis,omitempty"`
}

// BuildPageLinks creates links for p. baseURL is the path without a query;
// query holds the current parameters to preserve, minus "page".
func BuildPageLinks(p listquery.Pagination, baseURL string, query url.Values) PageLinks {
	params := make(url.Values)
	for k, v := range query {
		if k != "page" && len(v) > 0 && v[0] != "" {
			params[k] = v
		}
	}

	buildURL := func(page int) string {
		params.Set("page", strconv.Itoa(page))
		return baseURL + "?" + params.Encode()
	}

	links := PageLinks{Pages: []PageLink{}}
	if p.HasPrev {
		links.First = buildURL(1)
		links.Prev = buildURL(p.PrevPage)
	}
	if p.HasNext {
		links.Next = buildURL(p.NextPage)
		links.Last = buildURL(p.TotalPages)
	}

	// Show at most 5 pages around the current one.
	start := p.CurrentPage - 2
	end := p.CurrentPage + 2
	if start < 1 {
		start = 1
		end = 5
	}
	if end > p.TotalPages {
		end = p.TotalPages
		start = max(end-4, 1)
	}

	if start > 1 {
		links.Pages = append(links.Pages, PageLink{Number: 1, URL: buildURL(1)})
		if start > 2 {
			links.Pages = append(links.Pages, PageLink{IsEllipsis: true})
		}
	}
	for i := start; i <= end; i++ {
		links.Pages = append(links.Pages, PageLink{
			Number:    i,
			URL:       buildURL(i),
			IsCurrent: i == p.CurrentPage,
		})
	}
	if end < p.TotalPages {
		if end < p.TotalPages-1 {
			links.Pages = append(links.Pages, PageLink{IsEllipsis: true})
		}
		links.Pages = append(links.Pages, PageLink{Number: p.TotalPages, URL: buildURL(p.TotalPages)})
	}

	return links
}
