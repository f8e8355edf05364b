package sources

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"satlink/internal"
)

// Altervista walks the frequency-plan site: the home page sidebar lists one
// page per constellation, and each of those lists plan PDFs by satellite.
type Altervista struct {
	client  *Client
	homeURL string
}

func NewAltervista(client *Client, homeURL string) *Altervista {
	return &Altervista{client: client, homeURL: homeURL}
}

func (a *Altervista) ID() internal.SourceID { return internal.SourceAltervista }

func (a *Altervista) Fetch(ctx context.Context) ([]internal.RawItem, error) {
	home, err := a.client.Get(ctx, a.homeURL)
	if err != nil {
		return nil, err
	}
	pages, err := sidebarLinks(home, a.homeURL, false)
	if err != nil {
		return nil, fmt.Errorf("altervista home: %w", err)
	}

	out := []internal.RawItem{}
	seen := map[string]struct{}{}
	for _, page := range pages {
		if _, ok := seen[page.URL]; ok {
			continue
		}
		seen[page.URL] = struct{}{}

		body, err := a.client.Get(ctx, page.URL)
		if err != nil {
			return nil, err
		}
		plans, err := sidebarLinks(body, page.URL, true)
		if err != nil {
			return nil, fmt.Errorf("altervista %s: %w", page.URL, err)
		}
		for _, plan := range plans {
			if strings.TrimSpace(plan.Text) == "" {
				continue
			}
			out = append(out, internal.RawItem{
				Source:  internal.SourceAltervista,
				Name:    plan.Text,
				Payload: internal.Payload{FrequencyPlanURL: plan.URL, DetailURL: page.URL},
			})
		}
	}
	return out, nil
}

type link struct {
	Text string
	URL  string
}

func sidebarLinks(html []byte, base string, pdfOnly bool) ([]link, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}
	sidebar := doc.Find("#sidebar")
	if sidebar.Length() == 0 {
		return nil, fmt.Errorf("no #sidebar element")
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, err
	}

	out := []link{}
	sidebar.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || (pdfOnly && !strings.Contains(href, ".pdf")) {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		out = append(out, link{
			Text: a.Text(),
			URL:  baseURL.ResolveReference(ref).String(),
		})
	})
	return out, nil
}
