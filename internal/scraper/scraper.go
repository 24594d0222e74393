package scraper

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"dealscope/internal/config"
	"dealscope/internal/domain"
)

const userAgent = "Mozilla/5.0 (compatible; dealscope/1.0)"

// Client fetches and parses marketplace search results and listing pages.
type Client struct {
	http *http.Client
}

// NewClient creates a scraper client with the given request timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{http: &http.Client{Timeout: timeout}}
}

// SearchURL builds the search results URL for a configured search.
func SearchURL(search config.Search) string {
	params := url.Values{}
	params.Set("query", search.Query)
	if search.Lat != nil && search.Lon != nil {
		params.Set("lat", strconv.FormatFloat(*search.Lat, 'f', -1, 64))
		params.Set("lon", strconv.FormatFloat(*search.Lon, 'f', -1, 64))
	}
	if search.SearchDistance != nil {
		params.Set("search_distance", strconv.Itoa(*search.SearchDistance))
	}
	return fmt.Sprintf("https://%s.craigslist.org/search/%s?%s",
		search.Location, search.Category, params.Encode())
}

// FetchListings retrieves the search results page and parses its rows.
// Rows that fail to parse are skipped.
func (c *Client) FetchListings(search config.Search) ([]domain.Listing, error) {
	doc, err := c.fetch(SearchURL(search))
	if err != nil {
		return nil, err
	}
	return ParseListings(doc), nil
}

// ParseListings extracts listing records from a search results document.
func ParseListings(doc *goquery.Document) []domain.Listing {
	var listings []domain.Listing
	doc.Find(".result-row").Each(func(_ int, row *goquery.Selection) {
		titleEl := row.Find(".result-title").First()
		link, ok := titleEl.Attr("href")
		if !ok || link == "" {
			return
		}
		listing := domain.Listing{
			Link:  link,
			Title: strings.ToLower(strings.TrimSpace(titleEl.Text())),
		}
		if priceText := row.Find(".result-price").First().Text(); priceText != "" {
			if price, err := parsePrice(priceText); err == nil {
				listing.Price = &price
			}
		}
		if hood := row.Find(".result-hood").First().Text(); hood != "" {
			listing.Location = strings.Trim(strings.TrimSpace(hood), "()")
		}
		listings = append(listings, listing)
	})
	return listings
}

// FetchDetails deep-fetches a listing page and returns its description,
// attributes, location and images.
func (c *Client) FetchDetails(link string) (*domain.Listing, error) {
	doc, err := c.fetch(link)
	if err != nil {
		return nil, err
	}
	details := ParseDetails(doc)
	return details, nil
}

// ParseDetails extracts the deep fields from a listing page document.
func ParseDetails(doc *goquery.Document) *domain.Listing {
	details := &domain.Listing{}

	body := doc.Find("#postingbody").First().Clone()
	// Drop the "QR Code Link to This Post" print helper
	body.Find(".print-information").Remove()
	details.Description = strings.TrimSpace(body.Text())

	doc.Find(".attrgroup span").Each(func(_ int, span *goquery.Selection) {
		if attr := strings.TrimSpace(span.Text()); attr != "" {
			details.Attributes = append(details.Attributes, attr)
		}
	})

	doc.Find("#thumbs a").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok && href != "" {
			details.Images = append(details.Images, href)
		}
	})
	if len(details.Images) == 0 {
		// Single-image postings have no thumbnail strip
		if src, ok := doc.Find(".gallery img").First().Attr("src"); ok && src != "" {
			details.Images = append(details.Images, src)
		}
	}

	if loc := doc.Find(".postingtitletext small").First().Text(); loc != "" {
		details.Location = strings.Trim(strings.TrimSpace(loc), "()")
	}

	return details
}

// Merge copies deep-fetched fields onto a listing parsed from a search row,
// keeping the row's values where the detail page had none.
func Merge(listing *domain.Listing, details *domain.Listing) {
	if details == nil {
		return
	}
	if details.Description != "" {
		listing.Description = details.Description
	}
	if len(details.Attributes) > 0 {
		listing.Attributes = details.Attributes
	}
	if len(details.Images) > 0 {
		listing.Images = details.Images
	}
	if details.Location != "" {
		listing.Location = details.Location
	}
}

func (c *Client) fetch(rawURL string) (*goquery.Document, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: %s", rawURL, resp.Status)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

func parsePrice(text string) (int, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	return strconv.Atoi(cleaned)
}
