package filters

import (
	"strings"

	"dealscope/internal/config"
	"dealscope/internal/domain"
)

// Matches reports whether a listing passes a search's filter rules: the
// price cap (only enforced when the price is known), exclude keywords (any
// hit rejects) and include keywords (all must be present). Keyword checks
// are case-insensitive against the title.
func Matches(listing *domain.Listing, search config.Search) bool {
	if search.MaxPrice > 0 && listing.Price != nil && *listing.Price > search.MaxPrice {
		return false
	}

	title := strings.ToLower(listing.Title)

	for _, word := range search.Keywords.Exclude {
		if strings.Contains(title, strings.ToLower(word)) {
			return false
		}
	}

	for _, word := range search.Keywords.Include {
		if !strings.Contains(title, strings.ToLower(word)) {
			return false
		}
	}

	return true
}
