package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"dealscope/internal/domain"
)

// Colors for embed accents.
const (
	colorNew       = 0x00ff99
	colorPriceDrop = 0xff9900
)

// Discord posts listing alerts to a Discord webhook.
type Discord struct {
	webhookURL string
	username   string
	http       *http.Client
}

// NewDiscord creates a webhook notifier.
func NewDiscord(webhookURL, username string) *Discord {
	return &Discord{
		webhookURL: webhookURL,
		username:   username,
		http:       &http.Client{Timeout: 10 * time.Second},
	}
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type embedImage struct {
	URL string `json:"url"`
}

type embed struct {
	Title       string       `json:"title"`
	URL         string       `json:"url"`
	Color       int          `json:"color"`
	Description string       `json:"description,omitempty"`
	Fields      []embedField `json:"fields"`
	Image       *embedImage  `json:"image,omitempty"`
}

type payload struct {
	Username string  `json:"username"`
	Embeds   []embed `json:"embeds"`
}

// Notify sends one listing with its evaluation to the webhook.
func (d *Discord) Notify(listing *domain.Listing, eval domain.Evaluation, searchName string) error {
	body, err := json.Marshal(payload{
		Username: d.username,
		Embeds:   []embed{buildEmbed(listing, eval, searchName)},
	})
	if err != nil {
		return err
	}
	resp, err := d.http.Post(d.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}

func buildEmbed(listing *domain.Listing, eval domain.Evaluation, searchName string) embed {
	e := embed{
		Title: truncate(listing.Title, 256),
		URL:   listing.Link,
		Color: colorNew,
	}
	if listing.OldPrice != nil {
		e.Title = truncate("📉 PRICE DROP: "+listing.Title, 256)
		e.Color = colorPriceDrop
	}

	e.Fields = append(e.Fields, embedField{Name: "Price", Value: priceText(listing.Price), Inline: true})
	if listing.OldPrice != nil {
		e.Fields = append(e.Fields, embedField{Name: "Old Price", Value: priceText(listing.OldPrice), Inline: true})
	}
	e.Fields = append(e.Fields,
		embedField{Name: "Location", Value: orNA(listing.Location), Inline: true},
		embedField{Name: "Search", Value: searchName, Inline: true},
	)

	e.Fields = append(e.Fields, embedField{
		Name:  "Deal Analysis",
		Value: ratingText(eval.Rating, eval.Stats),
	})

	e.Fields = append(e.Fields, embedField{
		Name:   "Interest Prediction",
		Value:  fmt.Sprintf("%s %s", interestIcon(eval.Interest), eval.Interest),
		Inline: true,
	})

	if len(listing.Attributes) > 0 {
		e.Fields = append(e.Fields, embedField{
			Name:  "Attributes",
			Value: truncate(strings.Join(listing.Attributes, "\n"), 1000),
		})
	}
	if listing.Description != "" {
		e.Description = truncate(listing.Description, 1000)
	}
	if len(listing.Images) > 0 {
		e.Image = &embedImage{URL: listing.Images[0]}
	}
	return e
}

func ratingText(rating string, stats *domain.DealStats) string {
	emoji := "😐"
	switch {
	case strings.Contains(rating, "Incredible"):
		emoji = "🤯"
	case strings.Contains(rating, "Great"):
		emoji = "🤩"
	case strings.Contains(rating, "Good"):
		emoji = "🙂"
	case strings.Contains(rating, "Overpriced"):
		emoji = "💸"
	}
	text := fmt.Sprintf("%s **%s**", emoji, rating)
	if stats != nil && stats.AveragePrice != 0 {
		text += fmt.Sprintf("\nAvg: $%.2f (n=%d)", stats.AveragePrice, stats.SampleSize)
	}
	return text
}

func interestIcon(interest string) string {
	switch interest {
	case domain.InterestYes:
		return "😍"
	case domain.InterestNeutral:
		return "😐"
	case domain.InterestNo:
		return "😴"
	default:
		return "❓"
	}
}

func priceText(price *int) string {
	if price == nil {
		return "N/A"
	}
	return fmt.Sprintf("$%d", *price)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit-3 {
		return s
	}
	return string(runes[:limit-3]) + "..."
}
