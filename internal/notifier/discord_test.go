package notifier

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealscope/internal/domain"
)

func intp(v int) *int { return &v }

func capturePayload(t *testing.T, listing *domain.Listing, eval domain.Evaluation) payload {
	t.Helper()
	var got payload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	d := NewDiscord(server.URL, "Dealscope")
	require.NoError(t, d.Notify(listing, eval, "headphones"))
	return got
}

func TestNotifyBuildsEmbed(t *testing.T) {
	listing := &domain.Listing{
		Link:        "https://example.org/1",
		Title:       "sony wh-1000xm4 headphones",
		Price:       intp(150),
		Location:    "downtown",
		Description: "barely used",
		Attributes:  []string{"condition: like new"},
		Images:      []string{"https://images.example.org/1.jpg"},
	}
	eval := domain.Evaluation{
		Rating: domain.RatingGreat,
		Stats: &domain.DealStats{
			CurrentPrice: 150,
			AveragePrice: 200,
			SampleSize:   3,
		},
		Interest: domain.InterestYes,
	}

	got := capturePayload(t, listing, eval)
	assert.Equal(t, "Dealscope", got.Username)
	require.Len(t, got.Embeds, 1)
	e := got.Embeds[0]

	assert.Equal(t, "sony wh-1000xm4 headphones", e.Title)
	assert.Equal(t, "https://example.org/1", e.URL)
	assert.Equal(t, colorNew, e.Color)
	assert.Equal(t, "barely used", e.Description)
	require.NotNil(t, e.Image)
	assert.Equal(t, "https://images.example.org/1.jpg", e.Image.URL)

	fields := map[string]string{}
	for _, f := range e.Fields {
		fields[f.Name] = f.Value
	}
	assert.Equal(t, "$150", fields["Price"])
	assert.Equal(t, "downtown", fields["Location"])
	assert.Equal(t, "headphones", fields["Search"])
	assert.Contains(t, fields["Deal Analysis"], domain.RatingGreat)
	assert.Contains(t, fields["Deal Analysis"], "n=3")
	assert.Contains(t, fields["Interest Prediction"], domain.InterestYes)
}

func TestNotifyPriceDrop(t *testing.T) {
	listing := &domain.Listing{
		Link:     "https://example.org/1",
		Title:    "sony headphones",
		Price:    intp(120),
		OldPrice: intp(150),
	}
	got := capturePayload(t, listing, domain.Evaluation{Rating: domain.RatingGood, Interest: domain.InterestUnknown})

	e := got.Embeds[0]
	assert.True(t, strings.HasPrefix(e.Title, "📉 PRICE DROP:"))
	assert.Equal(t, colorPriceDrop, e.Color)

	fields := map[string]string{}
	for _, f := range e.Fields {
		fields[f.Name] = f.Value
	}
	assert.Equal(t, "$150", fields["Old Price"])
}

func TestNotifyUnknownPrice(t *testing.T) {
	listing := &domain.Listing{Link: "https://example.org/1", Title: "mystery box"}
	got := capturePayload(t, listing, domain.Evaluation{Rating: domain.RatingUnknownPrice, Interest: domain.InterestUnknown})

	fields := map[string]string{}
	for _, f := range got.Embeds[0].Fields {
		fields[f.Name] = f.Value
	}
	assert.Equal(t, "N/A", fields["Price"])
}

func TestNotifyServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	d := NewDiscord(server.URL, "Dealscope")
	err := d.Notify(&domain.Listing{Title: "x"}, domain.Evaluation{Rating: domain.RatingNoData, Interest: domain.InterestUnknown}, "s")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	long := strings.Repeat("a", 50)
	assert.Equal(t, strings.Repeat("a", 17)+"...", truncate(long, 20))
}
