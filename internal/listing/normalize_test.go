package listing

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/dropwatch/internal/signals"
	"github.com/jonathan/dropwatch/internal/types"
)

func TestLooksLikeProductURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://shop.example.com/products/naruto", true},
		{"https://shop.example.com/product/123", true},
		{"https://www.example.co.uk/p/456", true},
		{"https://hmv.example.com/store/pop/item", true},
		{"https://shop.example.com/collections/funko/products/x", false},
		{"https://shop.example.com/search/products/x", false},
		{"https://shop.example.com/category/product/x", false},
		{"https://shop.example.com/about", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, LooksLikeProductURL(tt.url))
		})
	}
}

func TestCanonicalURL(t *testing.T) {
	base, err := url.Parse("https://shop.example.com/new/")
	require.NoError(t, err)

	got, err := CanonicalURL(base, "/products/a?utm=1#reviews")
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/products/a", got)

	got, err = CanonicalURL(base, "products/b")
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/new/products/b", got)

	got, err = CanonicalURL(base, "https://other.example.com/p/c?x=y")
	require.NoError(t, err)
	assert.Equal(t, "https://other.example.com/p/c", got)
}

func TestNormalize_DeduplicatesFirstWins(t *testing.T) {
	prices := signals.NewExtractor(signals.Keywords{})
	anchors := []types.RawAnchor{
		{Href: "/products/naruto?ref=home", Text: " Naruto  Exclusive Pop ", NearbyText: "Naruto Exclusive Pop £14.99"},
		{Href: "/products/naruto", Text: "Naruto (duplicate)", NearbyText: "£99.00"},
		{Href: "/products/luffy", Text: "Luffy Chase", NearbyText: "no price here"},
	}

	items, err := Normalize(anchors, "https://shop.example.com", prices)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Naruto Exclusive Pop", items[0].Title)
	assert.Equal(t, "https://shop.example.com/products/naruto", items[0].URL)
	require.NotNil(t, items[0].ListingPriceText)
	assert.Equal(t, "£14.99", *items[0].ListingPriceText)

	assert.Equal(t, "Luffy Chase", items[1].Title)
	assert.Nil(t, items[1].ListingPriceText)
}

func TestNormalize_DropsShortTitlesAndNonProducts(t *testing.T) {
	anchors := []types.RawAnchor{
		{Href: "/products/icon", Text: "❤"},
		{Href: "/products/ab", Text: "ab"},
		{Href: "/search?q=funko", Text: "Search results"},
		{Href: "/collections/funko", Text: "All Funko"},
		{Href: "/products/ok", Text: "Pop"},
	}

	items, err := Normalize(anchors, "https://shop.example.com", nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "https://shop.example.com/products/ok", items[0].URL)
}

func TestNormalize_InvalidBaseURL(t *testing.T) {
	_, err := Normalize(nil, "not-a-url", nil)
	require.Error(t, err)

	var extractionErr *ExtractionError
	assert.True(t, errors.As(err, &extractionErr))
}

func TestDigest_OrderIndependent(t *testing.T) {
	price := "£5.00"
	a := []types.CandidateItem{
		{Title: "A", URL: "https://x/p/a", ListingPriceText: &price},
		{Title: "B", URL: "https://x/p/b"},
	}
	b := []types.CandidateItem{a[1], a[0]}

	assert.Equal(t, Digest(a), Digest(b))
	assert.Len(t, Digest(a), 64)
	assert.NotEqual(t, Digest(a), Digest(a[:1]))
}
