package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextContent(t *testing.T) {
	l := &Listing{
		Title:       "sony headphones",
		Description: "barely used",
		Attributes:  []string{"condition: like new", "color: black"},
	}
	assert.Equal(t, "sony headphones barely used condition: like new color: black", l.TextContent())
}

func TestTextContentMissingFields(t *testing.T) {
	l := &Listing{Title: "sony headphones"}
	assert.Equal(t, "sony headphones", l.TextContent())

	empty := &Listing{}
	assert.Equal(t, "", empty.TextContent())
}

func TestTextContentAttributesOnly(t *testing.T) {
	l := &Listing{Attributes: []string{"size: large"}}
	assert.Equal(t, "size: large", l.TextContent())
}
