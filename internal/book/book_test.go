package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDescription(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", NoDescription},
		{"whitespace", "  \n", NoDescription},
		{"single paragraph", "A desert planet.", "<p>A desert planet.</p>"},
		{"crlf paragraphs", "One\r\n\r\nTwo", "<p>One</p><p>Two</p>"},
		{"lf paragraphs", "One\n\nTwo\n\nThree", "<p>One</p><p>Two</p><p>Three</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDescription(tt.in))
		})
	}
}

func TestWithDefaults(t *testing.T) {
	b := withDefaults(Book{OLID: " OL1W ", Title: "Dune"})
	assert.Equal(t, "OL1W", b.OLID)
	assert.Equal(t, UnknownAuthor, b.Author)
	assert.Equal(t, DefaultCoverURL, b.CoverURL)
	assert.Equal(t, NoDescription, b.Description)

	kept := withDefaults(Book{OLID: "OL1W", Title: "Dune", Author: "Frank Herbert", CoverURL: "/c.jpg", Description: "<p>x</p>"})
	assert.Equal(t, "Frank Herbert", kept.Author)
	assert.Equal(t, "/c.jpg", kept.CoverURL)
}
