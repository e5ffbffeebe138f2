// Package book stores the local book catalogue and fills it lazily from Open Library.
package book

import (
	"strings"
)

const (
	DefaultCoverURL = "/default-book-cover.png"
	UnknownAuthor   = "Unknown Author"
	NoDescription   = "<p>This book does not have a description.</p>"
)

// Book is identified by its Open Library id.
type Book struct {
	OLID        string `json:"olid"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	CoverURL    string `json:"coverUrl"`
	Description string `json:"description"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

var paragraphBreaks = strings.NewReplacer("\r\n\r\n", "</p><p>", "\n\n", "</p><p>")

// FormatDescription renders plain catalogue text as HTML paragraphs.
func FormatDescription(text string) string {
	if strings.TrimSpace(text) == "" {
		return NoDescription
	}
	return "<p>" + paragraphBreaks.Replace(text) + "</p>"
}

// withDefaults fills the columns a stored book is never allowed to leave empty.
func withDefaults(b Book) Book {
	b.OLID = strings.TrimSpace(b.OLID)
	if strings.TrimSpace(b.Author) == "" {
		b.Author = UnknownAuthor
	}
	if strings.TrimSpace(b.CoverURL) == "" {
		b.CoverURL = DefaultCoverURL
	}
	if strings.TrimSpace(b.Description) == "" {
		b.Description = NoDescription
	}
	return b
}
