// Package readinglist manages users' named book lists and their cached book counts.
package readinglist

import (
	"time"

	domainerrors "bookish/internal/errors"
	"bookish/internal/platform/crypto"
)

type List struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	ListName  string    `json:"listName"`
	IsPrivate bool      `json:"isPrivate"`
	BookCount int       `json:"bookCount"`
	CreatedAt time.Time `json:"createdAt"`
}

type NewList struct {
	UserID    int64
	ListName  string
	IsPrivate bool
}

// Patch updates only the non-nil fields.
type Patch struct {
	ListName  *string
	IsPrivate *bool
}

func (p Patch) Empty() bool {
	return p.ListName == nil && p.IsPrivate == nil
}

// visibleTo reports whether viewer may read l. Anonymous viewers are nil.
func (l List) visibleTo(viewer *crypto.Identity) bool {
	if !l.IsPrivate {
		return true
	}
	return viewer != nil && (viewer.IsAdmin || viewer.UserID == l.UserID)
}

func (l List) authorize(actor crypto.Identity) error {
	if actor.IsAdmin || actor.UserID == l.UserID {
		return nil
	}
	return domainerrors.Forbidden("You do not have access to this list")
}
