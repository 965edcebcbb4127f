package store

import "errors"

// ErrNotFound is returned by single-record lookups that match nothing.
var ErrNotFound = errors.New("record not found")

// Page selects a window of a query result. A zero Size means unpaged.
type Page struct {
	Size int
	Page int
}

// Unpaged returns every matching row.
var Unpaged = Page{}

// First selects only the first row of a query.
var First = Page{Size: 1}

// ObjectQuery filters objects. Empty fields are ignored.
type ObjectQuery struct {
	Alias      string
	AliasLike  string // substring match
	Type       string
	Status     string
	ParentID   string
	ActiveOnly bool
}

// UserQuery filters users. An empty Role matches everyone.
type UserQuery struct {
	Role string
}
