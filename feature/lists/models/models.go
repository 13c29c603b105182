package models

import (
	"fmt"
	"time"
)

// Type is a list partition. Each type is stored in its own table.
type Type string

const (
	// TypeCore lists are provisioned per user and never deleted.
	TypeCore Type = "core"
	// TypeCreated lists are owned and fully managed by their creator.
	TypeCreated Type = "created"
	// TypeFollowing lists are read only.
	TypeFollowing Type = "following"
)

// Types returns every partition in presentation order.
func Types() []Type {
	return []Type{TypeCore, TypeCreated, TypeFollowing}
}

// ParseType converts a raw partition name.
func ParseType(raw string) (Type, error) {
	switch t := Type(raw); t {
	case TypeCore, TypeCreated, TypeFollowing:
		return t, nil
	}
	return "", fmt.Errorf("unknown list type %q", raw)
}

// Table returns the table backing the partition.
func (t Type) Table() string {
	return string(t) + "_lists"
}

// Source tags where a list came from. It is carried through but never evaluated.
type Source string

const (
	SourceNative   Source = "native"
	SourceImported Source = "imported"
)

// ListRecord is a single list of book keys.
// The same struct backs core_lists, created_lists and following_lists.
type ListRecord struct {
	Slug        string    `gorm:"column:slug;primaryKey;size:191" json:"slug"`
	CreatorKey  string    `gorm:"column:creator_key;primaryKey;size:191" json:"creatorKey"`
	Key         string    `gorm:"column:list_key;size:191;not null" json:"key"`
	Type        Type      `gorm:"-" json:"type"`
	Source      Source    `gorm:"column:source;size:32;not null" json:"source"`
	Name        string    `gorm:"column:name;size:255;not null" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	BookKeys    []string  `gorm:"column:book_keys;type:text;serializer:json" json:"bookKeys"`
	BooksCount  int       `gorm:"column:books_count;not null;default:0" json:"booksCount"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// DeletedKey identifies a removed list.
type DeletedKey struct {
	Key string `json:"key"`
}

// ListSummary is the compact view used by the list keys overview.
type ListSummary struct {
	Key      string   `json:"key"`
	Name     string   `json:"name"`
	BookKeys []string `json:"bookKeys"`
}

// Summarize builds the compact view of a record.
func (r ListRecord) Summarize() ListSummary {
	keys := r.BookKeys
	if keys == nil {
		keys = []string{}
	}
	return ListSummary{Key: r.Key, Name: r.Name, BookKeys: keys}
}

// ListKeys groups summaries by partition.
type ListKeys map[Type][]ListSummary

// EmptyListKeys returns the default overview with an empty slice per partition.
func EmptyListKeys() ListKeys {
	keys := make(ListKeys, len(Types()))
	for _, t := range Types() {
		keys[t] = []ListSummary{}
	}
	return keys
}
