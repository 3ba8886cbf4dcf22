package library

import (
	"fmt"
	"strings"
)

// BookStatus is the circulation state of a single book.
type BookStatus string

const (
	StatusAvailable  BookStatus = "AVAILABLE_FOR_BORROW"
	StatusBorrowing  BookStatus = "BORROWING"
	StatusOrganizing BookStatus = "ORGANIZING"
	StatusLost       BookStatus = "LOST"
)

var statusLabels = map[BookStatus]string{
	StatusAvailable:  "available",
	StatusBorrowing:  "borrowed",
	StatusOrganizing: "organizing",
	StatusLost:       "lost",
}

// ParseBookStatus maps a stored status name back to a BookStatus.
func ParseBookStatus(s string) (BookStatus, error) {
	st := BookStatus(strings.TrimSpace(s))
	if !st.Valid() {
		return "", fmt.Errorf("unknown book status %q", s)
	}
	return st, nil
}

// Valid reports whether s is one of the four known statuses.
func (s BookStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label is the human readable form used by the console.
func (s BookStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Book is a catalog entry. Values are treated as immutable: status changes
// produce a new Book via WithStatus.
type Book struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Author    string     `json:"author"`
	PageCount int        `json:"page_count"`
	Status    BookStatus `json:"status"`
}

// NewBook builds a book that is available for borrowing.
func NewBook(id int64, title, author string, pageCount int) Book {
	return NewBookWithStatus(id, title, author, pageCount, StatusAvailable)
}

// NewBookWithStatus builds a book in an explicit status. Production code
// registers books through the manager; this exists for fixtures and decoding.
func NewBookWithStatus(id int64, title, author string, pageCount int, status BookStatus) Book {
	return Book{
		ID:        id,
		Title:     title,
		Author:    author,
		PageCount: pageCount,
		Status:    status,
	}
}

// WithStatus returns a copy of b in the given status.
func (b Book) WithStatus(status BookStatus) Book {
	b.Status = status
	return b
}

func (b Book) String() string {
	return fmt.Sprintf("ID: %d\nTitle: %s\nAuthor: %s\nPages: %d\nStatus: %s",
		b.ID, b.Title, b.Author, b.PageCount, b.Status.Label())
}

// PrettyBook formats a book as a single table row for lists.
func PrettyBook(b Book) string {
	return fmt.Sprintf("%-5d %-30s %-25s %-6d %-12s",
		b.ID, Truncate(b.Title, 30), Truncate(b.Author, 25), b.PageCount, b.Status.Label())
}

// Truncate shortens s to at most maxLen runes, ending in "..." when cut.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
