package library

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// registration carries the inputs of RegisterBook through the validator.
type registration struct {
	Title     string `validate:"required"`
	Author    string `validate:"required"`
	PageCount int    `validate:"gt=0"`
}

var fieldNames = map[string]string{
	"Title":     "title",
	"Author":    "author",
	"PageCount": "page count",
}

// LibraryManager runs the catalog use cases on top of a Repository. It keeps
// no state of its own: every call re-reads the repository.
type LibraryManager struct {
	repo Repository
}

// NewLibraryManager wraps an already opened repository.
func NewLibraryManager(repo Repository) *LibraryManager {
	return &LibraryManager{repo: repo}
}

// OpenLibraryManager opens the selected backend and wraps it.
func OpenLibraryManager(backend Backend, path string) (*LibraryManager, error) {
	repo, err := OpenRepository(backend, path)
	if err != nil {
		return nil, err
	}
	return &LibraryManager{repo: repo}, nil
}

// Close closes the underlying repository.
func (lm *LibraryManager) Close() error { return lm.repo.Close() }

// ------------------ Registration ------------------

// RegisterBook validates the input, assigns the next id and stores the book
// as available for borrowing.
func (lm *LibraryManager) RegisterBook(title, author string, pageCount int) (Book, error) {
	if err := validateRegistration(title, author, pageCount); err != nil {
		return Book{}, err
	}

	id, err := lm.repo.NextBookID()
	if err != nil {
		return Book{}, err
	}
	book := NewBook(id, title, author, pageCount)
	if err := lm.repo.Save(book); err != nil {
		return Book{}, err
	}
	slog.Info("book registered", "book_id", book.ID, "title", book.Title)
	return book, nil
}

func validateRegistration(title, author string, pageCount int) error {
	err := validate.Struct(registration{Title: title, Author: author, PageCount: pageCount})
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return fmt.Errorf("%w: %s must not be empty", ErrValidation, fieldNames[fe.Field()])
		default:
			return fmt.Errorf("%w: %s must be positive", ErrValidation, fieldNames[fe.Field()])
		}
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	// encoding/csv folds \r\n inside quoted fields into \n on read.
	if strings.ContainsRune(title, '\r') || strings.ContainsRune(author, '\r') {
		return fmt.Errorf("%w: title and author must not contain carriage returns", ErrValidation)
	}
	return nil
}

// ------------------ Search ------------------

func (lm *LibraryManager) SearchAllBooks() ([]Book, error) {
	return lm.repo.FindAllBooks()
}

// SearchBookBy returns books whose title contains fragment, case-sensitive.
func (lm *LibraryManager) SearchBookBy(fragment string) ([]Book, error) {
	return lm.repo.FindBookByTitle(fragment)
}

// GetBook returns ErrInvalidBook for an unknown id.
func (lm *LibraryManager) GetBook(id int64) (Book, error) {
	book, found, err := lm.repo.FindBookByID(id)
	if err != nil {
		return Book{}, err
	}
	if !found {
		return Book{}, ErrInvalidBook
	}
	return book, nil
}

// ------------------ Circulation ------------------

func (lm *LibraryManager) BorrowBook(id int64) error {
	return lm.transition(id, "borrow", CheckBorrow)
}

// ReturnBook moves a borrowed book to ORGANIZING.
func (lm *LibraryManager) ReturnBook(id int64) error {
	return lm.transition(id, "return", CheckReturn)
}

// ShelveBook makes an organized book available for borrowing again.
func (lm *LibraryManager) ShelveBook(id int64) error {
	return lm.transition(id, "shelve", CheckShelve)
}

// LostBook marks a book as lost from any state but LOST.
func (lm *LibraryManager) LostBook(id int64) error {
	return lm.transition(id, "lost", CheckLost)
}

// DeleteBook physically removes a book whatever its status.
func (lm *LibraryManager) DeleteBook(id int64) error {
	if _, err := lm.GetBook(id); err != nil {
		return err
	}
	if err := lm.repo.DeleteBookByID(id); err != nil {
		return err
	}
	slog.Info("book deleted", "book_id", id)
	return nil
}

// transition re-reads the book, asks the policy for the next status and
// writes it back.
func (lm *LibraryManager) transition(id int64, op string, check func(BookStatus) (BookStatus, error)) error {
	book, err := lm.GetBook(id)
	if err != nil {
		return err
	}

	next, err := check(book.Status)
	if err != nil {
		slog.Debug("status change refused", "op", op, "book_id", id, "status", book.Status, "error", err)
		return err
	}
	if err := lm.repo.UpdateBookStatus(id, next); err != nil {
		return err
	}
	slog.Info("book status changed", "op", op, "book_id", id, "from", book.Status, "to", next)
	return nil
}
