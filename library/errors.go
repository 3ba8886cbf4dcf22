package library

import (
	"errors"
	"fmt"
)

// ErrValidation is returned when registration input is rejected.
// It is usually wrapped with the offending field.
var ErrValidation = errors.New("validation failed")

// Domain errors returned by the LibraryManager when a transition is refused.
var (
	ErrInvalidBook        = errors.New("book does not exist")
	ErrAlreadyBorrowed    = errors.New("book is already borrowed")
	ErrBeingOrganized     = errors.New("book is being organized")
	ErrLost               = errors.New("book is lost")
	ErrAvailableForBorrow = errors.New("book is available for borrow, nothing to return")
	ErrNotOrganizing      = errors.New("book is not being organized")

	// ErrAlreadyLost is the report-lost rejection; it matches ErrLost too.
	ErrAlreadyLost = fmt.Errorf("%w: already reported", ErrLost)
)

// ErrDuplicateID is returned by Save when the id is already stored.
var ErrDuplicateID = errors.New("book id already exists")

var domainErrors = []error{
	ErrInvalidBook,
	ErrAlreadyBorrowed,
	ErrBeingOrganized,
	ErrLost,
	ErrAvailableForBorrow,
	ErrNotOrganizing,
}

// IsDomainError reports whether err is a refused status transition or an
// unknown book.
func IsDomainError(err error) bool {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// StorageError reports an I/O failure inside a repository backend.
type StorageError struct {
	Backend string // "file", "sqlite"
	Op      string // repository method that failed
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s storage: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsStorageError reports whether err came from a failing backend.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
