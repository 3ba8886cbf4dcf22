package library

import "fmt"

// Repository is the persistence contract shared by every backend. All
// backends must behave identically for the same sequence of calls.
type Repository interface {
	// Save inserts a new record. It returns ErrDuplicateID if the id is
	// already stored.
	Save(book Book) error
	// FindAllBooks returns every record in insertion order.
	FindAllBooks() ([]Book, error)
	// FindBookByTitle returns records whose title contains fragment
	// (case-sensitive), in stored order.
	FindBookByTitle(fragment string) ([]Book, error)
	// FindBookByID reports found=false for an unknown id; that is not an error.
	FindBookByID(id int64) (book Book, found bool, err error)
	// UpdateBookStatus replaces the status of a record. Unknown ids are ignored.
	UpdateBookStatus(id int64, status BookStatus) error
	// DeleteBookByID physically removes a record. Unknown ids are ignored.
	DeleteBookByID(id int64) error
	// NextBookID returns an id never used by any record this instance has
	// seen: highest id seen + 1, or 1 for an empty store.
	NextBookID() (int64, error)
	Close() error
}

var (
	_ Repository = (*MemoryRepository)(nil)
	_ Repository = (*FileRepository)(nil)
	_ Repository = (*Database)(nil)
)

// Backend names a Repository implementation.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
)

// OpenRepository builds the backend selected at startup. path is the CSV
// file for BackendFile and the database file for BackendSQLite; it is
// ignored for BackendMemory.
func OpenRepository(backend Backend, path string) (Repository, error) {
	switch backend {
	case BackendMemory:
		return NewMemoryRepository(), nil
	case BackendFile:
		return NewFileRepository(path), nil
	case BackendSQLite:
		db, err := NewDatabase(path)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}
