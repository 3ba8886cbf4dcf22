package library

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const fileFields = 5 // id,title,author,pageCount,status

// FileRepository stores the catalog in a CSV file, one book per line:
//
//	id,title,author,pageCount,status
//
// Titles and authors are quoted per RFC 4180 when they contain a comma,
// a double quote or a newline, so any text round-trips. Every call reads
// the whole file; every mutation rewrites the whole file through a
// temporary file and a rename. The file need not exist until the first write.
type FileRepository struct {
	path   string
	lastID int64 // highest id this instance has seen
}

func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

func (r *FileRepository) Save(book Book) error {
	books, err := r.load("save")
	if err != nil {
		return err
	}
	for _, b := range books {
		if b.ID == book.ID {
			return ErrDuplicateID
		}
	}
	if err := r.store("save", append(books, book)); err != nil {
		return err
	}
	r.observe(book.ID)
	return nil
}

func (r *FileRepository) FindAllBooks() ([]Book, error) {
	return r.load("find all books")
}

func (r *FileRepository) FindBookByTitle(fragment string) ([]Book, error) {
	books, err := r.load("find book by title")
	if err != nil {
		return nil, err
	}
	matches := []Book{}
	for _, b := range books {
		if strings.Contains(b.Title, fragment) {
			matches = append(matches, b)
		}
	}
	return matches, nil
}

func (r *FileRepository) FindBookByID(id int64) (Book, bool, error) {
	books, err := r.load("find book by id")
	if err != nil {
		return Book{}, false, err
	}
	for _, b := range books {
		if b.ID == id {
			return b, true, nil
		}
	}
	return Book{}, false, nil
}

func (r *FileRepository) UpdateBookStatus(id int64, status BookStatus) error {
	books, err := r.load("update book status")
	if err != nil {
		return err
	}
	for i, b := range books {
		if b.ID == id {
			books[i] = b.WithStatus(status)
			return r.store("update book status", books)
		}
	}
	return nil
}

func (r *FileRepository) DeleteBookByID(id int64) error {
	books, err := r.load("delete book")
	if err != nil {
		return err
	}
	for i, b := range books {
		if b.ID == id {
			return r.store("delete book", append(books[:i], books[i+1:]...))
		}
	}
	return nil
}

// NextBookID scans the file for the highest id. It also remembers ids this
// instance saw earlier so a deleted maximum is never handed out again.
func (r *FileRepository) NextBookID() (int64, error) {
	if _, err := r.load("next book id"); err != nil {
		return 0, err
	}
	return r.lastID + 1, nil
}

func (r *FileRepository) Close() error { return nil }

func (r *FileRepository) observe(id int64) {
	if id > r.lastID {
		r.lastID = id
	}
}

func (r *FileRepository) fail(op string, err error) error {
	return &StorageError{Backend: string(BackendFile), Op: op, Err: err}
}

// load reads every record. A missing file is an empty catalog.
func (r *FileRepository) load(op string) ([]Book, error) {
	f, err := os.Open(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Book{}, nil
	}
	if err != nil {
		return nil, r.fail(op, err)
	}
	defer f.Close()

	books, err := decodeBooks(f)
	if err != nil {
		return nil, r.fail(op, fmt.Errorf("%s: %w", r.path, err))
	}
	for _, b := range books {
		r.observe(b.ID)
	}
	return books, nil
}

// store replaces the file atomically: a sibling temp file is written,
// synced and renamed over the target.
func (r *FileRepository) store(op string, books []Book) (err error) {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return r.fail(op, fmt.Errorf("create data dir: %w", err))
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return r.fail(op, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := encodeBooks(tmp, books); err != nil {
		return r.fail(op, err)
	}
	if err := tmp.Chmod(r.fileMode()); err != nil {
		return r.fail(op, err)
	}
	if err := tmp.Sync(); err != nil {
		return r.fail(op, err)
	}
	if err := tmp.Close(); err != nil {
		return r.fail(op, err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return r.fail(op, err)
	}
	return nil
}

// fileMode is the permission of the current file, or 0644 for a new one.
// CreateTemp makes 0600 files and the rename would carry that over.
func (r *FileRepository) fileMode() os.FileMode {
	if fi, err := os.Stat(r.path); err == nil {
		return fi.Mode().Perm()
	}
	return 0o644
}

func decodeBooks(rd io.Reader) ([]Book, error) {
	cr := csv.NewReader(rd)
	cr.FieldsPerRecord = fileFields

	books := []Book{}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return books, nil
		}
		if err != nil {
			return nil, err
		}
		b, err := decodeBook(rec)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		books = append(books, b)
	}
}

func decodeBook(rec []string) (Book, error) {
	id, err := strconv.ParseInt(rec[0], 10, 64)
	if err != nil {
		return Book{}, fmt.Errorf("bad id %q", rec[0])
	}
	pages, err := strconv.Atoi(rec[3])
	if err != nil {
		return Book{}, fmt.Errorf("bad page count %q", rec[3])
	}
	status, err := ParseBookStatus(rec[4])
	if err != nil {
		return Book{}, err
	}
	return NewBookWithStatus(id, rec[1], rec[2], pages, status), nil
}

func encodeBooks(w io.Writer, books []Book) error {
	cw := csv.NewWriter(w)
	for _, b := range books {
		rec := []string{
			strconv.FormatInt(b.ID, 10),
			b.Title,
			b.Author,
			strconv.Itoa(b.PageCount),
			string(b.Status),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
