package library

import "strings"

// MemoryRepository keeps books in process memory. Nothing survives the
// process; it backs the "test mode" of the console.
type MemoryRepository struct {
	books  map[int64]Book
	order  []int64
	lastID int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{books: make(map[int64]Book)}
}

func (r *MemoryRepository) Save(book Book) error {
	if _, ok := r.books[book.ID]; ok {
		return ErrDuplicateID
	}
	r.books[book.ID] = book
	r.order = append(r.order, book.ID)
	if book.ID > r.lastID {
		r.lastID = book.ID
	}
	return nil
}

func (r *MemoryRepository) FindAllBooks() ([]Book, error) {
	books := make([]Book, 0, len(r.order))
	for _, id := range r.order {
		books = append(books, r.books[id])
	}
	return books, nil
}

func (r *MemoryRepository) FindBookByTitle(fragment string) ([]Book, error) {
	books := []Book{}
	for _, id := range r.order {
		if b := r.books[id]; strings.Contains(b.Title, fragment) {
			books = append(books, b)
		}
	}
	return books, nil
}

func (r *MemoryRepository) FindBookByID(id int64) (Book, bool, error) {
	b, ok := r.books[id]
	return b, ok, nil
}

func (r *MemoryRepository) UpdateBookStatus(id int64, status BookStatus) error {
	if b, ok := r.books[id]; ok {
		r.books[id] = b.WithStatus(status)
	}
	return nil
}

func (r *MemoryRepository) DeleteBookByID(id int64) error {
	if _, ok := r.books[id]; !ok {
		return nil
	}
	delete(r.books, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryRepository) NextBookID() (int64, error) {
	return r.lastID + 1, nil
}

func (r *MemoryRepository) Close() error { return nil }
