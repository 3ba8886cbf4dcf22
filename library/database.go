package library

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"
)

// Database is the SQLite backend. It satisfies the same Repository contract
// as the memory and CSV backends; insertion order is kept in a separate
// sequence column because ids come from NextBookID, not from SQLite.
type Database struct {
	db *sql.DB

	insertBookStmt   *sql.Stmt
	updateStatusStmt *sql.Stmt
}

// NewDatabase opens (or creates) the SQLite database at dbPath, applies schema
// migrations, and prepares common statements.
func NewDatabase(dbPath string) (*Database, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, dbFail("open", fmt.Errorf("create db dir: %w", err))
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, dbFail("open", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, dbFail("migrate", err)
	}

	database := &Database{db: db}
	if err := database.prepareStatements(); err != nil {
		database.Close()
		return nil, dbFail("prepare", err)
	}
	slog.Debug("sqlite catalog opened", "path", dbPath, "schema_version", schemaVersion)
	return database, nil
}

// Close releases prepared statements and closes the DB.
func (d *Database) Close() error {
	if d.insertBookStmt != nil {
		d.insertBookStmt.Close()
	}
	if d.updateStatusStmt != nil {
		d.updateStatusStmt.Close()
	}
	return d.db.Close()
}

func dbFail(op string, err error) error {
	return &StorageError{Backend: string(BackendSQLite), Op: op, Err: err}
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

const lastBookIDKey = "last_book_id"

func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS books (
            seq INTEGER PRIMARY KEY AUTOINCREMENT,
            id INTEGER NOT NULL UNIQUE,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            page_count INTEGER NOT NULL,
            status TEXT NOT NULL CHECK (status IN ('AVAILABLE_FOR_BORROW','BORROWING','ORGANIZING','LOST'))
        );`,
		`INSERT INTO meta(key,value) VALUES('` + lastBookIDKey + `','0')
            ON CONFLICT(key) DO NOTHING;`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Prepared statements
// ---------------------------------------------------------------------------

func (d *Database) prepareStatements() error {
	var err error
	if d.insertBookStmt, err = d.db.Prepare(`INSERT INTO books(id,title,author,page_count,status) VALUES(?,?,?,?,?)`); err != nil {
		return err
	}
	if d.updateStatusStmt, err = d.db.Prepare(`UPDATE books SET status=? WHERE id=?`); err != nil {
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Repository
// ---------------------------------------------------------------------------

// Save inserts the book and raises the stored id high-water mark in one
// transaction.
func (d *Database) Save(book Book) error {
	tx, err := d.db.Begin()
	if err != nil {
		return dbFail("save", err)
	}
	defer tx.Rollback()

	if _, err := tx.Stmt(d.insertBookStmt).Exec(book.ID, book.Title, book.Author, book.PageCount, string(book.Status)); err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrDuplicateID
		}
		return dbFail("save", err)
	}
	if _, err := tx.Exec(`UPDATE meta SET value=MAX(CAST(value AS INTEGER), ?) WHERE key=?`, book.ID, lastBookIDKey); err != nil {
		return dbFail("save", err)
	}
	if err := tx.Commit(); err != nil {
		return dbFail("save", err)
	}
	return nil
}

func (d *Database) FindAllBooks() ([]Book, error) {
	books, err := d.queryBooks(`SELECT id,title,author,page_count,status FROM books ORDER BY seq`)
	if err != nil {
		return nil, dbFail("find all books", err)
	}
	return books, nil
}

// FindBookByTitle uses instr rather than LIKE; LIKE ignores ASCII case.
func (d *Database) FindBookByTitle(fragment string) ([]Book, error) {
	books, err := d.queryBooks(`SELECT id,title,author,page_count,status FROM books WHERE instr(title, ?) > 0 ORDER BY seq`, fragment)
	if err != nil {
		return nil, dbFail("find book by title", err)
	}
	return books, nil
}

func (d *Database) FindBookByID(id int64) (Book, bool, error) {
	row := d.db.QueryRow(`SELECT id,title,author,page_count,status FROM books WHERE id=?`, id)
	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Book{}, false, nil
	}
	if err != nil {
		return Book{}, false, dbFail("find book by id", err)
	}
	return b, true, nil
}

func (d *Database) UpdateBookStatus(id int64, status BookStatus) error {
	if _, err := d.updateStatusStmt.Exec(string(status), id); err != nil {
		return dbFail("update book status", err)
	}
	return nil
}

func (d *Database) DeleteBookByID(id int64) error {
	if _, err := d.db.Exec(`DELETE FROM books WHERE id=?`, id); err != nil {
		return dbFail("delete book", err)
	}
	return nil
}

// NextBookID reads the persisted high-water mark, so ids stay unique across
// restarts even after the highest book is deleted.
func (d *Database) NextBookID() (int64, error) {
	var last int64
	if err := d.db.QueryRow(`SELECT CAST(value AS INTEGER) FROM meta WHERE key=?`, lastBookIDKey).Scan(&last); err != nil {
		return 0, dbFail("next book id", err)
	}
	return last + 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (Book, error) {
	var (
		b      Book
		status string
	)
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &b.PageCount, &status); err != nil {
		return Book{}, err
	}
	st, err := ParseBookStatus(status)
	if err != nil {
		return Book{}, err
	}
	b.Status = st
	return b, nil
}

func (d *Database) queryBooks(query string, args ...any) ([]Book, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}
