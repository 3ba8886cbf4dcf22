package library

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backend opens a repository rooted in dir. Opening twice with the same dir
// simulates a process restart for the durable backends.
type backend struct {
	name    string
	durable bool
	open    func(t *testing.T, dir string) Repository
}

var backends = []backend{
	{
		name: "memory",
		open: func(t *testing.T, _ string) Repository {
			return NewMemoryRepository()
		},
	},
	{
		name:    "file",
		durable: true,
		open: func(t *testing.T, dir string) Repository {
			return NewFileRepository(filepath.Join(dir, "data", "bookInfo.csv"))
		},
	},
	{
		name:    "sqlite",
		durable: true,
		open: func(t *testing.T, dir string) Repository {
			t.Helper()
			db, err := NewDatabase(filepath.Join(dir, "library.db"))
			require.NoError(t, err)
			t.Cleanup(func() { db.Close() })
			return db
		},
	},
}

func forEachBackend(t *testing.T, fn func(t *testing.T, b backend, repo Repository, dir string)) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			dir := t.TempDir()
			fn(t, b, b.open(t, dir), dir)
		})
	}
}

func saveBooks(t *testing.T, repo Repository, books ...Book) {
	t.Helper()
	for _, b := range books {
		require.NoError(t, repo.Save(b))
	}
}

func TestRepositoryEmpty(t *testing.T) {
	forEachBackend(t, func(t *testing.T, _ backend, repo Repository, _ string) {
		books, err := repo.FindAllBooks()
		require.NoError(t, err)
		assert.Empty(t, books)

		next, err := repo.NextBookID()
		require.NoError(t, err)
		assert.Equal(t, int64(1), next)

		_, found, err := repo.FindBookByID(1)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestRepositorySaveAndFind(t *testing.T) {
	forEachBackend(t, func(t *testing.T, _ backend, repo Repository, _ string) {
		want := NewBookWithStatus(7, "The Pragmatic Programmer", "Hunt, Thomas", 352, StatusOrganizing)
		saveBooks(t, repo, want)

		got, found, err := repo.FindBookByID(7)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, want, got)
	})
}

func TestRepositoryRoundTripAcrossRestart(t *testing.T) {
	forEachBackend(t, func(t *testing.T, b backend, repo Repository, dir string) {
		if !b.durable {
			t.Skip("not durable")
		}
		books := []Book{
			NewBook(1, `Title, with "quotes"`, "Author, Jr.", 10),
			NewBookWithStatus(2, "multi\nline", " padded ", 20, StatusBorrowing),
			NewBookWithStatus(3, "한국어 제목", "작가", 30, StatusLost),
		}
		saveBooks(t, repo, books...)

		reopened := b.open(t, dir)
		got, err := reopened.FindAllBooks()
		require.NoError(t, err)
		assert.Equal(t, books, got)
	})
}

func TestRepositoryInsertionOrder(t *testing.T) {
	forEachBackend(t, func(t *testing.T, _ backend, repo Repository, _ string) {
		saveBooks(t, repo,
			NewBook(3, "c", "x", 1),
			NewBook(1, "a", "x", 1),
			NewBook(2, "b", "x", 1),
		)
		books, err := repo.FindAllBooks()
		require.NoError(t, err)
		require.Len(t, books, 3)
		assert.Equal(t, []int64{3, 1, 2}, []int64{books[0].ID, books[1].ID, books[2].ID})
	})
}

func TestRepositoryFindBookByTitle(t *testing.T) {
	forEachBackend(t, func(t *testing.T, _ backend, repo Repository, _ string) {
		saveBooks(t, repo,
			NewBook(1, "abc", "x", 1),
			NewBook(2, "cka", "x", 1),
			NewBook(3, "def", "x", 1),
			NewBook(4, "ghi", "x", 1),
			NewBook(5, "ABC", "x", 1),
		)

		books, err := repo.FindBookByTitle("a")
		require.NoError(t, err)
		require.Len(t, books, 2)
		assert.Equal(t, "abc", books[0].Title)
		assert.Equal(t, "cka", books[1].Title)

		books, err = repo.FindBookByTitle("zzz")
		require.NoError(t, err)
		assert.Empty(t, books)
	})
}

func TestRepositoryDuplicateID(t *testing.T) {
	forEachBackend(t, func(t *testing.T, _ backend, repo Repository, _ string) {
		saveBooks(t, repo, NewBook(1, "first", "x", 1))

		err := repo.Save(NewBookWithStatus(1, "second", "y", 2, StatusLost))
		require.ErrorIs(t, err, ErrDuplicateID)

		got, found, err := repo.FindBookByID(1)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "first", got.Title)
		assert.Equal(t, StatusAvailable, got.Status)
	})
}

func TestRepositoryUpdateBookStatus(t *testing.T) {
	forEachBackend(t, func(t *testing.T, _ backend, repo Repository, _ string) {
		saveBooks(t, repo, NewBook(1, "a", "x", 1), NewBook(2, "b", "x", 1))

		require.NoError(t, repo.UpdateBookStatus(2, StatusBorrowing))
		require.NoError(t, repo.UpdateBookStatus(99, StatusLost))

		one, _, err := repo.FindBookByID(1)
		require.NoError(t, err)
		two, _, err := repo.FindBookByID(2)
		require.NoError(t, err)
		assert.Equal(t, StatusAvailable, one.Status)
		assert.Equal(t, StatusBorrowing, two.Status)

		books, err := repo.FindAllBooks()
		require.NoError(t, err)
		assert.Len(t, books, 2)
	})
}

func TestRepositoryDeleteBookByID(t *testing.T) {
	forEachBackend(t, func(t *testing.T, _ backend, repo Repository, _ string) {
		saveBooks(t, repo, NewBook(1, "a", "x", 1), NewBook(2, "b", "x", 1))

		require.NoError(t, repo.DeleteBookByID(1))
		require.NoError(t, repo.DeleteBookByID(42))

		_, found, err := repo.FindBookByID(1)
		require.NoError(t, err)
		assert.False(t, found)

		books, err := repo.FindAllBooks()
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, int64(2), books[0].ID)
	})
}

func TestRepositoryNextBookIDNeverReused(t *testing.T) {
	forEachBackend(t, func(t *testing.T, _ backend, repo Repository, _ string) {
		for id := int64(1); id <= 5; id++ {
			saveBooks(t, repo, NewBook(id, "t", "a", 1))
		}
		require.NoError(t, repo.DeleteBookByID(3))

		next, err := repo.NextBookID()
		require.NoError(t, err)
		assert.Equal(t, int64(6), next)

		require.NoError(t, repo.DeleteBookByID(5))
		next, err = repo.NextBookID()
		require.NoError(t, err)
		assert.Equal(t, int64(6), next)
	})
}

func TestOpenRepository(t *testing.T) {
	dir := t.TempDir()

	repo, err := OpenRepository(BackendMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryRepository{}, repo)

	repo, err = OpenRepository(BackendFile, filepath.Join(dir, "books.csv"))
	require.NoError(t, err)
	assert.IsType(t, &FileRepository{}, repo)

	repo, err = OpenRepository(BackendSQLite, filepath.Join(dir, "books.db"))
	require.NoError(t, err)
	assert.IsType(t, &Database{}, repo)
	require.NoError(t, repo.Close())

	_, err = OpenRepository("postgres", "")
	assert.Error(t, err)
}
