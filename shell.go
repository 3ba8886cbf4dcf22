package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"library-catalog/library"
)

const separator = "-------------------------------"

// shell is the interactive menu. It validates input itself and hands only
// non-empty strings and positive integers to the manager.
type shell struct {
	sc  *bufio.Scanner
	out io.Writer
	mgr *library.LibraryManager
}

// runShell picks a backend (asking for one when none was configured and a
// person is at the keyboard), then serves the menu until exit or EOF.
func (a *app) runShell(out io.Writer) error {
	sc := bufio.NewScanner(a.in)
	sh := &shell{sc: sc, out: out}

	if !a.cfg.BackendChosen && a.interactive {
		backend, ok := sh.selectMode()
		if !ok {
			return nil
		}
		a.cfg.Backend = string(backend)
	}

	mgr, err := a.openManager()
	if err != nil {
		return err
	}
	defer mgr.Close()
	sh.mgr = mgr

	if a.interactive {
		fmt.Fprintf(out, "Welcome to the library catalog (%s mode).\n", a.cfg.Backend)
	}
	sh.run()
	return nil
}

func (s *shell) println(a ...any)               { fmt.Fprintln(s.out, a...) }
func (s *shell) printf(format string, a ...any) { fmt.Fprintf(s.out, format, a...) }

// readLine returns the line as typed, or false on EOF.
func (s *shell) readLine() (string, bool) {
	if !s.sc.Scan() {
		return "", false
	}
	return s.sc.Text(), true
}

// readChoice is readLine for menu answers and numbers.
func (s *shell) readChoice() (string, bool) {
	line, ok := s.readLine()
	return strings.TrimSpace(line), ok
}

func (s *shell) selectMode() (library.Backend, bool) {
	for {
		s.println("Q. Select a mode.\n1. Normal mode (saved to file)\n2. Test mode (in memory)")
		line, ok := s.readChoice()
		if !ok {
			return "", false
		}
		switch line {
		case "1":
			s.println("Normal mode selected.")
			return library.BackendFile, true
		case "2":
			s.println("Test mode selected.")
			return library.BackendMemory, true
		default:
			s.println("Mode must be 1 or 2.")
		}
	}
}

const menu = `Q. Select a function.
1. Register book
2. List all books
3. Search books by title
4. Borrow book
5. Return book
6. Report lost book
7. Delete book
8. Shelve organized book
0. Exit`

func (s *shell) run() {
	for {
		s.println(menu)
		line, ok := s.readChoice()
		if !ok {
			return
		}

		var done bool
		switch line {
		case "1":
			done = s.registerBook()
		case "2":
			s.searchAllBooks()
		case "3":
			done = s.searchBooksByTitle()
		case "4":
			done = s.changeStatus("borrow", "borrowed", s.mgr.BorrowBook)
		case "5":
			done = s.changeStatus("return", "returned", s.mgr.ReturnBook)
		case "6":
			done = s.changeStatus("report as lost", "reported lost", s.mgr.LostBook)
		case "7":
			done = s.changeStatus("delete", "deleted", s.mgr.DeleteBook)
		case "8":
			done = s.changeStatus("shelve", "shelved", s.mgr.ShelveBook)
		case "0", "exit":
			s.println("Goodbye!")
			return
		default:
			s.println("[System] Choose a number between 0 and 8.")
		}
		if done {
			return
		}
	}
}

// The handlers below return true when input ended mid-prompt.

func (s *shell) registerBook() bool {
	s.println("[System] Registering a book.")
	title, ok := s.promptNonEmpty("Q. Enter the title.", "Title was not entered.")
	if !ok {
		return true
	}
	author, ok := s.promptNonEmpty("Q. Enter the author.", "Author was not entered.")
	if !ok {
		return true
	}
	pages, ok := s.promptPositiveInt("Q. Enter the page count.", "Page count must be positive.")
	if !ok {
		return true
	}

	book, err := s.mgr.RegisterBook(title, author, int(pages))
	if err != nil {
		s.report(err)
		return false
	}
	s.printf("[System] Book registered with ID %d.\n\n", book.ID)
	return false
}

func (s *shell) searchAllBooks() {
	s.println("[System] All books.")
	books, err := s.mgr.SearchAllBooks()
	if err != nil {
		s.report(err)
		return
	}
	s.printBooks(books, "[System] End of book list.")
}

func (s *shell) searchBooksByTitle() bool {
	s.println("[System] Searching books by title.")
	fragment, ok := s.promptNonEmpty("Q. Enter part of the title.", "Title was not entered.")
	if !ok {
		return true
	}
	books, err := s.mgr.SearchBookBy(fragment)
	if err != nil {
		s.report(err)
		return false
	}
	s.printBooks(books, "[System] End of search results.")
	return false
}

func (s *shell) changeStatus(verb, done string, op func(int64) error) bool {
	id, ok := s.promptPositiveInt(fmt.Sprintf("Q. Enter the ID of the book to %s.", verb), "Book ID must be positive.")
	if !ok {
		return true
	}
	if err := op(id); err != nil {
		s.report(err)
		return false
	}
	s.printf("[System] Book %d %s.\n\n", id, done)
	return false
}

func (s *shell) printBooks(books []library.Book, end string) {
	for _, b := range books {
		s.printf("\n%s\n\n", separator)
		s.println(b.String())
	}
	s.printf("\n%s\n\n", separator)
	s.println(end)
	s.println()
}

// report shows an error without ending the session. Storage failures are
// labelled so they are not mistaken for a refused operation.
func (s *shell) report(err error) {
	if library.IsStorageError(err) {
		s.printf("[Error] Storage failure: %v\n\n", err)
		return
	}
	s.printf("[System] %v\n\n", err)
}

func (s *shell) promptNonEmpty(question, errMsg string) (string, bool) {
	for {
		s.println(question)
		line, ok := s.readLine()
		if !ok {
			return "", false
		}
		if strings.TrimSpace(line) != "" {
			return line, true
		}
		s.println(errMsg)
	}
}

func (s *shell) promptPositiveInt(question, errMsg string) (int64, bool) {
	for {
		s.println(question)
		line, ok := s.readChoice()
		if !ok {
			return 0, false
		}
		n, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			s.println("[System] A valid number is required.")
			continue
		}
		if n <= 0 {
			s.println(errMsg)
			continue
		}
		return n, true
	}
}
