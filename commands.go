package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"library-catalog/library"

	"github.com/spf13/cobra"
)

// catalogCommands are the one-shot equivalents of the interactive menu.
func (a *app) catalogCommands() []*cobra.Command {
	return []*cobra.Command{
		{
			Use:   "register TITLE AUTHOR PAGES",
			Short: "Register a new book",
			Args:  cobra.ExactArgs(3),
			RunE: a.withManager(func(mgr *library.LibraryManager, out io.Writer, args []string) error {
				pages, err := strconv.Atoi(args[2])
				if err != nil {
					return fmt.Errorf("%w: page count must be a number, got %q", library.ErrValidation, args[2])
				}
				book, err := mgr.RegisterBook(args[0], args[1], pages)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Registered book ID %d.\n", book.ID)
				return nil
			}),
		},
		{
			Use:   "list",
			Short: "List all books",
			Args:  cobra.NoArgs,
			RunE: a.withManager(func(mgr *library.LibraryManager, out io.Writer, _ []string) error {
				books, err := mgr.SearchAllBooks()
				if err != nil {
					return err
				}
				printTable(out, books, "No books in library.")
				return nil
			}),
		},
		{
			Use:   "search FRAGMENT",
			Short: "Search books whose title contains FRAGMENT (case-sensitive)",
			Args:  cobra.ExactArgs(1),
			RunE: a.withManager(func(mgr *library.LibraryManager, out io.Writer, args []string) error {
				books, err := mgr.SearchBookBy(args[0])
				if err != nil {
					return err
				}
				printTable(out, books, fmt.Sprintf("No books found matching '%s'.", args[0]))
				return nil
			}),
		},
		a.statusCmd("borrow", "Borrow an available book", "borrowed", (*library.LibraryManager).BorrowBook),
		a.statusCmd("return", "Return a borrowed book", "returned", (*library.LibraryManager).ReturnBook),
		a.statusCmd("shelve", "Make an organized book available again", "shelved", (*library.LibraryManager).ShelveBook),
		a.statusCmd("lost", "Report a book as lost", "reported lost", (*library.LibraryManager).LostBook),
		a.statusCmd("delete", "Delete a book", "deleted", (*library.LibraryManager).DeleteBook),
	}
}

func (a *app) statusCmd(name, short, done string, op func(*library.LibraryManager, int64) error) *cobra.Command {
	return &cobra.Command{
		Use:   name + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: a.withManager(func(mgr *library.LibraryManager, out io.Writer, args []string) error {
			id, err := parseBookID(args[0])
			if err != nil {
				return err
			}
			if err := op(mgr, id); err != nil {
				return err
			}
			fmt.Fprintf(out, "Book %d %s.\n", id, done)
			return nil
		}),
	}
}

// withManager opens the configured catalog around a single command.
func (a *app) withManager(fn func(*library.LibraryManager, io.Writer, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		mgr, err := a.openManager()
		if err != nil {
			return err
		}
		defer mgr.Close()
		return fn(mgr, cmd.OutOrStdout(), args)
	}
}

func parseBookID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: book ID must be a positive number, got %q", library.ErrValidation, s)
	}
	return id, nil
}

func printTable(out io.Writer, books []library.Book, empty string) {
	if len(books) == 0 {
		fmt.Fprintln(out, empty)
		return
	}
	fmt.Fprintf(out, "%-5s %-30s %-25s %-6s %-12s\n", "ID", "Title", "Author", "Pages", "Status")
	fmt.Fprintln(out, strings.Repeat("-", 82))
	for _, b := range books {
		fmt.Fprintln(out, library.PrettyBook(b))
	}
}
