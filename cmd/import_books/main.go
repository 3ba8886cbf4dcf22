package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"library-catalog/config"
	"library-catalog/library"
	"library-catalog/logger"

	"github.com/spf13/cobra"
)

func main() {
	if err := newImportCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newImportCmd() *cobra.Command {
	v := config.New()
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "import_books FILE",
		Short: "Register every title,author,pages row of a CSV file",
		Long: `import_books reads a CSV file with one book per row (title,author,pages)
and registers each one in the configured catalog. A first row of
"title,author,pages" is treated as a header and skipped.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, cfgFile)
			if err != nil {
				return err
			}
			logger.Setup(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
			if cfg.Backend == string(library.BackendMemory) {
				return errors.New("importing into the memory backend would discard every book on exit")
			}

			f, err := os.Open(filepath.Clean(args[0]))
			if err != nil {
				return err
			}
			defer f.Close()

			mgr, err := library.OpenLibraryManager(library.Backend(cfg.Backend), cfg.Path())
			if err != nil {
				return err
			}
			defer mgr.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Importing books from %s into the %s catalog...\n", args[0], cfg.Backend)
			imported, failed, err := importBooks(mgr, f, out)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "\nImport complete!\n")
			fmt.Fprintf(out, "Successfully imported: %d books\n", imported)
			fmt.Fprintf(out, "Errors: %d\n", failed)
			if imported > 0 {
				return printSummary(mgr, out)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	flags.String("backend", "", "storage backend: file or sqlite (default file)")
	flags.String("csv-path", config.DefaultCSVPath, "CSV file used by the file backend")
	flags.String("db-path", config.DefaultDBPath, "database file used by the sqlite backend")
	for key, flag := range map[string]string{"backend": "backend", "csv_path": "csv-path", "db_path": "db-path"} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}
	return cmd
}

// importBooks registers each row and reports it. Bad rows are counted and
// skipped; only storage failures and unreadable CSV abort the import.
func importBooks(mgr *library.LibraryManager, r io.Reader, out io.Writer) (imported, failed int, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true

	for row := 1; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return imported, failed, nil
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) && errors.Is(perr.Err, csv.ErrFieldCount) {
				fmt.Fprintf(out, "Row %d: ERROR - expected title,author,pages\n", row)
				failed++
				continue
			}
			return imported, failed, fmt.Errorf("read row %d: %w", row, err)
		}
		if row == 1 && strings.EqualFold(rec[0], "title") {
			continue
		}

		title, author := strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1])
		fmt.Fprintf(out, "Importing: %s by %s... ", title, author)

		pages, err := strconv.Atoi(strings.TrimSpace(rec[2]))
		if err != nil {
			fmt.Fprintf(out, "ERROR - page count %q is not a number\n", rec[2])
			failed++
			continue
		}

		book, err := mgr.RegisterBook(title, author, pages)
		if library.IsStorageError(err) {
			fmt.Fprintln(out, "ERROR")
			return imported, failed, err
		}
		if err != nil {
			fmt.Fprintf(out, "ERROR - %v\n", err)
			failed++
			continue
		}
		fmt.Fprintf(out, "SUCCESS (ID: %d)\n", book.ID)
		imported++
	}
}

func printSummary(mgr *library.LibraryManager, out io.Writer) error {
	books, err := mgr.SearchAllBooks()
	if err != nil {
		return fmt.Errorf("retrieve books: %w", err)
	}
	fmt.Fprintln(out, "\nCatalog:")
	fmt.Fprintf(out, "%-3s %-50s %-30s\n", "ID", "Title", "Author")
	fmt.Fprintln(out, strings.Repeat("-", 85))
	for _, b := range books {
		fmt.Fprintf(out, "%-3d %-50s %-30s\n", b.ID, library.Truncate(b.Title, 50), library.Truncate(b.Author, 30))
	}
	return nil
}
