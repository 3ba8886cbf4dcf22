package main

import (
	"fmt"
	"io"
	"os"

	"library-catalog/config"
	"library-catalog/library"
	"library-catalog/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// app carries what every command needs: configuration and console streams.
type app struct {
	v           *viper.Viper
	cfgFile     string
	cfg         *config.Config
	in          io.Reader
	interactive bool // stdin is a terminal
}

func main() {
	a := &app{
		v:           config.New(),
		in:          os.Stdin,
		interactive: term.IsTerminal(int(os.Stdin.Fd())),
	}
	if err := a.rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "library",
		Short: "Manage a small library catalog from the console",
		Long: `library registers books, searches them by title and tracks each book
through borrow, return, shelve and lost. Run without a subcommand for the
interactive menu.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.v, a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			logger.Setup(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runShell(cmd.OutOrStdout())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (yaml, json or toml)")
	flags.String("backend", "", "storage backend: memory, file or sqlite (default file)")
	flags.String("csv-path", config.DefaultCSVPath, "CSV file used by the file backend")
	flags.String("db-path", config.DefaultDBPath, "database file used by the sqlite backend")
	flags.String("log-level", config.DefaultLogLevel, "log level: debug, info, warn or error")
	flags.String("log-format", config.DefaultLogFormat, "log format: text or json")

	for key, flag := range map[string]string{
		"backend":    "backend",
		"csv_path":   "csv-path",
		"db_path":    "db-path",
		"log_level":  "log-level",
		"log_format": "log-format",
	} {
		// Lookup cannot fail for flags registered just above.
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(a.catalogCommands()...)
	return root
}

// openManager opens the configured backend.
func (a *app) openManager() (*library.LibraryManager, error) {
	mgr, err := library.OpenLibraryManager(library.Backend(a.cfg.Backend), a.cfg.Path())
	if err != nil {
		return nil, fmt.Errorf("open %s catalog: %w", a.cfg.Backend, err)
	}
	return mgr, nil
}
