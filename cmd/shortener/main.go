// Command shortener is a non-interactive front-end for the mapping store:
// each invocation loads the table, runs one operation and exits.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/darkodi/shortstore/internal/config"
	"github.com/darkodi/shortstore/internal/logger"
	"github.com/darkodi/shortstore/internal/repository"
	"github.com/darkodi/shortstore/internal/service"
	"github.com/darkodi/shortstore/internal/validator"
)

var version = "dev" // set by the linker

func main() {
	a := &app{}
	if err := execute(newRootCmd(a), a); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}

// app is what every subcommand works against once PersistentPreRunE ran.
type app struct {
	cfg  *config.Config
	log  *logger.Logger
	repo repository.Backend
	svc  *service.URLService
}

// execute runs cmd and closes the backend afterwards, also when the
// command failed.
func execute(cmd *cobra.Command, a *app) error {
	err := cmd.Execute()
	if cerr := a.close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// newRootCmd builds a fresh command tree over a; tests call it for isolation.
func newRootCmd(a *app) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "shortener",
		Short: "Offline URL shortener backed by a single mapping file.",
		Long: `shortener turns long http/https URLs into short base62 codes.
Mappings live in url_mappings.csv by default (code,longUrl,id,createdAt)
and are rewritten atomically after every change.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cfgFile, cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./shortener.yaml)")
	flags.String("env", "development", `environment ("development", "production", "testing")`)
	flags.String("driver", config.DriverFile, "storage driver (file, sqlite, postgres, redis)")
	flags.String("path", "url_mappings.csv", "mapping file for the file driver")
	flags.String("dsn", "", "sqlite file or postgres connection string")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")

	cmd.AddCommand(
		newShortenCmd(a),
		newLookupCmd(a),
		newFindCmd(a),
		newListCmd(a),
		newDeleteCmd(a),
		newExportCmd(a),
		newStatsCmd(a),
	)

	return cmd
}

// open loads configuration, connects the backend and loads the table.
func (a *app) open(cfgFile string, cmd *cobra.Command) error {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	log := logger.New(logConfig(cfg, cmd.ErrOrStderr()))

	repo, err := repository.Open(cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	v := validator.NewURLValidator().
		WithMaxLength(cfg.Validation.MaxLength).
		WithBlockedDomains(cfg.Validation.BlockedDomains...).
		WithBlockPrivateIPs(cfg.Validation.BlockPrivateIPs)

	svc := service.NewURLService(repo, v, service.WithLogger(log))
	if err := svc.Load(); err != nil {
		_ = repo.Close()
		return err
	}

	a.cfg, a.log, a.repo, a.svc = cfg, log, repo, svc
	return nil
}

// logConfig forces JSON logs in production so they stay machine readable.
func logConfig(cfg *config.Config, out io.Writer) logger.Config {
	lc := cfg.Log
	lc.Output = out
	if cfg.IsProduction() {
		lc.Format = "json"
	}
	return lc
}

func (a *app) close() error {
	if a.repo == nil {
		return nil
	}
	err := a.repo.Close()
	a.repo = nil
	return err
}
