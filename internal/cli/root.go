// Package cli implements the recap CLI commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jiho-dev/recap-archive/internal/config"
	"github.com/jiho-dev/recap-archive/internal/journal"
	"github.com/jiho-dev/recap-archive/internal/store"
	"github.com/jiho-dev/recap-archive/internal/syncer"
)

var dbPath string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "recap",
	Short: "Personal media journal with monthly recaps",
	Long:  "A media journal organized into monthly buckets. SQLite-backed, single binary. Run `recap serve` for the web UI or use the subcommands directly.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $RECAP_DB_PATH or ~/.recap-archive/recap.db)")
}

func loadConfig() *config.Config {
	cfg, err := config.New()
	if err != nil {
		exitErr("config", err)
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg
}

func cliLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.WarnLevel)
}

// app bundles the store, the debounced writer and the journal for
// one-shot commands.
type app struct {
	cfg     *config.Config
	store   *store.SQLiteStore
	sync    *syncer.Syncer
	journal *journal.Journal
}

func openApp(ctx context.Context) *app {
	cfg := loadConfig()
	log := cliLogger()

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		exitErr("open store", err)
	}
	sy := syncer.New(st, time.Duration(cfg.DebounceMs)*time.Millisecond, log)
	j := journal.New(st, sy, log)
	if err := j.Load(ctx); err != nil {
		st.Close()
		exitErr("load journal", err)
	}
	return &app{cfg: cfg, store: st, sync: sy, journal: j}
}

// close flushes any pending snapshot write before releasing the store.
// One-shot commands exit well inside the debounce window, so skipping
// the flush would drop the edit they just made.
func (a *app) close() {
	if err := a.sync.Flush(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: flush: %v\n", err)
	}
	a.sync.Stop()
	a.store.Close()
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
