package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mattn/go-isatty"

	"github.com/mgilsanz/presencia/internal/cli"
	"github.com/mgilsanz/presencia/internal/domain"
	"github.com/mgilsanz/presencia/internal/history"
	"github.com/mgilsanz/presencia/internal/location"
	"github.com/mgilsanz/presencia/internal/odoo"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Determine journal path: env var or default ~/.presencia/presencia.db
	dbPath := os.Getenv("PRESENCIA_DB_PATH")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".presencia", "presencia.db")
	}

	database, err := history.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening punch journal: %w", err)
	}
	defer database.Close()

	// Wire the ERP client with optional call logging.
	cfg := odoo.LoadConfig()
	var observer odoo.Observer = odoo.NoopObserver{}
	if cfg.LogCalls {
		observer = odoo.NewLogObserver(os.Stderr)
	}
	client := odoo.NewClient(cfg, observer)

	gate := location.NewGate(siteProvider(), location.GateTimeout())

	app := &cli.App{
		Client:  client,
		Gate:    gate,
		Journal: history.NewStore(database, 0),
		Version: version,
	}

	// Detect interactive terminal; the kiosk refuses to run without one.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}

// siteProvider builds the location provider for this kiosk. Site
// coordinates come from the environment; an unconfigured kiosk gets a
// provider that fails every acquisition with an actionable message.
func siteProvider() location.Provider {
	lat, latErr := strconv.ParseFloat(os.Getenv("PRESENCIA_SITE_LAT"), 64)
	long, longErr := strconv.ParseFloat(os.Getenv("PRESENCIA_SITE_LONG"), 64)
	if latErr != nil || longErr != nil {
		return unconfiguredProvider{}
	}
	return location.FixedProvider{
		Coordinates: domain.Coordinates{Latitude: lat, Longitude: long},
	}
}

type unconfiguredProvider struct{}

func (unconfiguredProvider) AcquireFix(context.Context) (domain.Coordinates, error) {
	return domain.Coordinates{}, errors.New("site coordinates not configured; set PRESENCIA_SITE_LAT and PRESENCIA_SITE_LONG")
}
