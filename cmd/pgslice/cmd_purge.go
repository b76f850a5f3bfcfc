package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jacobbrewer1/pgslice/pkg/dataaccess"
	"github.com/Jacobbrewer1/pgslice/pkg/logging"
	"github.com/google/subcommands"
)

type purgeCmd struct {
	// days is the number of days to keep slice files for. If 0 (or not set),
	// nothing is purged.
	days int

	// gcs is the name of the Google Cloud Storage bucket to purge. Setting
	// this will enable GCS; otherwise the working directory is purged.
	gcs string
}

func (p *purgeCmd) Name() string {
	return "purge"
}

func (p *purgeCmd) Synopsis() string {
	return "Purge old slice files"
}

func (p *purgeCmd) Usage() string {
	return `purge:
  Purge generated slice files older than the retention period.
`
}

func (p *purgeCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&p.days, "days", 0, "The number of days to keep slice files for. If 0 (or not set), nothing is purged.")
	f.StringVar(&p.gcs, "gcs", "", "The name of the Google Cloud Storage bucket to purge. (Setting this will enable GCS; Requires GCS_CREDENTIALS environment variable to be set)")
}

func (p *purgeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := initLogging(); err != nil {
		slog.Error("error initializing logging", slog.String(logging.KeyError, err.Error()))
		return subcommands.ExitFailure
	}

	var store dataaccess.Storage
	switch {
	case p.gcs != "":
		sc, err := dataaccess.ConnectGCS(ctx, p.gcs)
		if err != nil {
			slog.Error("error connecting to GCS", slog.String(logging.KeyError, err.Error()))
			return subcommands.ExitFailure
		}
		store = sc
	default:
		store = dataaccess.NewLocal()
	}

	if err := purgeSlices(ctx, store, p.days); err != nil {
		slog.Error("error purging slice files", slog.String(logging.KeyError, err.Error()))
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}

// purgeFrom is the cutoff for a retention of the given days, snapped to
// midnight so a day's files expire together.
func purgeFrom(days int, now time.Time) time.Time {
	from := now.UTC().AddDate(0, 0, -days)
	return time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
}

func purgeSlices(ctx context.Context, store dataaccess.Storage, days int) error {
	if days == 0 {
		slog.Debug("Days to purge is 0, nothing will be purged")
		return nil
	}

	count, err := store.Purge(ctx, purgeFrom(days, time.Now()))
	if err != nil {
		return fmt.Errorf("error purging: %w", err)
	}

	slog.Info(fmt.Sprintf("Purged %d slice files", count))
	return nil
}
