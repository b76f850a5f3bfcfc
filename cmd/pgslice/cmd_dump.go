package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Jacobbrewer1/pgslice/pkg/dataaccess"
	"github.com/Jacobbrewer1/pgslice/pkg/logging"
	"github.com/Jacobbrewer1/pgslice/pkg/pgslice"
	"github.com/google/subcommands"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type dumpCmd struct {
	// Dialect flag group. Copy is the default when none are set.
	insert  bool
	inserts bool
	updates bool

	// Transaction flag group.
	transaction      bool
	beginTransaction bool

	omitID        bool
	deleteFirst   bool
	columns       string
	omitColumns   string
	substitutions string

	// out is the file to write to instead of stdout.
	out string

	// gcs is the bucket to mirror the dump to. Setting this will enable GCS.
	gcs string

	conn connFlags
}

func (d *dumpCmd) Name() string {
	return "dump"
}

func (d *dumpCmd) Synopsis() string {
	return "Dumps a slice of a table as replayable SQL"
}

func (d *dumpCmd) Usage() string {
	return `dump [flags] <table> <condition>:
  Dumps the rows of <table> matching <condition> as replayable SQL.
`
}

func (d *dumpCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&d.insert, "insert", false, "Render one multi-row INSERT statement instead of COPY")
	f.BoolVar(&d.inserts, "inserts", false, "Render one INSERT statement per row instead of COPY")
	f.BoolVar(&d.updates, "updates", false, "Render one UPDATE statement per row instead of COPY")
	f.BoolVar(&d.transaction, "transaction", false, "Wrap the dump in BEGIN and COMMIT")
	f.BoolVar(&d.beginTransaction, "begin-transaction", false, "Prefix the dump with BEGIN only, with no COMMIT")
	f.BoolVar(&d.omitID, "omit-id", false, "Drop the id column from the output")
	f.BoolVar(&d.deleteFirst, "delete-first", false, "Prefix the dump with a DELETE covering the dumped ids")
	f.StringVar(&d.columns, "columns", "", "Comma-separated whitelist of columns to include (id is implied)")
	f.StringVar(&d.omitColumns, "omit-columns", "", "Comma-separated blacklist of columns to exclude")
	f.StringVar(&d.substitutions, "substitutions", "", "Comma-separated key=value literal substitutions")
	f.StringVar(&d.out, "out", "", "The file to write the dump to instead of stdout")
	f.StringVar(&d.gcs, "gcs", "", "The GCS bucket to mirror the dump to (Requires GCS_CREDENTIALS environment variable to be set)")
	d.conn.register(f)
}

func (d *dumpCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := initLogging(); err != nil {
		slog.Error("error initializing logging", slog.String(logging.KeyError, err.Error()))
		return subcommands.ExitFailure
	}

	if f.NArg() != 2 {
		slog.Error("expected exactly two arguments: table and condition")
		f.Usage()
		return subcommands.ExitUsageError
	}
	table, condition := f.Arg(0), f.Arg(1)

	opts, err := d.options()
	if err != nil {
		slog.Error("conflicting flags", slog.String(logging.KeyError, err.Error()))
		f.Usage()
		return subcommands.ExitUsageError
	}

	connStr, err := d.conn.connectionStr()
	if err != nil {
		slog.Error("error resolving database connection", slog.String(logging.KeyError, err.Error()))
		return subcommands.ExitUsageError
	}

	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		slog.Error("error connecting to database", slog.String(logging.KeyError, err.Error()))
		return subcommands.ExitFailure
	}

	defer func() {
		if err := db.Close(); err != nil {
			slog.Warn("error closing database", slog.String(logging.KeyError, err.Error()))
		}
	}()

	res, err := pgslice.NewSlicer(db).Dump(table, condition, opts)
	if err != nil {
		slog.Error("error creating dump", slog.String(logging.KeyError, err.Error()))
		return subcommands.ExitFailure
	}

	if res == nil {
		slog.Error("no rows matched the condition, no dump produced",
			slog.String(logging.KeyTable, table),
			slog.String(logging.KeyCondition, condition))
		return exitNoRows
	}

	if err := d.write(ctx, table, res.SQL); err != nil {
		slog.Error("error writing dump", slog.String(logging.KeyError, err.Error()))
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}

// options converts the flag groups into dump options, rejecting conflicting
// combinations before any query runs.
func (d *dumpCmd) options() (*pgslice.Options, error) {
	dumpType := pgslice.TypeCopy
	set := 0
	if d.insert {
		dumpType = pgslice.TypeInsert
		set++
	}
	if d.inserts {
		dumpType = pgslice.TypeInserts
		set++
	}
	if d.updates {
		dumpType = pgslice.TypeUpdates
		set++
	}
	if set > 1 {
		return nil, fmt.Errorf("at most one of -insert, -inserts and -updates may be set")
	}

	if d.transaction && d.beginTransaction {
		return nil, fmt.Errorf("-transaction and -begin-transaction are mutually exclusive")
	}

	transaction := pgslice.TransactionNone
	switch {
	case d.transaction:
		transaction = pgslice.TransactionFull
	case d.beginTransaction:
		transaction = pgslice.TransactionBegin
	}

	opts := &pgslice.Options{
		Type:          dumpType,
		OmitIDs:       d.omitID,
		Columns:       splitList(d.columns),
		OmitColumns:   splitList(d.omitColumns),
		Substitutions: parseSubstitutions(d.substitutions),
		DeleteFirst:   d.deleteFirst,
		Transaction:   transaction,
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return opts, nil
}

func (d *dumpCmd) write(ctx context.Context, table, sqlText string) error {
	switch {
	case d.out != "":
		store := dataaccess.NewLocal()
		if err := store.SaveFile(ctx, d.out, []byte(sqlText)); err != nil {
			return fmt.Errorf("error writing dump file: %w", err)
		}
	default:
		if _, err := fmt.Fprint(os.Stdout, sqlText); err != nil {
			return fmt.Errorf("error writing dump to stdout: %w", err)
		}
	}

	if d.gcs == "" {
		return nil
	}

	store, err := dataaccess.ConnectGCS(ctx, d.gcs)
	if err != nil {
		return fmt.Errorf("error connecting to GCS: %w", err)
	}

	if err := store.SaveFile(ctx, fmt.Sprintf("slices/%s.sql", table), []byte(sqlText)); err != nil {
		return fmt.Errorf("error mirroring dump to GCS: %w", err)
	}

	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseSubstitutions parses key=value pairs into literal substitutions. A
// value of the bare word null becomes SQL NULL.
func parseSubstitutions(s string) map[string]pgslice.Substitution {
	if s == "" {
		return nil
	}

	subs := make(map[string]pgslice.Substitution)
	for _, pair := range strings.Split(s, ",") {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}

		key = strings.TrimSpace(key)
		if value == "null" {
			subs[key] = pgslice.Null()
			continue
		}
		subs[key] = pgslice.Literal(value)
	}
	return subs
}
