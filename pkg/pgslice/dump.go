package pgslice

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Jacobbrewer1/pgslice/pkg/dataaccess"
	"github.com/Jacobbrewer1/pgslice/pkg/logging"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
)

// Slicer extracts row slices from a database and renders them as replayable
// SQL.
type Slicer struct {
	// db is the database to slice.
	db *sqlx.DB

	// store writes the per-table dump files of a manifest run.
	store dataaccess.Storage
}

// NewSlicer creates a new slicer writing manifest files to the local
// filesystem.
func NewSlicer(db *sqlx.DB) *Slicer {
	return &Slicer{
		db:    db,
		store: dataaccess.NewLocal(),
	}
}

// NewSlicerWithStorage creates a new slicer writing manifest files through the
// given storage.
func NewSlicerWithStorage(db *sqlx.DB, store dataaccess.Storage) *Slicer {
	return &Slicer{
		db:    db,
		store: store,
	}
}

// IDList is the ordered list of row ids extracted by a dump.
type IDList []int

// String renders the ids as a parenthesized, comma-joined list suitable for a
// SQL IN clause.
func (l IDList) String() string {
	parts := make([]string, len(l))
	for i, id := range l {
		parts[i] = strconv.Itoa(id)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Result is the outcome of one dump. A nil Result (with a nil error) means the
// condition matched no rows and no dump was produced; that is a distinct state
// from an empty SQL string, and callers must check it explicitly.
type Result struct {
	// SQL is the assembled dump text.
	SQL string

	// IDs holds the id of every dumped row, in row order.
	IDs IDList
}

// Dump extracts the rows of table matching condition and renders them per the
// options. The condition is a raw SQL fragment under the caller's control and
// may include an ORDER BY; no injection protection is applied.
func (s *Slicer) Dump(table, condition string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = new(Options)
	}

	// Validation failures abort before any query runs.
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dump options: %w", err)
	}

	t := prometheus.NewTimer(DumpLatency.With(prometheus.Labels{"table": table}))
	defer t.ObserveDuration()

	rows, err := s.fetch(table, condition)
	if err != nil {
		return nil, fmt.Errorf("error querying %s: %w", table, err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	ids, err := extractIDs(rows)
	if err != nil {
		return nil, fmt.Errorf("error extracting ids from %s: %w", table, err)
	}

	cols := columnSet(rows[0], opts)

	// Substitute before projection so a substituted column can still be
	// filtered out by the column set.
	applySubstitutions(rows, opts.Substitutions)

	formatter, err := NewFormatter(opts.Type)
	if err != nil {
		return nil, err
	}

	matrix := make([][]string, len(rows))
	for i, r := range rows {
		line := make([]string, len(cols))
		for j, c := range cols {
			line[j] = formatter.Escape(r[c])
		}
		matrix[i] = line
	}

	b := new(strings.Builder)
	if opts.Transaction != TransactionNone {
		b.WriteString("BEGIN;\n")
	}
	if opts.DeleteFirst {
		fmt.Fprintf(b, "DELETE FROM %s WHERE %s IN %s;\n", table, idColumn, ids)
	}
	b.WriteString(formatter.Format(table, cols, matrix))
	if opts.Transaction == TransactionFull {
		// Begin-only mode emits no matching COMMIT so a replay can be
		// inspected and rolled back by hand.
		b.WriteString("COMMIT;\n")
	}

	DumpRows.With(prometheus.Labels{"table": table}).Add(float64(len(rows)))

	return &Result{
		SQL: b.String(),
		IDs: ids,
	}, nil
}

// fetch runs SELECT * against the table and scans every row into a Row map.
func (s *Slicer) fetch(table, condition string) ([]Row, error) {
	sqlStmt := fmt.Sprintf("SELECT * FROM %s WHERE %s", table, condition)

	rows, err := s.db.Query(sqlStmt)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			slog.Warn("Error closing rows", slog.String(logging.KeyError, err.Error()))
		}
	}()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("error getting columns: %w", err)
	}

	out := make([]Row, 0)
	for rows.Next() {
		data := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range data {
			pointers[i] = &data[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("error scanning: %w", err)
		}

		r := make(Row, len(columns))
		for i, c := range columns {
			r[c] = valueFromAny(data[i])
		}
		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading rows: %w", err)
	}

	return out, nil
}

// extractIDs collects the id of every row, in row order. Every row must carry
// an id coercible to an integer.
func extractIDs(rows []Row) (IDList, error) {
	ids := make(IDList, 0, len(rows))
	for _, r := range rows {
		v, ok := r[idColumn]
		if !ok || v.IsNull() {
			return nil, &CoercionError{Column: idColumn, Value: "<missing>"}
		}

		id, err := strconv.Atoi(strings.TrimSpace(v.String()))
		if err != nil {
			return nil, &CoercionError{Column: idColumn, Value: v.String()}
		}

		ids = append(ids, id)
	}
	return ids, nil
}
