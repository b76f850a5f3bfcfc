package pgslice

import (
	"fmt"
)

// DumpType selects the SQL dialect a dump is rendered in.
type DumpType string

const (
	// TypeCopy renders a PostgreSQL COPY ... FROM stdin block. This is the
	// default.
	TypeCopy DumpType = "copy"

	// TypeInsert renders a single multi-row INSERT statement.
	TypeInsert DumpType = "insert"

	// TypeInserts renders one INSERT statement per row.
	TypeInserts DumpType = "inserts"

	// TypeUpdates renders one UPDATE statement per row, keyed on the id
	// column.
	TypeUpdates DumpType = "updates"
)

// TransactionMode controls the transaction wrapping of a dump.
type TransactionMode string

const (
	// TransactionNone emits no transaction statements.
	TransactionNone TransactionMode = ""

	// TransactionBegin emits a BEGIN with no matching COMMIT, leaving the
	// transaction open for manual multi-step testing.
	TransactionBegin TransactionMode = "begin"

	// TransactionFull wraps the dump in BEGIN and COMMIT.
	TransactionFull TransactionMode = "full"
)

// Options configures a single dump.
type Options struct {
	// Type is the dump dialect. Defaults to TypeCopy.
	Type DumpType

	// OmitIDs drops the id column from the output. Incompatible with
	// TypeUpdates.
	OmitIDs bool

	// Columns is a whitelist of columns to include. The id column is always
	// implied.
	Columns []string

	// OmitColumns is a blacklist of columns to exclude, applied after the
	// whitelist.
	OmitColumns []string

	// Substitutions rewrites column values before projection.
	Substitutions map[string]Substitution

	// DeleteFirst prefixes the dump with a DELETE covering the dumped ids.
	// Incompatible with TypeUpdates.
	DeleteFirst bool

	// Transaction wraps the dump in transaction statements.
	Transaction TransactionMode
}

// Validate normalizes the options and reports the first conflict found. It is
// always called before any query is executed.
func (o *Options) Validate() error {
	if o.Type == "" {
		o.Type = TypeCopy
	}

	switch o.Type {
	case TypeCopy, TypeInsert, TypeInserts, TypeUpdates:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDumpType, o.Type)
	}

	switch o.Transaction {
	case TransactionNone, TransactionBegin, TransactionFull:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTransactionMode, o.Transaction)
	}

	if o.OmitIDs && o.Type == TypeUpdates {
		return ErrOmitIDsWithUpdates
	}

	if o.DeleteFirst && o.Type == TypeUpdates {
		return ErrDeleteFirstWithUpdates
	}

	return nil
}
