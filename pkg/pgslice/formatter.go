package pgslice

import (
	"fmt"
	"strings"
)

// Formatter renders a table's rows as one SQL dialect. Implementations are
// stateless.
type Formatter interface {
	// Escape renders a single value as SQL-safe text for this dialect.
	Escape(v Value) string

	// Format renders the full dump body. Every value in rows must already
	// have been passed through Escape.
	Format(table string, columns []string, rows [][]string) string
}

// NewFormatter returns the formatter for the given dump type.
func NewFormatter(t DumpType) (Formatter, error) {
	switch t {
	case TypeCopy:
		return copyFormatter{}, nil
	case TypeInsert:
		return insertFormatter{}, nil
	case TypeInserts:
		return insertsFormatter{}, nil
	case TypeUpdates:
		return updatesFormatter{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDumpType, t)
	}
}

// copyEscaper escapes the characters COPY text format treats specially.
var copyEscaper = strings.NewReplacer(
	`\`, `\\`,
	"\r", `\r`,
	"\n", `\n`,
	"\t", `\t`,
)

type copyFormatter struct{}

func (copyFormatter) Escape(v Value) string {
	if v.IsNull() {
		return `\N`
	}
	return copyEscaper.Replace(v.String())
}

func (copyFormatter) Format(table string, columns []string, rows [][]string) string {
	b := new(strings.Builder)
	fmt.Fprintf(b, "COPY %s (%s) FROM stdin;\n", table, strings.Join(columns, ", "))
	for _, r := range rows {
		b.WriteString(strings.Join(r, "\t"))
		b.WriteByte('\n')
	}
	b.WriteString("\\.\n")
	return b.String()
}

// quoteEscaper is the shared escaping rule of the insert and update dialects:
// NULL stays the NULL keyword, bare values stay bare, everything else is
// single-quoted with embedded quotes doubled.
type quoteEscaper struct{}

func (quoteEscaper) Escape(v Value) string {
	switch {
	case v.IsNull():
		return "NULL"
	case v.bare:
		return v.String()
	default:
		return "'" + strings.ReplaceAll(v.String(), "'", "''") + "'"
	}
}

type insertFormatter struct {
	quoteEscaper
}

func (insertFormatter) Format(table string, columns []string, rows [][]string) string {
	tuples := make([]string, len(rows))
	for i, r := range rows {
		tuples[i] = "(" + strings.Join(r, ",") + ")"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s;\n",
		table, strings.Join(columns, ", "), strings.Join(tuples, ", "))
}

type insertsFormatter struct {
	quoteEscaper
}

func (insertsFormatter) Format(table string, columns []string, rows [][]string) string {
	b := new(strings.Builder)
	cols := strings.Join(columns, ", ")
	for _, r := range rows {
		fmt.Fprintf(b, "INSERT INTO %s (%s) VALUES (%s);\n", table, cols, strings.Join(r, ","))
	}
	return b.String()
}

type updatesFormatter struct {
	quoteEscaper
}

// Format assumes position 0 of every row is the id column, per the column
// ordering rule. It is never assigned, only used as the WHERE key.
func (updatesFormatter) Format(table string, columns []string, rows [][]string) string {
	b := new(strings.Builder)
	for _, r := range rows {
		sets := make([]string, 0, len(columns)-1)
		for i := 1; i < len(columns); i++ {
			sets = append(sets, columns[i]+"="+r[i])
		}
		fmt.Fprintf(b, "UPDATE %s SET %s WHERE %s=%s;\n",
			table, strings.Join(sets, ", "), columns[0], r[0])
	}
	return b.String()
}
