package pgslice

import (
	"fmt"
	"strconv"
	"time"
)

// Value is a single cell of a dumped row. It keeps the textual form of the
// value, whether the value was SQL NULL, and whether the value renders bare
// (numerics, booleans) or quoted (everything else) in the insert and update
// dialects.
type Value struct {
	text string
	null bool
	bare bool
}

// NewValue returns a quoted value.
func NewValue(s string) Value {
	return Value{text: s}
}

// BareValue returns a value that renders without quoting.
func BareValue(s string) Value {
	return Value{text: s, bare: true}
}

// NullValue returns the SQL NULL value.
func NullValue() Value {
	return Value{null: true}
}

// IsNull reports whether the value is SQL NULL.
func (v Value) IsNull() bool {
	return v.null
}

// String returns the textual form of the value. NULL values return the empty
// string; callers must check IsNull first.
func (v Value) String() string {
	return v.text
}

// pgTimestampFormat matches the timestamp rendering of pg_dump.
const pgTimestampFormat = "2006-01-02 15:04:05.999999-07"

// valueFromAny converts a database/sql scan result into a Value.
func valueFromAny(src any) Value {
	switch v := src.(type) {
	case nil:
		return NullValue()
	case []byte:
		return NewValue(string(v))
	case string:
		return NewValue(v)
	case int64:
		return BareValue(strconv.FormatInt(v, 10))
	case float64:
		return BareValue(strconv.FormatFloat(v, 'g', -1, 64))
	case bool:
		return BareValue(strconv.FormatBool(v))
	case time.Time:
		return NewValue(v.Format(pgTimestampFormat))
	default:
		return NewValue(fmt.Sprint(v))
	}
}

// Row is one tuple as returned by the query, keyed by column name.
type Row map[string]Value
