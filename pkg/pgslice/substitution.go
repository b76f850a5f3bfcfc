package pgslice

// Substitution rewrites a column's value at dump time, independently of the
// stored value. Substituted values still flow through formatter escaping.
type Substitution interface {
	apply(v Value) Value
}

type literalSub struct {
	v Value
}

func (s literalSub) apply(Value) Value {
	return s.v
}

// Literal replaces the column's value with the given text.
func Literal(s string) Substitution {
	return literalSub{v: NewValue(s)}
}

// Null replaces the column's value with SQL NULL.
func Null() Substitution {
	return literalSub{v: NullValue()}
}

type transformSub struct {
	fn func(Value) Value
}

func (s transformSub) apply(v Value) Value {
	return s.fn(v)
}

// Transform replaces the column's value with the result of fn applied to the
// original value.
func Transform(fn func(Value) Value) Substitution {
	return transformSub{fn: fn}
}

// applySubstitutions rewrites the rows in place. Substitutions for columns a
// row does not carry are ignored.
func applySubstitutions(rows []Row, subs map[string]Substitution) {
	if len(subs) == 0 {
		return
	}

	for _, r := range rows {
		for col, sub := range subs {
			if v, ok := r[col]; ok {
				r[col] = sub.apply(v)
			}
		}
	}
}
