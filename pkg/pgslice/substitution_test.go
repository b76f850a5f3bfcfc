package pgslice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplySubstitutions(t *testing.T) {
	rows := []Row{
		{
			"id":    BareValue("1"),
			"email": NewValue("one@example.com"),
			"name":  NewValue("One"),
		},
		{
			"id":    BareValue("2"),
			"email": NewValue("two@example.com"),
			"name":  NewValue("Two"),
		},
	}

	applySubstitutions(rows, map[string]Substitution{
		"email": Literal("redacted@example.com"),
		"name":  Transform(func(v Value) Value { return NewValue(strings.ToUpper(v.String())) }),
		"token": Null(),
	})

	for _, r := range rows {
		require.Equal(t, "redacted@example.com", r["email"].String())
	}
	require.Equal(t, "ONE", rows[0]["name"].String())
	require.Equal(t, "TWO", rows[1]["name"].String())

	// Substitutions for absent columns add nothing.
	_, ok := rows[0]["token"]
	require.False(t, ok)
}

func TestSubstitution_Null(t *testing.T) {
	got := Null().apply(NewValue("anything"))
	require.True(t, got.IsNull())
}

func TestApplySubstitutions_Empty(t *testing.T) {
	rows := []Row{{"id": BareValue("1")}}
	applySubstitutions(rows, nil)
	require.Equal(t, "1", rows[0]["id"].String())
}
