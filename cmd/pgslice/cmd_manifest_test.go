package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Jacobbrewer1/pgslice/pkg/pgslice"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const testManifest = `header: eu fleet slice
dir: ./out
declarations:
  - dump:
      table: fleets
      condition: "region='eu'"
      type: insert
      register: fleets
  - dump:
      table: vehicles
      condition: "fleet_id IN ${fleets}"
      type: insert
      substitutions:
        vin: {null: true}
        owner: {literal: redacted}
  - sql: TRUNCATE sessions
  - include: ./extra_seed.sql
  - reset_sequences: [fleets, vehicles]
`

func TestLoadManifestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testManifest), 0o644))

	mf, err := loadManifestFile(path)
	require.NoError(t, err)

	require.Equal(t, "eu fleet slice", mf.Header)
	require.Equal(t, "./out", mf.Dir)
	require.Len(t, mf.Declarations, 5)
	require.Equal(t, "fleets", mf.Declarations[0].Dump.Table)
	require.Equal(t, "fleets", mf.Declarations[0].Dump.Register)
	require.Equal(t, []string{"fleets", "vehicles"}, mf.Declarations[4].ResetSequences)

	subs := mf.Declarations[1].Dump.Substitutions
	require.True(t, subs["vin"].Null, "bare null key must decode to the null form")
	require.NotNil(t, subs["owner"].Literal)
	require.Equal(t, "redacted", *subs["owner"].Literal)

	_, err = mf.build()
	require.NoError(t, err)
}

func TestManifestSub_UnmarshalYAML(t *testing.T) {
	literal := func(s string) *string { return &s }

	tests := []struct {
		name    string
		in      string
		want    manifestSub
		wantErr bool
	}{
		{
			name: "TestManifestSub_UnmarshalYAML_BareNullKey",
			in:   `col: {null: true}`,
			want: manifestSub{Null: true},
		},
		{
			name: "TestManifestSub_UnmarshalYAML_QuotedNullKey",
			in:   `col: {"null": true}`,
			want: manifestSub{Null: true},
		},
		{
			name: "TestManifestSub_UnmarshalYAML_LiteralMapping",
			in:   `col: {literal: redacted}`,
			want: manifestSub{Literal: literal("redacted")},
		},
		{
			name: "TestManifestSub_UnmarshalYAML_ScalarLiteral",
			in:   `col: redacted`,
			want: manifestSub{Literal: literal("redacted")},
		},
		{
			name: "TestManifestSub_UnmarshalYAML_ScalarNull",
			in:   `col: null`,
			want: manifestSub{Null: true},
		},
		{
			name: "TestManifestSub_UnmarshalYAML_Tilde",
			in:   `col: ~`,
			want: manifestSub{Null: true},
		},
		{
			name:    "TestManifestSub_UnmarshalYAML_UnknownKey",
			in:      `col: {replace: x}`,
			wantErr: true,
		},
		{
			name:    "TestManifestSub_UnmarshalYAML_Sequence",
			in:      `col: [a, b]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs := make(map[string]manifestSub)
			err := yaml.Unmarshal([]byte(tt.in), &subs)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, subs["col"], "decoded %q = %+v, want %+v", tt.in, subs["col"], tt.want)
		})
	}
}

func TestLoadManifestFile_Missing(t *testing.T) {
	_, err := loadManifestFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestManifestFile_Build_Errors(t *testing.T) {
	tests := []struct {
		name string
		mf   *manifestFile
	}{
		{
			name: "TestManifestFile_Build_EmptyDeclaration",
			mf:   &manifestFile{Declarations: []manifestDecl{{}}},
		},
		{
			name: "TestManifestFile_Build_NoTable",
			mf:   &manifestFile{Declarations: []manifestDecl{{Dump: &manifestDump{}}}},
		},
		{
			name: "TestManifestFile_Build_BadType",
			mf: &manifestFile{Declarations: []manifestDecl{{Dump: &manifestDump{
				Table: "a",
				Type:  "replace",
			}}}},
		},
		{
			name: "TestManifestFile_Build_EmptySubstitution",
			mf: &manifestFile{Declarations: []manifestDecl{{Dump: &manifestDump{
				Table:         "a",
				Substitutions: map[string]manifestSub{"col": {}},
			}}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.mf.build()
			require.Error(t, err)
		})
	}
}

func TestExpandRegisters(t *testing.T) {
	registers := map[string]pgslice.IDList{
		"fleets": {1, 2},
	}

	got := expandRegisters("fleet_id IN ${fleets}", registers)
	require.Equal(t, "fleet_id IN (1, 2)", got)

	// Unknown names stay untouched.
	got = expandRegisters("x IN ${other}", registers)
	require.Equal(t, "x IN ${other}", got)
}
