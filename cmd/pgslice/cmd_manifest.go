package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Jacobbrewer1/pgslice/pkg/logging"
	"github.com/Jacobbrewer1/pgslice/pkg/pgslice"
	"github.com/google/subcommands"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"gopkg.in/yaml.v3"
)

type manifestCmd struct {
	// file is the YAML manifest to run.
	file string

	// dir overrides the target directory declared in the manifest.
	dir string

	conn connFlags
}

func (m *manifestCmd) Name() string {
	return "manifest"
}

func (m *manifestCmd) Synopsis() string {
	return "Runs a YAML manifest of dump declarations"
}

func (m *manifestCmd) Usage() string {
	return `manifest -file <manifest.yaml>:
  Runs the manifest's declarations in order and writes the restore script.
`
}

func (m *manifestCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&m.file, "file", "", "The YAML manifest file to run")
	f.StringVar(&m.dir, "dir", "", "The target directory, overriding the manifest's dir")
	m.conn.register(f)
}

func (m *manifestCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := initLogging(); err != nil {
		slog.Error("error initializing logging", slog.String(logging.KeyError, err.Error()))
		return subcommands.ExitFailure
	}

	if m.file == "" {
		slog.Error("no manifest file provided")
		f.Usage()
		return subcommands.ExitUsageError
	}

	mf, err := loadManifestFile(m.file)
	if err != nil {
		slog.Error("error loading manifest", slog.String(logging.KeyError, err.Error()))
		return subcommands.ExitFailure
	}

	dir := mf.Dir
	if m.dir != "" {
		dir = m.dir
	}
	if dir == "" {
		slog.Error("no target directory declared in the manifest or via -dir")
		return subcommands.ExitUsageError
	}

	manifest, err := mf.build()
	if err != nil {
		slog.Error("error building manifest", slog.String(logging.KeyError, err.Error()))
		return subcommands.ExitFailure
	}

	connStr, err := m.conn.connectionStr()
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

	if err := pgslice.NewSlicer(db).RunManifest(ctx, mf.Header, dir, manifest); err != nil {
		slog.Error("error running manifest", slog.String(logging.KeyError, err.Error()))
		return subcommands.ExitFailure
	}

	slog.Info("Manifest complete", slog.String(logging.KeyManifest, dir))
	return subcommands.ExitSuccess
}

// manifestFile is the YAML shape of a manifest.
type manifestFile struct {
	Header       string         `yaml:"header"`
	Dir          string         `yaml:"dir"`
	Declarations []manifestDecl `yaml:"declarations"`
}

// manifestDecl is one declaration; exactly one field may be set.
type manifestDecl struct {
	Dump           *manifestDump `yaml:"dump"`
	SQL            string        `yaml:"sql"`
	Include        string        `yaml:"include"`
	ResetSequences []string      `yaml:"reset_sequences"`
}

type manifestDump struct {
	Table         string                 `yaml:"table"`
	As            string                 `yaml:"as"`
	Condition     string                 `yaml:"condition"`
	Type          string                 `yaml:"type"`
	OmitIDs       bool                   `yaml:"omit_ids"`
	Columns       []string               `yaml:"columns"`
	OmitColumns   []string               `yaml:"omit_columns"`
	DeleteFirst   bool                   `yaml:"delete_first"`
	Transaction   string                 `yaml:"transaction"`
	Substitutions map[string]manifestSub `yaml:"substitutions"`

	// Register names the dump's id list so later conditions can reference it
	// as ${name}.
	Register string `yaml:"register"`
}

type manifestSub struct {
	Literal *string
	Null    bool
}

// UnmarshalYAML accepts the mapping forms {literal: x} and {null: true} plus
// the scalar shorthands `col: x` and `col: null`. The mapping form needs
// custom decoding because a bare null key resolves to the YAML null scalar,
// not the string "null", so struct tags never match it.
func (s *manifestSub) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			s.Null = true
			return nil
		}
		lit := value.Value
		s.Literal = &lit
		return nil
	case yaml.MappingNode:
		for i := 0; i+1 < len(value.Content); i += 2 {
			k, v := value.Content[i], value.Content[i+1]

			key := k.Value
			if k.Tag == "!!null" {
				key = "null"
			}

			switch key {
			case "literal":
				lit := v.Value
				s.Literal = &lit
			case "null":
				if err := v.Decode(&s.Null); err != nil {
					return fmt.Errorf("error decoding null flag: %w", err)
				}
			default:
				return fmt.Errorf("unknown substitution key %q", key)
			}
		}
		return nil
	default:
		return errors.New("substitution must be a scalar or a mapping")
	}
}

func loadManifestFile(path string) (*manifestFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading manifest file: %w", err)
	}

	mf := new(manifestFile)
	if err := yaml.Unmarshal(raw, mf); err != nil {
		return nil, fmt.Errorf("error parsing manifest file: %w", err)
	}

	return mf, nil
}

// build converts the YAML declarations into a manifest. Registered id lists
// are filled in at run time, so ${name} references resolve to the ids of the
// earlier dump that registered them.
func (mf *manifestFile) build() (*pgslice.Manifest, error) {
	registers := make(map[string]pgslice.IDList)

	m := pgslice.NewManifest()
	for i, d := range mf.Declarations {
		switch {
		case d.Dump != nil:
			decl, err := d.Dump.toDecl(registers)
			if err != nil {
				return nil, fmt.Errorf("declaration %d: %w", i, err)
			}
			m.Dump(*decl)
		case d.SQL != "":
			m.SQL(d.SQL)
		case d.Include != "":
			m.Include(d.Include)
		case len(d.ResetSequences) > 0:
			m.ResetSequences(d.ResetSequences...)
		default:
			return nil, fmt.Errorf("declaration %d is empty", i)
		}
	}

	return m, nil
}

func (d *manifestDump) toDecl(registers map[string]pgslice.IDList) (*pgslice.DumpDecl, error) {
	if d.Table == "" {
		return nil, errors.New("dump declaration has no table")
	}

	subs := make(map[string]pgslice.Substitution, len(d.Substitutions))
	for col, s := range d.Substitutions {
		switch {
		case s.Null:
			subs[col] = pgslice.Null()
		case s.Literal != nil:
			subs[col] = pgslice.Literal(*s.Literal)
		default:
			return nil, fmt.Errorf("substitution for %s has neither literal nor null", col)
		}
	}

	opts := &pgslice.Options{
		Type:          pgslice.DumpType(d.Type),
		OmitIDs:       d.OmitIDs,
		Columns:       d.Columns,
		OmitColumns:   d.OmitColumns,
		Substitutions: subs,
		DeleteFirst:   d.DeleteFirst,
		Transaction:   pgslice.TransactionMode(d.Transaction),
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	decl := &pgslice.DumpDecl{
		Table:   d.Table,
		As:      d.As,
		Options: opts,
	}

	if strings.Contains(d.Condition, "${") {
		condition := d.Condition
		decl.ConditionFunc = func() string {
			return expandRegisters(condition, registers)
		}
	} else {
		decl.Condition = d.Condition
	}

	if d.Register != "" {
		name := d.Register
		decl.OnIDs = func(ids pgslice.IDList) {
			registers[name] = ids
		}
	}

	return decl, nil
}

func expandRegisters(condition string, registers map[string]pgslice.IDList) string {
	for name, ids := range registers {
		condition = strings.ReplaceAll(condition, "${"+name+"}", ids.String())
	}
	return condition
}
