package pgslice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Jacobbrewer1/pgslice/pkg/logging"
)

// MasterFile is the name of the generated master script that sequences a
// manifest's dumps.
const MasterFile = "restore.sql"

// DumpDecl declares one dump inside a manifest.
type DumpDecl struct {
	// Table is the table to dump.
	Table string

	// As overrides the output file name. Defaults to the table name.
	As string

	// Condition is the raw SQL condition selecting the rows.
	Condition string

	// ConditionFunc, when set, is evaluated at run time instead of Condition.
	// It lets a declaration reference the ids of an earlier dump.
	ConditionFunc func() string

	// Options configures the dump.
	Options *Options

	// OnIDs, when set, receives the ids of the dumped rows. It is not invoked
	// when the condition matched no rows.
	OnIDs func(ids IDList)
}

type declKind int

const (
	declDump declKind = iota
	declSQL
	declInclude
	declResetSequences
)

type declaration struct {
	kind      declKind
	dump      *DumpDecl
	sql       string
	include   string
	sequences []string
}

// Manifest is an ordered list of declarations forming one restore script. It
// is built up front and replayed by RunManifest in declaration order.
type Manifest struct {
	decls []declaration
}

// NewManifest creates an empty manifest.
func NewManifest() *Manifest {
	return new(Manifest)
}

// Dump appends a dump declaration.
func (m *Manifest) Dump(d DumpDecl) *Manifest {
	m.decls = append(m.decls, declaration{kind: declDump, dump: &d})
	return m
}

// SQL appends a raw SQL statement to the master file. The trailing semicolon
// is added by the runner.
func (m *Manifest) SQL(stmt string) *Manifest {
	m.decls = append(m.decls, declaration{kind: declSQL, sql: stmt})
	return m
}

// Include appends an include directive for a hand-authored file.
func (m *Manifest) Include(relPath string) *Manifest {
	m.decls = append(m.decls, declaration{kind: declInclude, include: relPath})
	return m
}

// ResetSequences appends statements advancing each table's id sequence past
// the table's current max id. Declare after the dumps of those tables.
func (m *Manifest) ResetSequences(tables ...string) *Manifest {
	m.decls = append(m.decls, declaration{kind: declResetSequences, sequences: tables})
	return m
}

// RunManifest replays the manifest's declarations in order, writing one file
// per dump plus the master script into dir. The directory is created if
// absent; all file paths resolve against it, the working directory is never
// touched. A failing declaration stops the run and propagates; files already
// written stay on disk.
func (s *Slicer) RunManifest(ctx context.Context, header, dir string, m *Manifest) error {
	start := time.Now()

	version, err := s.schemaVersion()
	if err != nil {
		return fmt.Errorf("error looking up schema version: %w", err)
	}

	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("error creating manifest directory: %w", err)
	}

	master, err := os.Create(filepath.Join(dir, MasterFile))
	if err != nil {
		return fmt.Errorf("error creating master file: %w", err)
	}

	defer func() {
		if err := master.Close(); err != nil {
			slog.Warn("Error closing master file", slog.String(logging.KeyError, err.Error()))
		}
	}()

	preamble := fmt.Sprintf("--%%%%VERSION=%s\n-- %s\nBEGIN;\n\\set ON_ERROR_STOP on\n", version, header)
	if _, err := master.WriteString(preamble); err != nil {
		return fmt.Errorf("error writing master preamble: %w", err)
	}

	for _, d := range m.decls {
		if err := s.runDeclaration(ctx, master, dir, d); err != nil {
			return err
		}
	}

	trailer := fmt.Sprintf("COMMIT;\n-- completed in %s\n", time.Since(start))
	if _, err := master.WriteString(trailer); err != nil {
		return fmt.Errorf("error writing master trailer: %w", err)
	}

	return nil
}

func (s *Slicer) runDeclaration(ctx context.Context, master *os.File, dir string, d declaration) error {
	switch d.kind {
	case declDump:
		return s.runDump(ctx, master, dir, d.dump)
	case declSQL:
		return writeMaster(master, d.sql+";")
	case declInclude:
		return writeMaster(master, `\i `+d.include)
	case declResetSequences:
		for _, table := range d.sequences {
			stmt := fmt.Sprintf("SELECT setval('%s_id_seq', (SELECT MAX(%s) FROM %s) + 1);",
				table, idColumn, table)
			if err := writeMaster(master, stmt); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown declaration kind %d", d.kind)
	}
}

func (s *Slicer) runDump(ctx context.Context, master *os.File, dir string, d *DumpDecl) error {
	condition := d.Condition
	if d.ConditionFunc != nil {
		condition = d.ConditionFunc()
	}

	res, err := s.Dump(d.Table, condition, d.Options)
	if err != nil {
		return fmt.Errorf("error dumping %s: %w", d.Table, err)
	}

	if res == nil {
		slog.Warn("No rows matched, no dump written",
			slog.String(logging.KeyTable, d.Table),
			slog.String(logging.KeyCondition, condition))
		return nil
	}

	name := d.As
	if name == "" {
		name = d.Table
	}
	fileName := name + ".sql"

	if err := s.store.SaveFile(ctx, filepath.Join(dir, fileName), []byte(res.SQL)); err != nil {
		return fmt.Errorf("error writing dump file %s: %w", fileName, err)
	}

	if err := writeMaster(master, `\i ./`+fileName); err != nil {
		return err
	}

	slog.Debug("Dump written",
		slog.String(logging.KeyTable, d.Table),
		slog.String(logging.KeyFile, fileName))

	if d.OnIDs != nil {
		d.OnIDs(res.IDs)
	}

	return nil
}

// schemaVersion returns the max version recorded in schema_migrations, for
// the master file banner.
func (s *Slicer) schemaVersion() (string, error) {
	var version sql.NullString
	if err := s.db.QueryRow("SELECT max(version) FROM schema_migrations").Scan(&version); err != nil {
		return "", fmt.Errorf("error querying schema_migrations: %w", err)
	}

	if !version.Valid {
		return "0", nil
	}

	return version.String, nil
}

func writeMaster(master *os.File, line string) error {
	if _, err := master.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("error writing to master file: %w", err)
	}
	return nil
}
