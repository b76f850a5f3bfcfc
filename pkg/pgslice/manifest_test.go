package pgslice

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Jacobbrewer1/pgslice/pkg/logging"
	"github.com/stretchr/testify/require"
)

func expectSchemaVersion(mock sqlmock.Sqlmock, version string) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT max(version) FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(version))
}

func TestSlicer_RunManifest(t *testing.T) {
	db, mock := newMockDB(t)
	dir := t.TempDir()

	expectSchemaVersion(mock, "20240115093000")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM fleets WHERE region='eu'")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "region"}).
			AddRow(int64(1), "eu").
			AddRow(int64(2), "eu"))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM vehicles WHERE fleet_id IN (1, 2)")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "fleet_id", "name"}).
			AddRow(int64(10), int64(1), "A"))

	var fleets IDList
	m := NewManifest().
		Dump(DumpDecl{
			Table:     "fleets",
			Condition: "region='eu'",
			Options:   &Options{Type: TypeInsert},
			OnIDs:     func(ids IDList) { fleets = ids },
		}).
		Dump(DumpDecl{
			Table:         "vehicles",
			ConditionFunc: func() string { return "fleet_id IN " + fleets.String() },
			Options:       &Options{Type: TypeInsert},
		}).
		SQL("TRUNCATE sessions").
		Include("./extra_seed.sql").
		ResetSequences("fleets", "vehicles")

	err := NewSlicer(db).RunManifest(context.Background(), "eu fleet slice", dir, m)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Equal(t, IDList{1, 2}, fleets)

	master, err := os.ReadFile(filepath.Join(dir, MasterFile))
	require.NoError(t, err)
	text := string(master)

	require.True(t, strings.HasPrefix(text, "--%%VERSION=20240115093000\n-- eu fleet slice\nBEGIN;\n\\set ON_ERROR_STOP on\n"), "master preamble, got:\n%s", text)
	require.Contains(t, text, "\\i ./fleets.sql\n")
	require.Contains(t, text, "\\i ./vehicles.sql\n")
	require.Contains(t, text, "TRUNCATE sessions;\n")
	require.Contains(t, text, "\\i ./extra_seed.sql\n")
	require.Contains(t, text, "SELECT setval('fleets_id_seq', (SELECT MAX(id) FROM fleets) + 1);\n")
	require.Contains(t, text, "SELECT setval('vehicles_id_seq', (SELECT MAX(id) FROM vehicles) + 1);\n")
	require.Contains(t, text, "COMMIT;\n-- completed in ")

	// Includes appear in declaration order.
	require.Less(t,
		strings.Index(text, "\\i ./fleets.sql"),
		strings.Index(text, "\\i ./vehicles.sql"))
	require.Less(t,
		strings.Index(text, "\\i ./vehicles.sql"),
		strings.Index(text, "TRUNCATE sessions;"))

	fleetsSQL, err := os.ReadFile(filepath.Join(dir, "fleets.sql"))
	require.NoError(t, err)
	require.Equal(t, "INSERT INTO fleets (id, region) VALUES (1,'eu'), (2,'eu');\n", string(fleetsSQL))

	vehiclesSQL, err := os.ReadFile(filepath.Join(dir, "vehicles.sql"))
	require.NoError(t, err)
	require.Equal(t, "INSERT INTO vehicles (id, fleet_id, name) VALUES (10,1,'A');\n", string(vehiclesSQL))
}

func TestSlicer_RunManifest_DumpAs(t *testing.T) {
	db, mock := newMockDB(t)
	dir := t.TempDir()

	logBuf := new(bytes.Buffer)
	_, err := logging.CommonLoggerWithOptions(logging.NewConfig("TestSlicer_RunManifest_DumpAs"), logBuf, true)
	require.NoError(t, err)

	expectSchemaVersion(mock, "1")
	expectVehicles(mock, "1=1")

	m := NewManifest().Dump(DumpDecl{
		Table:     "vehicles",
		As:        "eu_vehicles",
		Condition: "1=1",
		Options:   &Options{Type: TypeInsert},
	})

	err = NewSlicer(db).RunManifest(context.Background(), "aliased", dir, m)
	require.NoError(t, err)

	// Each written dump logs its file name.
	require.Contains(t, logBuf.String(), `"file":"eu_vehicles.sql"`)

	_, err = os.Stat(filepath.Join(dir, "eu_vehicles.sql"))
	require.NoError(t, err)

	master, err := os.ReadFile(filepath.Join(dir, MasterFile))
	require.NoError(t, err)
	require.Contains(t, string(master), "\\i ./eu_vehicles.sql\n")
}

func TestSlicer_RunManifest_EmptyDumpWritesNoFile(t *testing.T) {
	db, mock := newMockDB(t)
	dir := t.TempDir()

	expectSchemaVersion(mock, "1")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM vehicles WHERE 1=0")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	m := NewManifest().Dump(DumpDecl{
		Table:     "vehicles",
		Condition: "1=0",
		Options:   &Options{Type: TypeInsert},
	})

	err := NewSlicer(db).RunManifest(context.Background(), "empty", dir, m)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "vehicles.sql"))
	require.True(t, os.IsNotExist(err), "no per-table file may be written for an empty dump")

	master, err := os.ReadFile(filepath.Join(dir, MasterFile))
	require.NoError(t, err)
	require.NotContains(t, string(master), "\\i ./vehicles.sql")
}

func TestSlicer_RunManifest_ErrorLeavesPartialFiles(t *testing.T) {
	db, mock := newMockDB(t)
	dir := t.TempDir()

	expectSchemaVersion(mock, "1")
	expectVehicles(mock, "1=1")

	m := NewManifest().
		Dump(DumpDecl{
			Table:     "vehicles",
			Condition: "1=1",
			Options:   &Options{Type: TypeInsert},
		}).
		Dump(DumpDecl{
			Table:     "vehicles",
			Condition: "1=1",
			// Invalid options fail the declaration and stop the run.
			Options: &Options{Type: TypeUpdates, DeleteFirst: true},
		})

	err := NewSlicer(db).RunManifest(context.Background(), "partial", dir, m)
	require.ErrorIs(t, err, ErrDeleteFirstWithUpdates)

	// The first declaration's artifacts stay on disk.
	_, statErr := os.Stat(filepath.Join(dir, "vehicles.sql"))
	require.NoError(t, statErr)

	master, readErr := os.ReadFile(filepath.Join(dir, MasterFile))
	require.NoError(t, readErr)
	require.Contains(t, string(master), "\\i ./vehicles.sql\n")
	require.NotContains(t, string(master), "COMMIT;")
}

func TestSlicer_RunManifest_NullSchemaVersion(t *testing.T) {
	db, mock := newMockDB(t)
	dir := t.TempDir()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT max(version) FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

	err := NewSlicer(db).RunManifest(context.Background(), "no migrations", dir, NewManifest())
	require.NoError(t, err)

	master, readErr := os.ReadFile(filepath.Join(dir, MasterFile))
	require.NoError(t, readErr)
	require.True(t, strings.HasPrefix(string(master), "--%%VERSION=0\n"))
}
