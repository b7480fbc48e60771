package catalog_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticedb/lattice/internal/xerrors"
	"github.com/latticedb/lattice/pkg/catalog"
	"github.com/latticedb/lattice/pkg/store"
)

func openTestService(t *testing.T) *catalog.Service {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.db")
	tr, err := store.Open("test-catalog", path, store.Options{Sync: true, RequireTestPrefix: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Close() })
	return catalog.NewService(tr)
}

func ptr(v uint64) *uint64 { return &v }

// Scenario 4: create/list round trip.
func TestCatalogCreateListRoundTrip(t *testing.T) {
	svc := openTestService(t)

	dbReply, err := svc.CreateDatabase(catalog.CreateDatabasePlan{Name: "d1", Engine: "default"})
	require.NoError(t, err)
	require.Equal(t, uint64(1), dbReply.DBID)

	dbs, err := svc.GetDatabases()
	require.NoError(t, err)
	require.Len(t, dbs.Databases, 1)
	require.Equal(t, "d1", dbs.Databases[0].Name)

	tableReply, err := svc.CreateTable(catalog.CreateTablePlan{DB: "d1", Name: "t1", Engine: "default"})
	require.NoError(t, err)
	require.Equal(t, uint64(1), tableReply.TableID)

	tables, err := svc.GetTables("d1")
	require.NoError(t, err)
	require.Len(t, tables.Tables, 1)
	require.Equal(t, "t1", tables.Tables[0].Name)

	info, err := svc.GetTableExt(tableReply.TableID, ptr(1))
	require.NoError(t, err)
	require.Equal(t, "t1", info.Name)
	require.Equal(t, uint64(1), info.Version)

	_, err = svc.GetTableExt(tableReply.TableID, ptr(2))
	require.Error(t, err)
	require.True(t, xerrors.Is(err, xerrors.TableVersionMismatch))
}

func TestGetTableExtNilVersionReturnsLatest(t *testing.T) {
	svc := openTestService(t)
	_, err := svc.CreateDatabase(catalog.CreateDatabasePlan{Name: "d1"})
	require.NoError(t, err)
	tableReply, err := svc.CreateTable(catalog.CreateTablePlan{DB: "d1", Name: "t1"})
	require.NoError(t, err)

	info, err := svc.GetTableExt(tableReply.TableID, nil)
	require.NoError(t, err)
	require.Equal(t, "t1", info.Name)
}

func TestCreateDatabaseAlreadyExists(t *testing.T) {
	svc := openTestService(t)
	_, err := svc.CreateDatabase(catalog.CreateDatabasePlan{Name: "d1"})
	require.NoError(t, err)

	_, err = svc.CreateDatabase(catalog.CreateDatabasePlan{Name: "d1"})
	require.Error(t, err)
	require.True(t, xerrors.Is(err, xerrors.DatabaseAlreadyExists))

	reply, err := svc.CreateDatabase(catalog.CreateDatabasePlan{Name: "d1", IfNotExists: true})
	require.NoError(t, err)
	require.Equal(t, uint64(1), reply.DBID)
}

func TestDropDatabaseFailsWhenNotEmptyWithoutCascade(t *testing.T) {
	svc := openTestService(t)
	_, err := svc.CreateDatabase(catalog.CreateDatabasePlan{Name: "d1"})
	require.NoError(t, err)
	_, err = svc.CreateTable(catalog.CreateTablePlan{DB: "d1", Name: "t1"})
	require.NoError(t, err)

	err = svc.DropDatabase(catalog.DropDatabasePlan{Name: "d1"})
	require.Error(t, err)
	require.True(t, xerrors.Is(err, xerrors.DatabaseNotEmpty))
}

func TestDropDatabaseCascadeRemovesTables(t *testing.T) {
	svc := openTestService(t)
	_, err := svc.CreateDatabase(catalog.CreateDatabasePlan{Name: "d1"})
	require.NoError(t, err)
	_, err = svc.CreateTable(catalog.CreateTablePlan{DB: "d1", Name: "t1"})
	require.NoError(t, err)

	require.NoError(t, svc.DropDatabase(catalog.DropDatabasePlan{Name: "d1", Cascade: true}))

	_, err = svc.GetDatabase("d1")
	require.Error(t, err)
	require.True(t, xerrors.Is(err, xerrors.UnknownDatabase))
}

func TestDropDatabaseIfExistsNoOpWhenMissing(t *testing.T) {
	svc := openTestService(t)
	require.NoError(t, svc.DropDatabase(catalog.DropDatabasePlan{Name: "nope", IfExists: true}))

	err := svc.DropDatabase(catalog.DropDatabasePlan{Name: "nope"})
	require.Error(t, err)
	require.True(t, xerrors.Is(err, xerrors.UnknownDatabase))
}

func TestCreateTableUnknownDatabase(t *testing.T) {
	svc := openTestService(t)
	_, err := svc.CreateTable(catalog.CreateTablePlan{DB: "ghost", Name: "t1"})
	require.Error(t, err)
	require.True(t, xerrors.Is(err, xerrors.UnknownDatabase))
}

func TestDropTableThenGetFails(t *testing.T) {
	svc := openTestService(t)
	_, err := svc.CreateDatabase(catalog.CreateDatabasePlan{Name: "d1"})
	require.NoError(t, err)
	_, err = svc.CreateTable(catalog.CreateTablePlan{DB: "d1", Name: "t1"})
	require.NoError(t, err)

	require.NoError(t, svc.DropTable(catalog.DropTablePlan{DB: "d1", Name: "t1"}))

	_, err = svc.GetTable("d1", "t1")
	require.Error(t, err)
	require.True(t, xerrors.Is(err, xerrors.UnknownTable))
}
