package database

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/JonMunkholm/salesnorm/internal/core"
	_ "github.com/JonMunkholm/salesnorm/internal/core/tables"
)

const integrationInput = "Store,Dept,Date,Weekly_Sales,IsHoliday,Type,Size,Temperature,Fuel_Price,CPI,Unemployment\n" +
	"1,1,05-02-2010,24924.5,FALSE,A,151315,42.31,2.572,211.1,8.106\n" +
	"1,2,05-02-2010,50605.27,FALSE,A,151315,42.31,2.572,211.1,8.106\n" +
	"2,1,12-02-2010,35034.06,TRUE,A,202307,40.19,2.548,210.75,8.324\n"

// newTestPool starts a Postgres container, skipping the test when no
// container runtime is available.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := t.Context()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() {
		terminateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = container.Terminate(terminateCtx)
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := Connect(ctx, connStr, 2)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

func normalize(t *testing.T, input string) *core.Dataset {
	t.Helper()
	svc, err := core.NewService(core.Options{InputPath: "fixture"}, core.All())
	require.NoError(t, err)

	ds, err := svc.NormalizeReader(t.Context(), strings.NewReader(input), "fixture")
	require.NoError(t, err)
	return ds
}

func countRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(t.Context(), "SELECT count(*) FROM public."+table).Scan(&n))
	return n
}

func TestLoader_Load(t *testing.T) {
	pool := newTestPool(t)
	ctx := t.Context()
	ds := normalize(t, integrationInput)

	loader := NewLoader(pool, "public", true)
	results, err := loader.Load(ctx, ds, core.OrderInsertion)
	require.NoError(t, err)
	require.Len(t, results, 4)

	want := map[string]int{"store": 2, "weekdate": 2, "attributes": 2, "sales": 3}
	for _, res := range results {
		assert.Equal(t, int64(want[res.Table]), res.Copied, res.Table)
		assert.Equal(t, int64(want[res.Table]), res.Inserted, res.Table)
		assert.Equal(t, want[res.Table], countRows(t, pool, res.Table), res.Table)
	}

	var size, typ string
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT size, type FROM public.store WHERE store = '2'`).Scan(&size, &typ))
	assert.Equal(t, "202307", size)
	assert.Equal(t, "A", typ)

	var sales string
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT weekly_sales FROM public.sales WHERE store = '1' AND dept = '2'`).Scan(&sales))
	assert.Equal(t, "50605.27", sales)

	t.Run("reload without truncate keeps tables unique", func(t *testing.T) {
		results, err := NewLoader(pool, "public", false).Load(ctx, ds, core.OrderSorted)
		require.NoError(t, err)
		for _, res := range results {
			assert.Zero(t, res.Inserted, res.Table)
			assert.Equal(t, want[res.Table], countRows(t, pool, res.Table), res.Table)
		}
	})

	t.Run("missing schema rolls back", func(t *testing.T) {
		_, err := NewLoader(pool, "no_such_schema", true).Load(ctx, ds, core.OrderInsertion)

		var le *core.LoadError
		require.ErrorAs(t, err, &le)
		assert.Equal(t, "store", le.Table)
		assert.Equal(t, core.CodeDatabaseLoad, core.MapError(err).Code)
	})
}
