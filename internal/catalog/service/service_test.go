package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/caja/internal/catalog/domain"
	"github.com/smallbiznis/caja/internal/catalog/repository"
	"github.com/smallbiznis/caja/internal/observability/metrics"
	"github.com/smallbiznis/caja/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var defaultMapping = domain.ColumnMapping{Reference: 0, Description: 1, Barcode: 2, Price: 3}

func mustDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	gdb, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&domain.Product{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc, err := New(Params{
		DB:      gdb,
		Log:     zap.NewNop(),
		GenID:   node,
		Repo:    repository.Provide(),
		Metrics: metrics.New(),
	})
	require.NoError(t, err)
	return svc
}

func importRows(t *testing.T, svc domain.Service, rows [][]string) domain.ImportResult {
	t.Helper()
	result, err := svc.ImportProducts(context.Background(), rows, defaultMapping)
	require.NoError(t, err)
	return result
}

func TestImportProducts(t *testing.T) {
	svc := newTestService(t)

	result := importRows(t, svc, [][]string{
		{"A001", "Cafe molido", "840001", "3.50"},
		{"B002", "Leche entera", "840002", "1,10"},
		{"C003", "Pan", "", "0.80"},
	})

	assert.Equal(t, 3, result.Imported)
	assert.Empty(t, result.Rejected)

	products := svc.All(context.Background())
	require.Len(t, products, 3)
	assert.Equal(t, "A001", products[0].Reference, "catalog keeps file order")
	assert.True(t, products[1].UnitPrice.Equal(mustDec("1.10")), "comma decimal separator accepted")
}

func TestImportRejectsBadRows(t *testing.T) {
	svc := newTestService(t)

	result := importRows(t, svc, [][]string{
		{"A001", "Cafe", "840001", "3.50"},
		{"", "Sin referencia", "", "1.00"},
		{"A001", "Referencia repetida", "", "2.00"},
		{"D004", "Sin precio", "", ""},
		{"E005", "Precio roto", "", "abc"},
		{"F006", "Precio negativo", "", "-1.00"},
		{"G007", "Codigo repetido", "840001", "1.00"},
		{"H008"},
	})

	assert.Equal(t, 1, result.Imported, "only the first row survives")
	require.Len(t, result.Rejected, 7)

	reasons := make(map[int]string, len(result.Rejected))
	for _, r := range result.Rejected {
		reasons[r.Index] = r.Reason
	}
	assert.Equal(t, "missing reference", reasons[1])
	assert.Equal(t, "duplicate reference", reasons[2])
	assert.Equal(t, "missing price", reasons[3])
	assert.Contains(t, reasons[4], "invalid price")
	assert.Equal(t, "negative price", reasons[5])
	assert.Equal(t, "duplicate barcode", reasons[6])
	assert.Equal(t, "missing price", reasons[7], "short rows read as empty cells")
}

func TestImportInvalidMapping(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ImportProducts(context.Background(), nil, domain.ColumnMapping{Reference: -1, Price: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidMapping)

	_, err = svc.ImportProducts(context.Background(), nil, domain.ColumnMapping{Reference: 0, Price: 0, Description: -1, Barcode: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidMapping, "duplicate column indices")
}

func TestImportReplacesCatalog(t *testing.T) {
	svc := newTestService(t)

	importRows(t, svc, [][]string{{"A001", "Cafe", "", "3.50"}})
	importRows(t, svc, [][]string{{"B002", "Leche", "", "1.10"}})

	products := svc.All(context.Background())
	require.Len(t, products, 1)
	assert.Equal(t, "B002", products[0].Reference)

	_, err := svc.Lookup(context.Background(), "A001")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestFindDuringReimportSeesOneCatalog(t *testing.T) {
	svc := newTestService(t)

	catalogA := [][]string{
		{"A1", "alpha uno", "", "1.00"},
		{"A2", "alpha dos", "", "2.00"},
	}
	catalogB := [][]string{
		{"B1", "alpha uno", "", "1.00"},
		{"B2", "alpha dos", "", "2.00"},
	}
	importRows(t, svc, catalogA)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			rows := catalogA
			if i%2 == 1 {
				rows = catalogB
			}
			if _, err := svc.ImportProducts(context.Background(), rows, defaultMapping); err != nil {
				t.Errorf("import: %v", err)
				return
			}
		}
	}()

	// Every read must land entirely in one catalog, never a mix.
	for {
		matches := svc.Find(context.Background(), "alpha")
		if len(matches) != 2 {
			t.Fatalf("got %d matches, want 2", len(matches))
		}
		if matches[0].Reference[:1] != matches[1].Reference[:1] {
			t.Fatalf("mixed catalogs in one read: %s and %s", matches[0].Reference, matches[1].Reference)
		}

		select {
		case <-done:
			return
		default:
		}
	}
}

func TestFindPrecedence(t *testing.T) {
	svc := newTestService(t)
	importRows(t, svc, [][]string{
		{"CAFE", "Taza grande", "100", "2.00"},
		{"A001", "Cafe molido", "200", "3.50"},
		{"B002", "Cafe en grano", "CAFE", "4.00"},
	})

	// Exact reference wins, then exact barcode, then description matches in
	// catalog order. No product appears twice.
	matches := svc.Find(context.Background(), "cafe")
	require.Len(t, matches, 3)
	assert.Equal(t, "CAFE", matches[0].Reference)
	assert.Equal(t, "B002", matches[1].Reference, "barcode match comes before description matches")
	assert.Equal(t, "A001", matches[2].Reference)
}

func TestFindBlankQuery(t *testing.T) {
	svc := newTestService(t)
	importRows(t, svc, [][]string{{"A001", "Cafe", "", "3.50"}})

	assert.Empty(t, svc.Find(context.Background(), ""))
	assert.Empty(t, svc.Find(context.Background(), "   "))
}

func TestLookup(t *testing.T) {
	svc := newTestService(t)
	importRows(t, svc, [][]string{{"A001", "Cafe", "840001", "3.50"}})

	product, err := svc.Lookup(context.Background(), "a001")
	require.NoError(t, err)
	assert.Equal(t, "A001", product.Reference)

	// A scanned barcode resolves without a prior Find.
	product, err = svc.Lookup(context.Background(), "840001")
	require.NoError(t, err)
	assert.Equal(t, "A001", product.Reference)

	_, err = svc.Lookup(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestReloadFromStore(t *testing.T) {
	gdb, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&domain.Product{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	params := Params{
		DB:      gdb,
		Log:     zap.NewNop(),
		GenID:   node,
		Repo:    repository.Provide(),
		Metrics: metrics.New(),
	}

	first, err := New(params)
	require.NoError(t, err)
	_, err = first.ImportProducts(context.Background(), [][]string{{"A001", "Cafe", "", "3.50"}}, defaultMapping)
	require.NoError(t, err)

	// A fresh service over the same store sees the imported catalog.
	second, err := New(params)
	require.NoError(t, err)
	product, err := second.Lookup(context.Background(), "A001")
	require.NoError(t, err)
	assert.Equal(t, "Cafe", product.Description)
}
