package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/potion-bottler/internal/adapter/storage"
	"github.com/rl1809/potion-bottler/internal/core/domain"
	"github.com/rl1809/potion-bottler/internal/core/service"
)

func newTestBottler(t *testing.T, inv domain.LiquidInventory) (*service.BottlerService, *storage.SQLiteAdapter) {
	t.Helper()
	ctx := context.Background()
	store, err := storage.OpenSQLite(ctx, filepath.Join(t.TempDir(), "shop.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.SetLiquidInventory(ctx, inv))

	svc := service.NewBottlerService(store, zerolog.Nop(),
		service.WithSampler(service.NewSeededRecipeSampler(3)),
		service.WithNamer(func() string { return "Shimmering Brew" }),
	)
	return svc, store
}

func newTestMux(svc *service.BottlerService) *http.ServeMux {
	mux := http.NewServeMux()
	NewHTTPHandler(svc).Register(mux)
	return mux
}

func TestHTTP_GetBottlePlan(t *testing.T) {
	svc, _ := newTestBottler(t, domain.LiquidInventory{1000, 500, 0, 0})
	mux := newTestMux(svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/bottler/plan", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var plan []PotionQuantityJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	require.NotEmpty(t, plan)
	for _, entry := range plan {
		require.Len(t, entry.PotionType, 4)
		assert.Positive(t, entry.Quantity)
		assert.Zero(t, entry.PotionType[2])
		assert.Zero(t, entry.PotionType[3])
	}
}

func TestHTTP_GetBottlePlan_EmptyInventory(t *testing.T) {
	svc, _ := newTestBottler(t, domain.LiquidInventory{})
	mux := newTestMux(svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/bottler/plan", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHTTP_DeliverPotions(t *testing.T) {
	svc, store := newTestBottler(t, domain.LiquidInventory{100, 100, 100, 0})
	mux := newTestMux(svc)

	body := `[{"potion_type":[50,25,25,0],"quantity":2}]`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/bottler/deliver/42", bytes.NewBufferString(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp DeliverHTTPResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)

	inv, err := store.GetLiquidInventory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.LiquidInventory{0, 50, 50, 0}, inv)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var catalog []PotionJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &catalog))
	require.Len(t, catalog, 1)
	assert.Equal(t, []int{50, 25, 25, 0}, catalog[0].PotionType)
	assert.Equal(t, "SHIMMERING_BREW", catalog[0].SKU)
	assert.Equal(t, 2, catalog[0].Quantity)
}

func TestHTTP_DeliverPotions_InsufficientStock(t *testing.T) {
	svc, store := newTestBottler(t, domain.LiquidInventory{5, 0, 0, 0})
	mux := newTestMux(svc)

	body := `[{"potion_type":[10,0,0,0],"quantity":1}]`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/bottler/deliver/1", bytes.NewBufferString(body)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp DeliverHTTPResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "green", resp.Channel)
	assert.Equal(t, "not enough green ml available", resp.Message)

	inv, err := store.GetLiquidInventory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.LiquidInventory{5, 0, 0, 0}, inv)
}

func TestHTTP_DeliverPotions_BadRequests(t *testing.T) {
	svc, store := newTestBottler(t, domain.LiquidInventory{100, 100, 100, 100})
	mux := newTestMux(svc)

	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "non numeric order", path: "/bottler/deliver/abc", body: `[]`},
		{name: "malformed json", path: "/bottler/deliver/1", body: `{`},
		{name: "short potion type", path: "/bottler/deliver/1", body: `[{"potion_type":[1,2,3],"quantity":1}]`},
		{name: "negative quantity", path: "/bottler/deliver/1", body: `[{"potion_type":[1,0,0,0],"quantity":-3}]`},
		{name: "debit overflows", path: "/bottler/deliver/1", body: `[{"potion_type":[4611686018427387904,0,0,0],"quantity":4}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tt.path, bytes.NewBufferString(tt.body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	inv, err := store.GetLiquidInventory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.LiquidInventory{100, 100, 100, 100}, inv)
	catalog, err := svc.ListCatalog(context.Background())
	require.NoError(t, err)
	assert.Empty(t, catalog)
}

func TestHTTP_HealthCheck(t *testing.T) {
	svc, _ := newTestBottler(t, domain.LiquidInventory{})
	mux := newTestMux(svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
