package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/folio/internal/database"
	"github.com/aristath/folio/internal/modules/marketdata"
)

func newRouter(t *testing.T) (*chi.Mux, *marketdata.HistoryStore) {
	t.Helper()
	db, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "history.db"),
		Name: database.NameHistory,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())

	store := marketdata.NewHistoryStore(db.Conn(), zerolog.Nop())
	router := chi.NewRouter()
	NewHandler(store, zerolog.Nop()).RegisterRoutes(router)
	return router, store
}

func do(router http.Handler, method, path, contentType, body string) (int, map[string]interface{}) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var out map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec.Code, out
}

func TestHandleImport_JSON(t *testing.T) {
	router, store := newRouter(t)

	status, body := do(router, http.MethodPost, "/prices/aaa", "application/json", `{
		"bars": [
			{"date": "2024-01-02", "close": 10},
			{"date": "2024-01-03", "open": 10, "high": 12, "low": 9, "close": 11, "volume": 500}
		],
		"instrument": {"name": "Alpha Corp", "sector": "Technology", "currency": "eur"}
	}`)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "AAA", body["data"].(map[string]interface{})["symbol"])
	assert.Equal(t, 2.0, body["data"].(map[string]interface{})["imported"])

	ctx := context.Background()
	bars, err := store.PriceHistory(ctx, "AAA", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 10.0, bars[0].High)

	inst, err := store.Instrument(ctx, "AAA")
	require.NoError(t, err)
	assert.Equal(t, "Alpha Corp", inst.Name)
	assert.Equal(t, "EUR", string(inst.Currency))
}

func TestHandleImport_CSV(t *testing.T) {
	router, _ := newRouter(t)

	csv := "date,close,volume\n2024-01-02,10,100\n2024-01-03,11,200\n2024-01-04,12,300\n"
	status, body := do(router, http.MethodPost, "/prices/BBB", "text/csv; charset=utf-8", csv)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, 3.0, body["data"].(map[string]interface{})["imported"])

	status, body = do(router, http.MethodGet, "/prices/", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []interface{}{"BBB"}, body["data"].(map[string]interface{})["symbols"])

	status, body = do(router, http.MethodGet, "/prices/bbb/latest", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 12.0, body["data"].(map[string]interface{})["price"])
}

func TestHandleImport_Invalid(t *testing.T) {
	router, _ := newRouter(t)

	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{name: "no bars", contentType: "application/json", body: `{"bars": []}`},
		{name: "bad date", contentType: "application/json", body: `{"bars": [{"date": "02/01/2024", "close": 1}]}`},
		{name: "zero close", contentType: "application/json", body: `{"bars": [{"date": "2024-01-02", "close": 0}]}`},
		{name: "csv without close", contentType: "text/csv", body: "date,open\n2024-01-02,1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(router, http.MethodPost, "/prices/AAA", tt.contentType, tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestHandleLatest_NotFound(t *testing.T) {
	router, _ := newRouter(t)

	status, _ := do(router, http.MethodGet, "/prices/ZZZ/latest", "", "")
	assert.Equal(t, http.StatusNotFound, status)
}
