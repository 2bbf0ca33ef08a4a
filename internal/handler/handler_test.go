package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/efreitasn/tickfix/internal/domain"
	"github.com/efreitasn/tickfix/internal/service"
	"github.com/efreitasn/tickfix/internal/store"
	"github.com/go-chi/chi/v5"
)

// newTestRouter wires real services behind the router, as main does.
func newTestRouter() chi.Router {
	instruments := domain.NewInstrumentRegistry()
	tickStore := store.NewTickStore()
	depth := store.NewDepthManager()

	instSvc := service.NewInstrumentService(instruments)
	tickSvc := service.NewTickService(instruments, tickStore, depth)
	marketSvc := service.NewMarketService(instruments, tickStore, depth, 5*time.Minute)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(instSvc, tickSvc, marketSvc, logger)
}

func doJSON(t *testing.T, router chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
}

func registerInstrument(t *testing.T, router chi.Router, symbol string, pricePrec, sizePrec int) {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/instruments", map[string]any{
		"symbol":          symbol,
		"price_precision": pricePrec,
		"size_precision":  sizePrec,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("registering %s: status %d, body %s", symbol, rec.Code, rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("GET /healthz status = %d, want 200", rec.Code)
	}
}

func TestRegisterInstrument(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/instruments", map[string]any{
		"symbol":          "BTCUSD",
		"price_precision": 2,
		"size_precision":  8,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Symbol         string `json:"symbol"`
		PricePrecision uint8  `json:"price_precision"`
		SizePrecision  uint8  `json:"size_precision"`
	}
	decodeBody(t, rec, &resp)
	if resp.Symbol != "BTCUSD" || resp.PricePrecision != 2 || resp.SizePrecision != 8 {
		t.Errorf("response = %+v", resp)
	}
}

func TestRegisterInstrument_Errors(t *testing.T) {
	router := newTestRouter()
	registerInstrument(t, router, "AAPL", 2, 0)

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
		wantError  string
	}{
		{
			name:       "duplicate",
			body:       map[string]any{"symbol": "AAPL", "price_precision": 2},
			wantStatus: http.StatusConflict,
			wantError:  "instrument_already_exists",
		},
		{
			name:       "bad symbol",
			body:       map[string]any{"symbol": "aapl"},
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_error",
		},
		{
			name:       "precision too large",
			body:       map[string]any{"symbol": "MSFT", "price_precision": 10},
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_error",
		},
		{
			name:       "unknown field",
			body:       map[string]any{"symbol": "MSFT", "tick_size": 0.01},
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid_request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/instruments", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			var resp struct {
				Error string `json:"error"`
			}
			decodeBody(t, rec, &resp)
			if resp.Error != tt.wantError {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantError)
			}
		})
	}
}

func TestRegisterInstrument_RequiresJSONContentType(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/instruments", bytes.NewBufferString(`{"symbol":"AAPL"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 without Content-Type", rec.Code)
	}
}

func TestGetInstrument_NotFound(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/instruments/MISSING", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestIngestTick(t *testing.T) {
	router := newTestRouter()
	registerInstrument(t, router, "AAPL", 2, 0)

	rec := doJSON(t, router, http.MethodPost, "/ticks", map[string]any{
		"symbol": "AAPL",
		"price":  148.50,
		"size":   100,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		TickID     string  `json:"tick_id"`
		Price      float64 `json:"price"`
		PriceFixed int64   `json:"price_fixed"`
		SizeFixed  int64   `json:"size_fixed"`
	}
	decodeBody(t, rec, &resp)
	if resp.TickID == "" {
		t.Error("tick_id is empty")
	}
	if resp.PriceFixed != 14850 {
		t.Errorf("price_fixed = %d, want 14850", resp.PriceFixed)
	}
	if resp.SizeFixed != 100 {
		t.Errorf("size_fixed = %d, want 100", resp.SizeFixed)
	}
	if resp.Price != 148.50 {
		t.Errorf("price = %v, want 148.50", resp.Price)
	}
}

func TestIngestTick_Errors(t *testing.T) {
	router := newTestRouter()
	registerInstrument(t, router, "AAPL", 9, 0)

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
		wantError  string
	}{
		{
			name:       "unknown symbol",
			body:       map[string]any{"symbol": "MISSING", "price": 1.0, "size": 1},
			wantStatus: http.StatusNotFound,
			wantError:  "instrument_not_found",
		},
		{
			name:       "price overflows at precision 9",
			body:       map[string]any{"symbol": "AAPL", "price": 1e18, "size": 1},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "numeric_overflow",
		},
		{
			name:       "negative size",
			body:       map[string]any{"symbol": "AAPL", "price": 1.0, "size": -5},
			wantStatus: http.StatusBadRequest,
			wantError:  "negative_quantity",
		},
		{
			name:       "zero size",
			body:       map[string]any{"symbol": "AAPL", "price": 1.0, "size": 0},
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/ticks", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			var resp struct {
				Error string `json:"error"`
			}
			decodeBody(t, rec, &resp)
			if resp.Error != tt.wantError {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantError)
			}
		})
	}
}

func TestGetPrice(t *testing.T) {
	router := newTestRouter()
	registerInstrument(t, router, "AAPL", 2, 0)

	// Before any ticks: null prices.
	req := httptest.NewRequest(http.MethodGet, "/instruments/AAPL/price", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var empty struct {
		LastPrice *float64 `json:"last_price"`
		VWAP      *float64 `json:"vwap"`
	}
	decodeBody(t, rec, &empty)
	if empty.LastPrice != nil || empty.VWAP != nil {
		t.Errorf("expected null prices before ticks, got %+v", empty)
	}

	for _, body := range []map[string]any{
		{"symbol": "AAPL", "price": 100.00, "size": 100},
		{"symbol": "AAPL", "price": 102.00, "size": 300},
	} {
		if rec := doJSON(t, router, http.MethodPost, "/ticks", body); rec.Code != http.StatusCreated {
			t.Fatalf("ingest status = %d; body %s", rec.Code, rec.Body.String())
		}
	}

	req = httptest.NewRequest(http.MethodGet, "/instruments/AAPL/price", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp struct {
		LastPrice     *float64 `json:"last_price"`
		VWAP          *float64 `json:"vwap"`
		TicksInWindow int      `json:"ticks_in_window"`
	}
	decodeBody(t, rec, &resp)
	if resp.LastPrice == nil || *resp.LastPrice != 102.00 {
		t.Errorf("last_price = %v, want 102.00", resp.LastPrice)
	}
	if resp.VWAP == nil || *resp.VWAP != 101.50 {
		t.Errorf("vwap = %v, want 101.50", resp.VWAP)
	}
	if resp.TicksInWindow != 2 {
		t.Errorf("ticks_in_window = %d, want 2", resp.TicksInWindow)
	}
}

func TestDepthPublishAndGet(t *testing.T) {
	router := newTestRouter()
	registerInstrument(t, router, "AAPL", 2, 0)

	rec := doJSON(t, router, http.MethodPut, "/instruments/AAPL/depth", map[string]any{
		"levels": []map[string]any{
			{"side": "bid", "price": 148.50, "size": 100},
			{"side": "bid", "price": 148.25, "size": 200},
			{"side": "ask", "price": 148.75, "size": 150},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT depth status = %d; body %s", rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/instruments/AAPL/depth?depth=5", nil)
	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, req)
	if getRec.Code != http.StatusOK {
		t.Fatalf("GET depth status = %d; body %s", getRec.Code, getRec.Body.String())
	}

	var resp struct {
		Bids []struct {
			Price float64 `json:"price"`
			Size  float64 `json:"size"`
		} `json:"bids"`
		Asks []struct {
			Price float64 `json:"price"`
		} `json:"asks"`
		Spread *float64 `json:"spread"`
		Mid    *float64 `json:"mid"`
	}
	decodeBody(t, getRec, &resp)
	if len(resp.Bids) != 2 || len(resp.Asks) != 1 {
		t.Fatalf("depth = %d bids, %d asks, want 2 and 1", len(resp.Bids), len(resp.Asks))
	}
	if resp.Bids[0].Price != 148.50 {
		t.Errorf("best bid = %v, want 148.50", resp.Bids[0].Price)
	}
	if resp.Spread == nil || *resp.Spread != 0.25 {
		t.Errorf("spread = %v, want 0.25", resp.Spread)
	}
	if resp.Mid == nil || *resp.Mid != 148.625 {
		t.Errorf("mid = %v, want 148.625", resp.Mid)
	}
}

func TestDepthPublish_InvalidSide(t *testing.T) {
	router := newTestRouter()
	registerInstrument(t, router, "AAPL", 2, 0)

	rec := doJSON(t, router, http.MethodPut, "/instruments/AAPL/depth", map[string]any{
		"levels": []map[string]any{
			{"side": "middle", "price": 1.0, "size": 1},
		},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestConvert(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
		wantFixed  int64
		wantValue  float64
		wantError  string
	}{
		{
			name:       "float to fixed with banker's rounding",
			body:       map[string]any{"value": 1.25, "precision": 1},
			wantStatus: http.StatusOK,
			wantFixed:  12,
			wantValue:  1.2,
		},
		{
			name:       "fixed to float",
			body:       map[string]any{"fixed": -10, "precision": 1},
			wantStatus: http.StatusOK,
			wantFixed:  -10,
			wantValue:  -1.0,
		},
		{
			name:       "both directions set",
			body:       map[string]any{"value": 1.0, "fixed": 10, "precision": 1},
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_error",
		},
		{
			name:       "neither direction set",
			body:       map[string]any{"precision": 1},
			wantStatus: http.StatusBadRequest,
			wantError:  "validation_error",
		},
		{
			name:       "invalid precision",
			body:       map[string]any{"value": 1.0, "precision": 10},
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid_precision",
		},
		{
			name:       "overflow",
			body:       map[string]any{"value": 1e18, "precision": 9},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "numeric_overflow",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/convert", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantError != "" {
				var resp struct {
					Error string `json:"error"`
				}
				decodeBody(t, rec, &resp)
				if resp.Error != tt.wantError {
					t.Errorf("error = %q, want %q", resp.Error, tt.wantError)
				}
				return
			}
			var resp struct {
				Value     float64 `json:"value"`
				Fixed     int64   `json:"fixed"`
				Precision uint8   `json:"precision"`
			}
			decodeBody(t, rec, &resp)
			if resp.Fixed != tt.wantFixed {
				t.Errorf("fixed = %d, want %d", resp.Fixed, tt.wantFixed)
			}
			if resp.Value != tt.wantValue {
				t.Errorf("value = %v, want %v", resp.Value, tt.wantValue)
			}
		})
	}
}
