package handler

import (
	"net/http"
	"strconv"

	"github.com/efreitasn/tickfix/internal/service"
	"github.com/go-chi/chi/v5"
)

// MarketHandler handles HTTP requests for price and depth queries.
type MarketHandler struct {
	marketSvc *service.MarketService
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(marketSvc *service.MarketService) *MarketHandler {
	return &MarketHandler{marketSvc: marketSvc}
}

// priceResponse is the JSON response for GET /instruments/{symbol}/price.
type priceResponse struct {
	Symbol        string   `json:"symbol"`
	LastPrice     *float64 `json:"last_price"`
	VWAP          *float64 `json:"vwap"`
	Window        string   `json:"window"`
	TicksInWindow int      `json:"ticks_in_window"`
	LastTickAt    *string  `json:"last_tick_at"`
}

// GetPrice handles GET /instruments/{symbol}/price.
func (h *MarketHandler) GetPrice(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	stats, err := h.marketSvc.GetPrice(symbol)
	if err != nil {
		mapInstrumentError(w, err)
		return
	}

	resp := priceResponse{
		Symbol:        stats.Symbol,
		Window:        stats.Window,
		TicksInWindow: stats.TicksInWindow,
	}
	if stats.LastPrice != nil {
		v := stats.LastPrice.Float64()
		resp.LastPrice = &v
	}
	if stats.VWAP != nil {
		v := stats.VWAP.Float64()
		resp.VWAP = &v
	}
	if stats.LastTickAt != nil {
		s := stats.LastTickAt.UTC().Format("2006-01-02T15:04:05Z")
		resp.LastTickAt = &s
	}

	WriteJSON(w, http.StatusOK, resp)
}

// depthLevelResponse is a single price level in the depth response.
type depthLevelResponse struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// depthResponse is the JSON response for GET /instruments/{symbol}/depth.
type depthResponse struct {
	Symbol     string               `json:"symbol"`
	Bids       []depthLevelResponse `json:"bids"`
	Asks       []depthLevelResponse `json:"asks"`
	Spread     *float64             `json:"spread"`
	Mid        *float64             `json:"mid"`
	SnapshotAt string               `json:"snapshot_at"`
}

// GetDepth handles GET /instruments/{symbol}/depth.
func (h *MarketHandler) GetDepth(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	// Parse depth query param (default 10, max 50).
	depth := 10
	if d := r.URL.Query().Get("depth"); d != "" {
		var err error
		depth, err = strconv.Atoi(d)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "validation_error", "depth must be a valid integer")
			return
		}
	}

	snap, err := h.marketSvc.GetDepth(symbol, depth)
	if err != nil {
		mapInstrumentError(w, err)
		return
	}

	resp := depthResponse{
		Symbol:     snap.Symbol,
		Bids:       toDepthLevelResponses(snap.Bids),
		Asks:       toDepthLevelResponses(snap.Asks),
		Mid:        snap.Mid,
		SnapshotAt: snap.SnapshotAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if snap.Spread != nil {
		v := snap.Spread.Float64()
		resp.Spread = &v
	}

	WriteJSON(w, http.StatusOK, resp)
}

func toDepthLevelResponses(levels []service.DepthSnapshotLevel) []depthLevelResponse {
	out := make([]depthLevelResponse, len(levels))
	for i, level := range levels {
		out[i] = depthLevelResponse{
			Price: level.Price.Float64(),
			Size:  level.Size.Float64(),
		}
	}
	return out
}
