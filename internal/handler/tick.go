package handler

import (
	"errors"
	"net/http"

	"github.com/efreitasn/tickfix/internal/domain"
	"github.com/efreitasn/tickfix/internal/fixed"
	"github.com/efreitasn/tickfix/internal/service"
	"github.com/go-chi/chi/v5"
)

// TickHandler handles HTTP requests for tick ingestion and depth
// publishing.
type TickHandler struct {
	tickSvc *service.TickService
}

// NewTickHandler creates a new TickHandler.
func NewTickHandler(tickSvc *service.TickService) *TickHandler {
	return &TickHandler{tickSvc: tickSvc}
}

// ingestTickRequest is the JSON body for POST /ticks.
type ingestTickRequest struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Size   float64 `json:"size"`
}

// tickResponse is the JSON representation of a normalized tick. The
// fixed fields expose the raw scaled integers so feed consumers can
// verify what was actually stored.
type tickResponse struct {
	TickID     string  `json:"tick_id"`
	Symbol     string  `json:"symbol"`
	Price      float64 `json:"price"`
	PriceFixed int64   `json:"price_fixed"`
	Size       float64 `json:"size"`
	SizeFixed  int64   `json:"size_fixed"`
	ExecutedAt string  `json:"executed_at"`
}

// Ingest handles POST /ticks.
func (h *TickHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestTickRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	tick, err := h.tickSvc.Ingest(service.IngestTickRequest{
		Symbol: req.Symbol,
		Price:  req.Price,
		Size:   req.Size,
	})
	if err != nil {
		mapTickError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, tickResponse{
		TickID:     tick.TickID,
		Symbol:     tick.Symbol,
		Price:      tick.Price.Float64(),
		PriceFixed: tick.Price.Raw,
		Size:       tick.Size.Float64(),
		SizeFixed:  tick.Size.Raw,
		ExecutedAt: tick.ExecutedAt.UTC().Format("2006-01-02T15:04:05Z"),
	})
}

// depthLevelRequest is one level in the depth update body.
type depthLevelRequest struct {
	Side  string  `json:"side"`
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// publishDepthRequest is the JSON body for PUT /instruments/{symbol}/depth.
type publishDepthRequest struct {
	Levels []depthLevelRequest `json:"levels"`
}

// PublishDepth handles PUT /instruments/{symbol}/depth.
func (h *TickHandler) PublishDepth(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	var req publishDepthRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if len(req.Levels) == 0 {
		WriteError(w, http.StatusBadRequest, "validation_error", "levels must not be empty")
		return
	}

	for _, level := range req.Levels {
		err := h.tickSvc.ApplyDepth(service.DepthUpdateRequest{
			Symbol: symbol,
			Side:   domain.Side(level.Side),
			Price:  level.Price,
			Size:   level.Size,
		})
		if err != nil {
			mapTickError(w, err)
			return
		}
	}

	WriteJSON(w, http.StatusOK, map[string]int{"levels_applied": len(req.Levels)})
}

// mapTickError maps domain and conversion errors to HTTP responses.
// Conversion failures surface with their own error codes rather than
// being folded into a generic validation failure: an overflowing price
// is a different caller defect than a malformed request.
func mapTickError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrInstrumentNotFound):
		WriteError(w, http.StatusNotFound, "instrument_not_found", err.Error())
	case errors.Is(err, domain.ErrNegativeQuantity):
		WriteError(w, http.StatusBadRequest, "negative_quantity", err.Error())
	case errors.Is(err, fixed.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, fixed.ErrInvalidPrecision):
		WriteError(w, http.StatusBadRequest, "invalid_precision", err.Error())
	case errors.Is(err, fixed.ErrNumericOverflow):
		WriteError(w, http.StatusUnprocessableEntity, "numeric_overflow", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
