package handler

import (
	"errors"
	"net/http"

	"github.com/efreitasn/tickfix/internal/domain"
	"github.com/efreitasn/tickfix/internal/service"
	"github.com/go-chi/chi/v5"
)

// InstrumentHandler handles HTTP requests for instrument endpoints.
type InstrumentHandler struct {
	instSvc *service.InstrumentService
}

// NewInstrumentHandler creates a new InstrumentHandler.
func NewInstrumentHandler(instSvc *service.InstrumentService) *InstrumentHandler {
	return &InstrumentHandler{instSvc: instSvc}
}

// registerInstrumentRequest is the JSON body for POST /instruments.
type registerInstrumentRequest struct {
	Symbol         string `json:"symbol"`
	PricePrecision uint8  `json:"price_precision"`
	SizePrecision  uint8  `json:"size_precision"`
}

// instrumentResponse is the JSON representation of an instrument.
type instrumentResponse struct {
	Symbol         string `json:"symbol"`
	PricePrecision uint8  `json:"price_precision"`
	SizePrecision  uint8  `json:"size_precision"`
}

// Register handles POST /instruments.
func (h *InstrumentHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerInstrumentRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	inst, err := h.instSvc.Register(service.RegisterInstrumentRequest{
		Symbol:         req.Symbol,
		PricePrecision: req.PricePrecision,
		SizePrecision:  req.SizePrecision,
	})
	if err != nil {
		mapInstrumentError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, toInstrumentResponse(inst))
}

// Get handles GET /instruments/{symbol}.
func (h *InstrumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	inst, err := h.instSvc.Get(symbol)
	if err != nil {
		mapInstrumentError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, toInstrumentResponse(inst))
}

// listInstrumentsResponse is the JSON response for GET /instruments.
type listInstrumentsResponse struct {
	Instruments []instrumentResponse `json:"instruments"`
}

// List handles GET /instruments.
func (h *InstrumentHandler) List(w http.ResponseWriter, r *http.Request) {
	all := h.instSvc.List()

	resp := listInstrumentsResponse{
		Instruments: make([]instrumentResponse, len(all)),
	}
	for i, inst := range all {
		resp.Instruments[i] = toInstrumentResponse(inst)
	}

	WriteJSON(w, http.StatusOK, resp)
}

func toInstrumentResponse(inst domain.Instrument) instrumentResponse {
	return instrumentResponse{
		Symbol:         inst.Symbol,
		PricePrecision: inst.PricePrecision,
		SizePrecision:  inst.SizePrecision,
	}
}

// mapInstrumentError maps domain errors to HTTP responses for
// instrument endpoints.
func mapInstrumentError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrInstrumentAlreadyExists):
		WriteError(w, http.StatusConflict, "instrument_already_exists", err.Error())
	case errors.Is(err, domain.ErrInstrumentNotFound):
		WriteError(w, http.StatusNotFound, "instrument_not_found", err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
