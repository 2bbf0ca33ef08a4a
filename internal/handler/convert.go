package handler

import (
	"net/http"

	"github.com/efreitasn/tickfix/internal/fixed"
)

// ConvertHandler exposes the raw conversion pair for tooling and feed
// debugging. It is stateless: precision comes from the request, not
// from a registered instrument.
type ConvertHandler struct{}

// NewConvertHandler creates a new ConvertHandler.
func NewConvertHandler() *ConvertHandler {
	return &ConvertHandler{}
}

// convertRequest is the JSON body for POST /convert. Exactly one of
// value and fixed must be set; the other direction is computed.
type convertRequest struct {
	Value     *float64 `json:"value"`
	Fixed     *int64   `json:"fixed"`
	Precision uint8    `json:"precision"`
}

// convertResponse is the JSON response for POST /convert.
type convertResponse struct {
	Value     float64 `json:"value"`
	Fixed     int64   `json:"fixed"`
	Precision uint8   `json:"precision"`
}

// Convert handles POST /convert.
func (h *ConvertHandler) Convert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if (req.Value == nil) == (req.Fixed == nil) {
		WriteError(w, http.StatusBadRequest, "validation_error",
			"exactly one of 'value' and 'fixed' must be set")
		return
	}

	resp := convertResponse{Precision: req.Precision}
	if req.Value != nil {
		raw, err := fixed.ToFixed(*req.Value, req.Precision)
		if err != nil {
			mapTickError(w, err)
			return
		}
		// Report the float the stored integer actually represents, not
		// the input: the difference is exactly the rounding applied.
		view, err := fixed.ToFloat(raw, req.Precision)
		if err != nil {
			mapTickError(w, err)
			return
		}
		resp.Fixed = raw
		resp.Value = view
	} else {
		view, err := fixed.ToFloat(*req.Fixed, req.Precision)
		if err != nil {
			mapTickError(w, err)
			return
		}
		resp.Fixed = *req.Fixed
		resp.Value = view
	}

	WriteJSON(w, http.StatusOK, resp)
}
