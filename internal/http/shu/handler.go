package shu

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/formula"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/http/request"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/shu"
)

type Handler struct {
	svc *shu.Service
}

func NewHandler(svc *shu.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/settings", h.getSettings)
	r.Put("/settings", h.saveSettings)
	r.Get("/variables", h.variables)
	r.Post("/validate", h.validate)
	r.Post("/preview", h.preview)
	r.Post("/distribute", h.distribute)
	r.Get("/allocation", h.allocation)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps formula and distribution problems to 422 so the client can
// show them next to the offending field.
func writeError(w http.ResponseWriter, err error) {
	var (
		fe *formula.Error
		de *shu.DistributionError
	)

	switch {
	case errors.As(err, &fe):
		http.Error(w, formula.Message(fe), http.StatusUnprocessableEntity)
	case errors.As(err, &de):
		http.Error(w, de.Error(), http.StatusUnprocessableEntity)
	default:
		slog.Error("shu request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.svc.Settings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, settings)
}

type customVariableRequest struct {
	ID    string  `json:"id" validate:"required"`
	Value float64 `json:"value"`
}

type settingsRequest struct {
	Formula         string                  `json:"formula"`
	THRFormula      string                  `json:"thrFormula"`
	CustomVariables []customVariableRequest `json:"customVariables" validate:"dive"`
	Distribution    shu.Distribution        `json:"distribution"`
}

func (req settingsRequest) toSettings() *shu.Settings {
	s := &shu.Settings{
		Formula:      req.Formula,
		THRFormula:   req.THRFormula,
		Distribution: req.Distribution,
	}

	for _, v := range req.CustomVariables {
		s.CustomVariables = append(s.CustomVariables, shu.CustomVariable{ID: v.ID, Value: v.Value})
	}

	return s
}

func (h *Handler) saveSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := request.Decode(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	settings := req.toSettings()
	if err := h.svc.SaveSettings(r.Context(), settings); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, settings)
}

type variablesResponse struct {
	BuiltIn []string           `json:"builtIn"`
	Sample  map[string]float64 `json:"sample"`
}

func (h *Handler) variables(w http.ResponseWriter, r *http.Request) {
	settings, err := h.svc.Settings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, variablesResponse{
		BuiltIn: shu.Variables(),
		Sample:  shu.SampleVariables(settings.CustomVariables),
	})
}

type validateRequest struct {
	Formula string `json:"formula"`
}

func (h *Handler) validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := request.Decode(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	v, err := h.svc.ValidateFormula(r.Context(), req.Formula)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, v)
}

// preview accepts an optional draft of the settings; an empty body previews
// the saved ones.
func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	var draft *shu.Settings

	if r.ContentLength != 0 {
		var req settingsRequest
		if err := request.Decode(w, r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		draft = req.toSettings()
	}

	result, err := h.svc.Preview(r.Context(), draft)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, result)
}

func (h *Handler) distribute(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Distribute(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, result)
}

type allocationResponse struct {
	Pool    int64        `json:"pool"`
	Buckets []shu.Bucket `json:"buckets"`
}

func (h *Handler) allocation(w http.ResponseWriter, r *http.Request) {
	pool, err := strconv.ParseInt(r.URL.Query().Get("pool"), 10, 64)
	if err != nil || pool < 0 {
		http.Error(w, "pool query parameter must be a non-negative integer", http.StatusBadRequest)
		return
	}

	settings, err := h.svc.Settings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, allocationResponse{Pool: pool, Buckets: settings.Distribution.Allocate(pool)})
}
