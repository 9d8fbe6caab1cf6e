package loan

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/loan"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/transaction"
)

type Handler struct {
	loans        *loan.Service
	transactions *transaction.Service
}

func NewHandler(loans *loan.Service, transactions *transaction.Service) *Handler {
	return &Handler{loans: loans, transactions: transactions}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{id}", h.get)
	r.Get("/{id}/schedule", h.schedule)
	r.Get("/{id}/remaining", h.remaining)
	r.Get("/{id}/info", h.info)
}

// MemberRoutes serves the loans of the member identified by the {id} parameter.
func (h *Handler) MemberRoutes(r chi.Router) {
	r.Get("/", h.memberLoans)
	r.Get("/total", h.memberTotal)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	d, err := h.loans.GetLoanDetails(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, loan.ErrNotFound) {
			http.Error(w, "loan not found", http.StatusNotFound)
			return
		}

		slog.Error("failed to derive loan", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, toDetailsResponse(d))
}

func (h *Handler) schedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.loans.GenerateInstallmentSchedule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("failed to generate schedule", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, toScheduleResponse(schedule))
}

type remainingResponse struct {
	LoanID    string `json:"loan_id"`
	Remaining int    `json:"remaining"`
}

func (h *Handler) remaining(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	n, err := h.loans.CalculateRemainingInstallments(r.Context(), id)
	if err != nil {
		slog.Error("failed to count remaining installments", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, remainingResponse{LoanID: id, Remaining: n})
}

func (h *Handler) info(w http.ResponseWriter, r *http.Request) {
	tx, err := h.transactions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			http.Error(w, "loan not found", http.StatusNotFound)
			return
		}

		slog.Error("failed to get transaction", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	if tx.Jenis != transaction.JenisPinjam {
		http.Error(w, "loan not found", http.StatusNotFound)
		return
	}

	writeJSON(w, toInfoResponse(h.loans.ExtractLoanInfo(r.Context(), tx)))
}

func (h *Handler) memberLoans(w http.ResponseWriter, r *http.Request) {
	anggotaID := chi.URLParam(r, "id")

	loans, err := h.loans.ListMemberLoans(r.Context(), anggotaID)
	if err != nil {
		slog.Error("failed to list member loans", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	resp := memberLoansResponse{
		AnggotaID:     anggotaID,
		TotalPinjaman: loan.TotalOutstanding(loans),
		Loans:         make([]detailsResponse, len(loans)),
	}
	for i, d := range loans {
		resp.Loans[i] = toDetailsResponse(d)
	}

	writeJSON(w, resp)
}

type totalResponse struct {
	AnggotaID     string `json:"anggota_id"`
	TotalPinjaman int64  `json:"total_pinjaman"`
}

func (h *Handler) memberTotal(w http.ResponseWriter, r *http.Request) {
	anggotaID := chi.URLParam(r, "id")

	total, err := h.loans.CalculateMemberTotalPinjaman(r.Context(), anggotaID)
	if err != nil {
		slog.Error("failed to total member loans", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, totalResponse{AnggotaID: anggotaID, TotalPinjaman: total})
}
