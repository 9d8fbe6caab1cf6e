package transaction

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/http/request"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/loan"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/transaction"
)

type Handler struct {
	svc *transaction.Service
}

func NewHandler(svc *transaction.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Post("/loans", h.recordLoan)
	r.Post("/installments", h.recordInstallment)
	r.Post("/backfill", h.backfill)
	r.Get("/{id}", h.get)
	r.Patch("/{id}/status", h.updateStatus)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, transaction.ErrNotFound):
		http.Error(w, "transaction not found", http.StatusNotFound)
	case errors.Is(err, transaction.ErrInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("transaction request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

type createTransactionRequest struct {
	AnggotaID  string             `json:"anggota_id" validate:"required"`
	Jenis      transaction.Jenis  `json:"jenis" validate:"required,oneof=Simpan Pinjam Angsuran Penarikan"`
	Jumlah     int64              `json:"jumlah" validate:"gt=0"`
	Kategori   string             `json:"kategori"`
	Keterangan string             `json:"keterangan"`
	Status     transaction.Status `json:"status" validate:"omitempty,oneof=Sukses Pending Gagal"`
	Tanggal    time.Time          `json:"tanggal"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := request.Decode(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := h.svc.Create(r.Context(), transaction.CreateParams{
		AnggotaID:  req.AnggotaID,
		Jenis:      req.Jenis,
		Jumlah:     req.Jumlah,
		Kategori:   req.Kategori,
		Keterangan: req.Keterangan,
		Status:     req.Status,
		Tanggal:    req.Tanggal,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(tx))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if anggotaID := q.Get("anggota_id"); anggotaID != "" {
		txs, err := h.svc.ListForMember(r.Context(), anggotaID)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toResponseList(txs))

		return
	}

	filter := transaction.ListFilter{}

	if s := q.Get("jenis"); s != "" {
		filter.Jenis = new(transaction.Jenis(s))
	}

	if s := q.Get("status"); s != "" {
		filter.Status = new(transaction.Status(s))
	}

	if s := q.Get("start_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.StartDate = new(t)
		}
	}

	if s := q.Get("end_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.EndDate = new(t)
		}
	}

	txs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponseList(txs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	tx, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(tx))
}

type updateStatusRequest struct {
	Status transaction.Status `json:"status" validate:"required,oneof=Sukses Pending Gagal"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := request.Decode(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(tx))
}

type recordLoanRequest struct {
	AnggotaID string    `json:"anggota_id" validate:"required"`
	Jumlah    int64     `json:"jumlah" validate:"gt=0"`
	Kategori  string    `json:"kategori" validate:"required"`
	Tenor     int       `json:"tenor" validate:"gt=0,lte=600"`
	SukuBunga float64   `json:"suku_bunga" validate:"gte=0"`
	Tanggal   time.Time `json:"tanggal"`
	// Optional overrides of the flat-rate terms.
	AngsuranPerBulan  int64 `json:"angsuran_per_bulan" validate:"gte=0"`
	TotalPengembalian int64 `json:"total_pengembalian" validate:"gte=0"`
}

func (h *Handler) recordLoan(w http.ResponseWriter, r *http.Request) {
	var req recordLoanRequest
	if err := request.Decode(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	terms := loan.FlatTerms(req.Jumlah, req.Tenor, req.SukuBunga)
	if req.AngsuranPerBulan > 0 {
		terms.AngsuranPerBulan = req.AngsuranPerBulan
		terms.TotalPengembalian = req.AngsuranPerBulan * int64(req.Tenor)
	}

	if req.TotalPengembalian > 0 {
		terms.TotalPengembalian = req.TotalPengembalian
	}

	tx, err := h.svc.RecordLoan(r.Context(), transaction.LoanParams{
		AnggotaID: req.AnggotaID,
		Jumlah:    req.Jumlah,
		Kategori:  req.Kategori,
		Terms:     terms,
		Tanggal:   req.Tanggal,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(tx))
}

type recordInstallmentRequest struct {
	AnggotaID string    `json:"anggota_id"`
	LoanID    string    `json:"loan_id" validate:"required"`
	Jumlah    int64     `json:"jumlah" validate:"gt=0"`
	Note      string    `json:"note"`
	Tanggal   time.Time `json:"tanggal"`
}

func (h *Handler) recordInstallment(w http.ResponseWriter, r *http.Request) {
	var req recordInstallmentRequest
	if err := request.Decode(w, r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tx, err := h.svc.RecordInstallment(r.Context(), transaction.InstallmentParams{
		AnggotaID: req.AnggotaID,
		LoanID:    req.LoanID,
		Jumlah:    req.Jumlah,
		Note:      req.Note,
		Tanggal:   req.Tanggal,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(tx))
}

type backfillResponse struct {
	Loans        int `json:"loans"`
	Installments int `json:"installments"`
}

func (h *Handler) backfill(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.BackfillLoanMetadata(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, backfillResponse{Loans: res.Loans, Installments: res.Installments})
}
