package transaction

import (
	"time"

	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/keterangan"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/transaction"
)

type transactionResponse struct {
	ID         string             `json:"id"`
	AnggotaID  string             `json:"anggota_id"`
	Jenis      transaction.Jenis  `json:"jenis"`
	Jumlah     int64              `json:"jumlah"`
	Kategori   string             `json:"kategori,omitempty"`
	Keterangan string             `json:"keterangan,omitempty"`
	Status     transaction.Status `json:"status"`
	Tanggal    time.Time          `json:"tanggal"`
	Loan       *keterangan.Terms  `json:"loan,omitempty"`
	LoanID     *string            `json:"loan_id,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:         tx.ID,
		AnggotaID:  tx.AnggotaID,
		Jenis:      tx.Jenis,
		Jumlah:     tx.Jumlah,
		Kategori:   tx.Kategori,
		Keterangan: tx.Keterangan,
		Status:     tx.Status,
		Tanggal:    tx.Tanggal,
		Loan:       tx.Loan,
		LoanID:     tx.LoanID,
		CreatedAt:  tx.CreatedAt,
		UpdatedAt:  tx.UpdatedAt,
	}
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}
