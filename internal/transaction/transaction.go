package transaction

import (
	"errors"
	"time"

	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/keterangan"
)

var (
	ErrNotFound = errors.New("transaction not found")
	ErrInvalid  = errors.New("invalid transaction")
)

// Jenis is the kind of a transaction.
type Jenis string

const (
	JenisSimpan    Jenis = "Simpan"
	JenisPinjam    Jenis = "Pinjam"
	JenisAngsuran  Jenis = "Angsuran"
	JenisPenarikan Jenis = "Penarikan"
)

func (j Jenis) Valid() bool {
	switch j {
	case JenisSimpan, JenisPinjam, JenisAngsuran, JenisPenarikan:
		return true
	}

	return false
}

// Status represents the settlement state of a transaction.
type Status string

const (
	StatusSukses  Status = "Sukses"
	StatusPending Status = "Pending"
	StatusGagal   Status = "Gagal"
)

func (s Status) Valid() bool {
	switch s {
	case StatusSukses, StatusPending, StatusGagal:
		return true
	}

	return false
}

// Transaction is one entry of the append-only member ledger.
type Transaction struct {
	ID         string
	AnggotaID  string
	Jenis      Jenis
	Jumlah     int64 // Whole rupiah
	Kategori   string
	Keterangan string
	Status     Status
	Tanggal    time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Loan holds typed terms for a Pinjam entry. Nil for rows written by the
	// legacy system, whose terms live only in Keterangan.
	Loan *keterangan.Terms
	// LoanID links an Angsuran entry to its Pinjam entry. Nil for legacy rows,
	// which reference the loan by mentioning its id in Keterangan.
	LoanID *string
}
