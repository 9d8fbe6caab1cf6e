// Package loan derives loan state from the member transaction log. Nothing
// here is persisted: every call recomputes from the current log snapshot.
package loan

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("loan not found")

// GraceDays is how long after a due date a payment still settles that installment.
const GraceDays = 30

// Status represents whether a loan still has principal outstanding.
type Status string

const (
	StatusAktif Status = "Aktif"
	StatusLunas Status = "Lunas"
)

// InstallmentStatus represents the state of one scheduled installment.
type InstallmentStatus string

const (
	InstallmentBelumBayar InstallmentStatus = "belum-bayar"
	InstallmentLunas      InstallmentStatus = "lunas"
	InstallmentTerlambat  InstallmentStatus = "terlambat"
)

// Details is the derived state of one loan.
type Details struct {
	ID                string
	AnggotaID         string
	Kategori          string
	JumlahPinjaman    int64
	Tenor             int
	SukuBunga         float64 // Percent per month
	AngsuranPerBulan  int64
	TotalPengembalian int64
	TotalDibayar      int64
	SisaPinjaman      int64
	Status            Status
	Tanggal           time.Time // Disbursement date
	JatuhTempo        time.Time
}

// Installment is one entry of a loan's repayment schedule.
type Installment struct {
	AngsuranKe   int
	JatuhTempo   time.Time
	Jumlah       int64
	Status       InstallmentStatus
	TanggalBayar *time.Time
	NominalPokok int64
	NominalJasa  int64
}

// Info is the loan summary shown on receipts and reports.
type Info struct {
	ID                string
	Kategori          string
	JumlahPinjaman    int64
	Tenor             int
	SukuBunga         float64
	AngsuranPerBulan  int64
	TotalPengembalian int64
	SisaPinjaman      int64
	Status            Status
	NominalJasa       int64
	TotalNominalJasa  int64
	// Derived is false when the ledger could not be read and the values come
	// from the transaction's own description only.
	Derived bool
}
