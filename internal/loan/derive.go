package loan

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/keterangan"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/transaction"
)

var (
	pokokShare = decimal.NewFromFloat(0.8)
	jasaShare  = decimal.NewFromFloat(0.2)
)

// ExtractLoanDetailsFromKeterangan reads loan terms from a free-text description.
func ExtractLoanDetailsFromKeterangan(text string) keterangan.Terms {
	return keterangan.Parse(text)
}

// TermsOf returns the terms of a disbursement, preferring typed metadata over
// the description.
func TermsOf(tx *transaction.Transaction) keterangan.Terms {
	if tx.Loan != nil && keterangan.ValidTenor(tx.Loan.Tenor) {
		return *tx.Loan
	}

	return keterangan.Parse(tx.Keterangan)
}

// IsLinked reports whether payment references the loan with the given id.
// Rows with a typed link are matched on it; legacy rows match when their
// description contains the loan id.
func IsLinked(payment *transaction.Transaction, loanID string) bool {
	if loanID == "" {
		return false
	}

	if payment.LoanID != nil {
		return *payment.LoanID == loanID
	}

	return strings.Contains(payment.Keterangan, loanID)
}

// Payments returns the successful installments of a loan found in history,
// oldest first.
func Payments(loanTx *transaction.Transaction, history []*transaction.Transaction) []*transaction.Transaction {
	var payments []*transaction.Transaction

	for _, tx := range history {
		if tx.Jenis != transaction.JenisAngsuran || tx.Status != transaction.StatusSukses {
			continue
		}

		if tx.AnggotaID != loanTx.AnggotaID || !IsLinked(tx, loanTx.ID) {
			continue
		}

		payments = append(payments, tx)
	}

	slices.SortStableFunc(payments, func(a, b *transaction.Transaction) int {
		return a.Tanggal.Compare(b.Tanggal)
	})

	return payments
}

// Derive computes the state of the loan disbursed by loanTx from the member's
// transaction history. It reports false when loanTx is not a disbursement.
func Derive(loanTx *transaction.Transaction, history []*transaction.Transaction) (*Details, bool) {
	if loanTx == nil || loanTx.Jenis != transaction.JenisPinjam {
		return nil, false
	}

	terms := TermsOf(loanTx)

	var paid int64
	for _, p := range Payments(loanTx, history) {
		paid += p.Jumlah
	}

	sisa := max(0, loanTx.Jumlah-paid)

	status := StatusAktif
	if sisa == 0 {
		status = StatusLunas
	}

	return &Details{
		ID:                loanTx.ID,
		AnggotaID:         loanTx.AnggotaID,
		Kategori:          loanTx.Kategori,
		JumlahPinjaman:    loanTx.Jumlah,
		Tenor:             terms.Tenor,
		SukuBunga:         terms.SukuBunga,
		AngsuranPerBulan:  terms.AngsuranPerBulan,
		TotalPengembalian: terms.TotalPengembalian,
		TotalDibayar:      paid,
		SisaPinjaman:      sisa,
		Status:            status,
		Tanggal:           loanTx.Tanggal,
		JatuhTempo:        loanTx.Tanggal.AddDate(0, terms.Tenor, 0),
	}, true
}

// Schedule builds the repayment schedule of a loan as of now.
//
// Payments are assigned to installments first come, first served: walking
// the installments in order, each one takes the oldest payment not yet used
// by an earlier installment, provided it was made no later than GraceDays
// after the installment's due date. A payment settles at most one installment.
func Schedule(loanTx *transaction.Transaction, history []*transaction.Transaction, now time.Time) []Installment {
	d, ok := Derive(loanTx, history)
	if !ok {
		return []Installment{}
	}

	payments := Payments(loanTx, history)
	used := make([]bool, len(payments))
	schedule := make([]Installment, 0, d.Tenor)

	for i := 1; i <= d.Tenor; i++ {
		due := d.Tanggal.AddDate(0, i, 0)
		limit := due.AddDate(0, 0, GraceDays)

		entry := Installment{
			AngsuranKe: i,
			JatuhTempo: due,
			Jumlah:     d.AngsuranPerBulan,
			Status:     InstallmentBelumBayar,
		}

		for j, p := range payments {
			if used[j] || p.Tanggal.After(limit) {
				continue
			}

			used[j] = true
			paidAt := p.Tanggal
			entry.Status = InstallmentLunas
			entry.TanggalBayar = &paidAt
			entry.NominalPokok, entry.NominalJasa = Split(d.AngsuranPerBulan)

			break
		}

		if entry.Status != InstallmentLunas && now.After(due) {
			entry.Status = InstallmentTerlambat
		}

		schedule = append(schedule, entry)
	}

	return schedule
}

// RemainingInstallments counts installments not yet paid, by number of
// successful payments rather than by schedule matching.
func RemainingInstallments(loanTx *transaction.Transaction, history []*transaction.Transaction) int {
	if loanTx == nil || loanTx.Jenis != transaction.JenisPinjam {
		return 0
	}

	return max(0, TermsOf(loanTx).Tenor-len(Payments(loanTx, history)))
}

// Split divides an installment into principal and interest using the fixed
// 80/20 display ratio. Both parts are rounded down.
func Split(angsuran int64) (pokok, jasa int64) {
	a := decimal.NewFromInt(angsuran)

	return a.Mul(pokokShare).Floor().IntPart(), a.Mul(jasaShare).Floor().IntPart()
}

// InfoFromTerms builds a summary for a disbursement whose history is unknown.
func InfoFromTerms(tx *transaction.Transaction) *Info {
	terms := TermsOf(tx)
	_, jasa := Split(terms.AngsuranPerBulan)

	status := StatusAktif
	if tx.Jumlah <= 0 {
		status = StatusLunas
	}

	return &Info{
		ID:                tx.ID,
		Kategori:          tx.Kategori,
		JumlahPinjaman:    tx.Jumlah,
		Tenor:             terms.Tenor,
		SukuBunga:         terms.SukuBunga,
		AngsuranPerBulan:  terms.AngsuranPerBulan,
		TotalPengembalian: terms.TotalPengembalian,
		SisaPinjaman:      max(0, tx.Jumlah),
		Status:            status,
		NominalJasa:       jasa,
		TotalNominalJasa:  jasa * int64(terms.Tenor),
	}
}

func infoFromDetails(d *Details) *Info {
	_, jasa := Split(d.AngsuranPerBulan)

	return &Info{
		ID:                d.ID,
		Kategori:          d.Kategori,
		JumlahPinjaman:    d.JumlahPinjaman,
		Tenor:             d.Tenor,
		SukuBunga:         d.SukuBunga,
		AngsuranPerBulan:  d.AngsuranPerBulan,
		TotalPengembalian: d.TotalPengembalian,
		SisaPinjaman:      d.SisaPinjaman,
		Status:            d.Status,
		NominalJasa:       jasa,
		TotalNominalJasa:  jasa * int64(d.Tenor),
		Derived:           true,
	}
}
