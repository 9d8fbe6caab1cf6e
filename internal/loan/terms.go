package loan

import (
	"github.com/shopspring/decimal"

	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/keterangan"
)

var hundred = decimal.NewFromInt(100)

// FlatTerms computes terms for a flat-rate loan: every month repays an equal
// share of the principal plus sukuBunga percent of the original principal.
// The installment is rounded up to the next whole rupiah.
func FlatTerms(principal int64, tenor int, sukuBunga float64) keterangan.Terms {
	if tenor <= 0 {
		tenor = keterangan.DefaultTenor
	}

	p := decimal.NewFromInt(principal)
	pokok := p.Div(decimal.NewFromInt(int64(tenor)))
	jasa := p.Mul(decimal.NewFromFloat(sukuBunga)).Div(hundred)
	angsuran := pokok.Add(jasa).Ceil().IntPart()

	return keterangan.Terms{
		Tenor:             tenor,
		SukuBunga:         sukuBunga,
		AngsuranPerBulan:  angsuran,
		TotalPengembalian: angsuran * int64(tenor),
	}
}
