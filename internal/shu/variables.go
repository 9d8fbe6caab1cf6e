package shu

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/loan"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/member"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/transaction"
)

// Variable names available to formulas.
const (
	VarSimpananPokok    = "simpanan_pokok"
	VarSimpananWajib    = "simpanan_wajib"
	VarSimpananSukarela = "simpanan_sukarela"
	VarTotalSimpanan    = "total_simpanan"
	VarTotalPinjaman    = "total_pinjaman"
	VarSisaPinjaman     = "sisa_pinjaman"
	VarTotalAngsuran    = "total_angsuran"
	VarJasaPinjaman     = "jasa_pinjaman"
	VarLamaKeanggotaan  = "lama_keanggotaan"
)

var baseline = map[string]float64{
	VarSimpananPokok:    100_000,
	VarSimpananWajib:    1_200_000,
	VarSimpananSukarela: 500_000,
	VarTotalSimpanan:    1_800_000,
	VarTotalPinjaman:    5_000_000,
	VarSisaPinjaman:     2_500_000,
	VarTotalAngsuran:    2_675_000,
	VarJasaPinjaman:     535_000,
	VarLamaKeanggotaan:  3,
}

// Variables returns the names of the built-in variables, sorted.
func Variables() []string {
	return slices.Sorted(maps.Keys(baseline))
}

// SampleVariables returns a representative environment for dry runs: the
// built-in baseline values overlaid with the custom variables.
func SampleVariables(custom []CustomVariable) map[string]float64 {
	vars := maps.Clone(baseline)
	mergeCustom(vars, custom)

	return vars
}

func mergeCustom(vars map[string]float64, custom []CustomVariable) {
	for _, c := range custom {
		if id := strings.TrimSpace(c.ID); id != "" {
			vars[id] = c.Value
		}
	}
}

// Kategori values that mark a Simpan entry as a mandatory deposit.
const (
	KategoriSimpananPokok = "Simpanan Pokok"
	KategoriSimpananWajib = "Simpanan Wajib"
)

// MemberVariables computes the formula environment of one member from their
// transaction history as of asOf. Withdrawals reduce voluntary savings.
func MemberVariables(m *member.Member, history []*transaction.Transaction, custom []CustomVariable, asOf time.Time) map[string]float64 {
	var pokok, wajib, sukarela, angsuran int64

	for _, tx := range history {
		if tx.Status != transaction.StatusSukses || tx.AnggotaID != m.ID || tx.Tanggal.After(asOf) {
			continue
		}

		switch tx.Jenis {
		case transaction.JenisSimpan:
			switch {
			case strings.EqualFold(tx.Kategori, KategoriSimpananPokok):
				pokok += tx.Jumlah
			case strings.EqualFold(tx.Kategori, KategoriSimpananWajib):
				wajib += tx.Jumlah
			default:
				sukarela += tx.Jumlah
			}
		case transaction.JenisPenarikan:
			sukarela -= tx.Jumlah
		case transaction.JenisAngsuran:
			angsuran += tx.Jumlah
		}
	}

	var pinjaman, sisa, jasa int64

	for _, tx := range history {
		if tx.AnggotaID != m.ID || tx.Status != transaction.StatusSukses || tx.Tanggal.After(asOf) {
			continue
		}

		d, ok := loan.Derive(tx, history)
		if !ok {
			continue
		}

		pinjaman += d.JumlahPinjaman
		if d.Status == loan.StatusAktif {
			sisa += d.SisaPinjaman
		}

		_, perInstallment := loan.Split(d.AngsuranPerBulan)
		paid := min(len(loan.Payments(tx, history)), d.Tenor)
		jasa += perInstallment * int64(paid)
	}

	vars := map[string]float64{
		VarSimpananPokok:    float64(pokok),
		VarSimpananWajib:    float64(wajib),
		VarSimpananSukarela: float64(sukarela),
		VarTotalSimpanan:    float64(pokok + wajib + sukarela),
		VarTotalPinjaman:    float64(pinjaman),
		VarSisaPinjaman:     float64(sisa),
		VarTotalAngsuran:    float64(angsuran),
		VarJasaPinjaman:     float64(jasa),
		VarLamaKeanggotaan:  float64(m.YearsOfMembership(asOf)),
	}
	mergeCustom(vars, custom)

	return vars
}
