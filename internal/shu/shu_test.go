package shu_test

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/keterangan"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/member"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/shu"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/transaction"
)

func distribution(cadangan float64) shu.Distribution {
	d := shu.DefaultSettings().Distribution
	d.Cadangan = cadangan

	return d
}

func TestValidateDistribution(t *testing.T) {
	tests := []struct {
		name    string
		d       shu.Distribution
		wantErr string
	}{
		{name: "exactly 100", d: distribution(20)},
		{name: "within tolerance", d: distribution(20.005)},
		{name: "under", d: distribution(19.5), wantErr: "currently 99.50% (0.50% under)"},
		{name: "over", d: distribution(20.5), wantErr: "currently 100.50% (0.50% over)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := shu.ValidateDistribution(tt.d)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			var de *shu.DistributionError
			require.True(t, errors.As(err, &de))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefaultSettings(t *testing.T) {
	s := shu.DefaultSettings()

	require.NoError(t, shu.ValidateDistribution(s.Distribution))
	assert.Len(t, s.Distribution.Buckets(), 8)
}

func TestDistribution_Allocate(t *testing.T) {
	buckets := shu.DefaultSettings().Distribution.Allocate(1_000_003)

	var total int64
	for _, b := range buckets {
		total += b.Amount
	}

	assert.Equal(t, int64(1_000_003), total)
	assert.Equal(t, "rekening_penyimpan", buckets[0].Name)
	assert.Equal(t, int64(250_000), buckets[0].Amount)
	assert.Equal(t, "cadangan", buckets[7].Name)
	assert.Equal(t, int64(200_000+3), buckets[7].Amount)
}

func TestSampleVariables(t *testing.T) {
	vars := shu.SampleVariables([]shu.CustomVariable{
		{ID: "bonus", Value: 5},
		{ID: "  ", Value: 9},
		{ID: shu.VarLamaKeanggotaan, Value: 10},
	})

	assert.Equal(t, 5.0, vars["bonus"])
	assert.Equal(t, 10.0, vars[shu.VarLamaKeanggotaan])
	assert.NotContains(t, vars, "  ")

	for _, name := range shu.Variables() {
		assert.Contains(t, vars, name)
	}
}

func TestMemberVariables(t *testing.T) {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	m := &member.Member{ID: "A1", TanggalBergabung: day(2020, 1, 1), Status: member.StatusAktif}

	ok := func(tx *transaction.Transaction) *transaction.Transaction {
		tx.AnggotaID = "A1"
		tx.Status = transaction.StatusSukses
		return tx
	}

	history := []*transaction.Transaction{
		ok(&transaction.Transaction{ID: "S1", Jenis: transaction.JenisSimpan, Kategori: "Simpanan Pokok", Jumlah: 100_000, Tanggal: day(2024, 1, 2)}),
		ok(&transaction.Transaction{ID: "S2", Jenis: transaction.JenisSimpan, Kategori: "Simpanan Wajib", Jumlah: 600_000, Tanggal: day(2024, 2, 2)}),
		ok(&transaction.Transaction{ID: "S3", Jenis: transaction.JenisSimpan, Kategori: "Sukarela", Jumlah: 300_000, Tanggal: day(2024, 2, 3)}),
		ok(&transaction.Transaction{ID: "W1", Jenis: transaction.JenisPenarikan, Jumlah: 50_000, Tanggal: day(2024, 3, 3)}),
		ok(&transaction.Transaction{
			ID: "L1", Jenis: transaction.JenisPinjam, Jumlah: 12_000_000, Tanggal: day(2024, 1, 15),
			Loan: &keterangan.Terms{Tenor: 12, SukuBunga: 1.5, AngsuranPerBulan: 1_070_000, TotalPengembalian: 12_840_000},
		}),
		ok(&transaction.Transaction{ID: "P1", Jenis: transaction.JenisAngsuran, Jumlah: 1_070_000, Keterangan: "Angsuran pinjaman L1", Tanggal: day(2024, 2, 15)}),
		ok(&transaction.Transaction{ID: "P2", Jenis: transaction.JenisAngsuran, Jumlah: 1_070_000, LoanID: new("L1"), Tanggal: day(2024, 3, 15)}),
		{ID: "F1", AnggotaID: "A1", Jenis: transaction.JenisSimpan, Jumlah: 999_999, Status: transaction.StatusGagal, Tanggal: day(2024, 3, 1)},
		ok(&transaction.Transaction{ID: "S9", Jenis: transaction.JenisSimpan, Jumlah: 777, Tanggal: day(2025, 1, 1)}),
	}

	vars := shu.MemberVariables(m, history, []shu.CustomVariable{{ID: "bonus", Value: 1}}, day(2024, 6, 1))

	assert.Equal(t, 100_000.0, vars[shu.VarSimpananPokok])
	assert.Equal(t, 600_000.0, vars[shu.VarSimpananWajib])
	assert.Equal(t, 250_000.0, vars[shu.VarSimpananSukarela])
	assert.Equal(t, 950_000.0, vars[shu.VarTotalSimpanan])
	assert.Equal(t, 12_000_000.0, vars[shu.VarTotalPinjaman])
	assert.Equal(t, 9_860_000.0, vars[shu.VarSisaPinjaman])
	assert.Equal(t, 2_140_000.0, vars[shu.VarTotalAngsuran])
	assert.Equal(t, 428_000.0, vars[shu.VarJasaPinjaman])
	assert.Equal(t, 4.0, vars[shu.VarLamaKeanggotaan])
	assert.Equal(t, 1.0, vars["bonus"])
}

func TestPreview(t *testing.T) {
	settings := shu.DefaultSettings()
	settings.Formula = "simpanan_pokok + bonus"
	settings.THRFormula = "lama_keanggotaan * 1000"
	settings.CustomVariables = []shu.CustomVariable{{ID: "bonus", Value: 10}}

	result, err := shu.Preview(settings, nil, 5, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	require.Len(t, result.Samples, 5)

	baseline := shu.SampleVariables(nil)
	var total float64

	for i, s := range result.Samples {
		assert.Equal(t, "SAMPLE-"+string(rune('1'+i)), s.AnggotaID)
		assert.Empty(t, s.Error)
		assert.Equal(t, baseline[shu.VarLamaKeanggotaan], s.Variables[shu.VarLamaKeanggotaan])
		assert.Equal(t, 3000.0, s.THR)
		assert.Equal(t, s.Variables[shu.VarSimpananPokok]+10, s.SHU)

		for _, name := range shu.Variables() {
			assert.GreaterOrEqual(t, s.Variables[name], baseline[name]*0.8-1, name)
			assert.LessOrEqual(t, s.Variables[name], baseline[name]*1.2+1, name)
		}

		total += s.SHU
	}

	assert.InDelta(t, total, result.TotalSHU, 1e-6)
	assert.InDelta(t, total/5, result.AverageSHU, 1e-6)
	assert.Equal(t, 15_000.0, result.TotalTHR)

	again, err := shu.Preview(settings, nil, 5, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	assert.Equal(t, result, again)
}

func TestPreview_UsesRealMembers(t *testing.T) {
	members := []*member.Member{{ID: "A1", Nama: "Siti"}, {ID: "A2", Nama: "Budi"}}

	result, err := shu.Preview(shu.DefaultSettings(), members, 5, rand.New(rand.NewPCG(3, 4)))
	require.NoError(t, err)
	require.Len(t, result.Samples, 2)
	assert.Equal(t, "Siti", result.Samples[0].Nama)
	assert.Equal(t, "A2", result.Samples[1].AnggotaID)
}

func TestPreview_FormulaErrors(t *testing.T) {
	settings := shu.DefaultSettings()
	settings.Formula = "simpanan_pokok +"

	_, err := shu.Preview(settings, nil, 3, rand.New(rand.NewPCG(1, 1)))
	require.Error(t, err)

	settings.Formula = "simpanan_pokok / (lama_keanggotaan - 3)"
	settings.THRFormula = ""

	result, err := shu.Preview(settings, nil, 3, rand.New(rand.NewPCG(1, 1)))
	require.NoError(t, err)

	for _, s := range result.Samples {
		assert.Equal(t, "formula must produce a numeric value", s.Error)
	}
	assert.Zero(t, result.TotalSHU)
	assert.Zero(t, result.AverageSHU)
}
