package loan_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/keterangan"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/loan"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/transaction"
)

const loanText = "Pinjaman Reguler - Jumlah Tenor: 12 bulan, Suku Bunga: 1.5%, " +
	"Angsuran per Bulan: Rp 1.070.000, Total Pengembalian: Rp 12.840.000"

// fakeLedger is an in-memory Ledger.
type fakeLedger struct {
	txs []*transaction.Transaction
	err error
}

func (f *fakeLedger) Get(_ context.Context, id string) (*transaction.Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}

	for _, tx := range f.txs {
		if tx.ID == id {
			return tx, nil
		}
	}

	return nil, transaction.ErrNotFound
}

func (f *fakeLedger) ListForMember(_ context.Context, anggotaID string) ([]*transaction.Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}

	var out []*transaction.Transaction
	for _, tx := range f.txs {
		if tx.AnggotaID == anggotaID {
			out = append(out, tx)
		}
	}

	return out, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func disbursement(id, anggota string, jumlah int64, tanggal time.Time) *transaction.Transaction {
	return &transaction.Transaction{
		ID:         id,
		AnggotaID:  anggota,
		Jenis:      transaction.JenisPinjam,
		Jumlah:     jumlah,
		Kategori:   "Reguler",
		Keterangan: loanText,
		Status:     transaction.StatusSukses,
		Tanggal:    tanggal,
	}
}

func payment(id, anggota, loanID string, jumlah int64, tanggal time.Time) *transaction.Transaction {
	return &transaction.Transaction{
		ID:         id,
		AnggotaID:  anggota,
		Jenis:      transaction.JenisAngsuran,
		Jumlah:     jumlah,
		Keterangan: "Angsuran pinjaman " + loanID,
		Status:     transaction.StatusSukses,
		Tanggal:    tanggal,
	}
}

func scenario() *fakeLedger {
	return &fakeLedger{txs: []*transaction.Transaction{
		disbursement("TRX-L1", "A1", 12_000_000, day(2024, 1, 15)),
		payment("TRX-P1", "A1", "TRX-L1", 1_070_000, day(2024, 2, 10)),
		payment("TRX-P2", "A1", "TRX-L1", 1_070_000, day(2024, 3, 14)),
		payment("TRX-P3", "A1", "TRX-L1", 1_070_000, day(2024, 4, 20)),
	}}
}

func TestService_GetLoanDetails(t *testing.T) {
	svc := loan.NewService(scenario())

	d, err := svc.GetLoanDetails(context.Background(), "TRX-L1")
	require.NoError(t, err)

	assert.Equal(t, int64(12_000_000), d.JumlahPinjaman)
	assert.Equal(t, 12, d.Tenor)
	assert.Equal(t, 1.5, d.SukuBunga)
	assert.Equal(t, int64(1_070_000), d.AngsuranPerBulan)
	assert.Equal(t, int64(12_840_000), d.TotalPengembalian)
	assert.Equal(t, int64(3_210_000), d.TotalDibayar)
	assert.Equal(t, int64(8_790_000), d.SisaPinjaman)
	assert.Equal(t, loan.StatusAktif, d.Status)
	assert.Equal(t, day(2025, 1, 15), d.JatuhTempo)
}

func TestService_GetLoanDetails_NotFound(t *testing.T) {
	ledger := scenario()
	svc := loan.NewService(ledger)

	_, err := svc.GetLoanDetails(context.Background(), "missing")
	assert.ErrorIs(t, err, loan.ErrNotFound)

	// A payment id is not a loan.
	_, err = svc.GetLoanDetails(context.Background(), "TRX-P1")
	assert.ErrorIs(t, err, loan.ErrNotFound)
}

func TestService_GetLoanDetails_LedgerError(t *testing.T) {
	svc := loan.NewService(&fakeLedger{err: errors.New("connection refused")})

	_, err := svc.GetLoanDetails(context.Background(), "TRX-L1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, loan.ErrNotFound)
}

func TestService_GetLoanDetails_Idempotent(t *testing.T) {
	svc := loan.NewService(scenario())

	first, err := svc.GetLoanDetails(context.Background(), "TRX-L1")
	require.NoError(t, err)
	second, err := svc.GetLoanDetails(context.Background(), "TRX-L1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDerive_BalanceNeverIncreases(t *testing.T) {
	loanTx := disbursement("TRX-L1", "A1", 3_000_000, day(2024, 1, 15))
	history := []*transaction.Transaction{loanTx}

	prev, ok := loan.Derive(loanTx, history)
	require.True(t, ok)

	for i := range 5 {
		history = append(history, payment("P", "A1", "TRX-L1", 1_070_000, day(2024, time.Month(2+i), 1)))

		d, ok := loan.Derive(loanTx, history)
		require.True(t, ok)
		assert.LessOrEqual(t, d.SisaPinjaman, prev.SisaPinjaman)
		assert.GreaterOrEqual(t, d.SisaPinjaman, int64(0))
		prev = d
	}

	assert.Equal(t, int64(0), prev.SisaPinjaman)
	assert.Equal(t, loan.StatusLunas, prev.Status)
}

func TestDerive_IgnoresUnrelatedTransactions(t *testing.T) {
	loanTx := disbursement("TRX-L1", "A1", 12_000_000, day(2024, 1, 15))

	pending := payment("P-pending", "A1", "TRX-L1", 500_000, day(2024, 2, 1))
	pending.Status = transaction.StatusPending

	otherMember := payment("P-other", "A2", "TRX-L1", 500_000, day(2024, 2, 1))

	otherLoan := payment("P-otherloan", "A1", "TRX-L9", 500_000, day(2024, 2, 1))

	simpan := &transaction.Transaction{
		ID: "S1", AnggotaID: "A1", Jenis: transaction.JenisSimpan, Jumlah: 100_000,
		Keterangan: "setoran TRX-L1", Status: transaction.StatusSukses, Tanggal: day(2024, 2, 1),
	}

	d, ok := loan.Derive(loanTx, []*transaction.Transaction{loanTx, pending, otherMember, otherLoan, simpan})
	require.True(t, ok)
	assert.Equal(t, int64(0), d.TotalDibayar)
	assert.Equal(t, int64(12_000_000), d.SisaPinjaman)
}

func TestDerive_NotALoan(t *testing.T) {
	p := payment("P", "A1", "TRX-L1", 1, day(2024, 1, 1))

	d, ok := loan.Derive(p, nil)
	assert.False(t, ok)
	assert.Nil(t, d)
}

func TestSchedule_OversizedTenor(t *testing.T) {
	now := day(2024, 6, 1)

	t.Run("LegacyDescription", func(t *testing.T) {
		l := disbursement("TRX-L9", "A1", 1_000_000, day(2024, 1, 15))
		l.Keterangan = "Tenor: 35184372088832 bulan"

		d, ok := loan.Derive(l, nil)
		require.True(t, ok)
		assert.Equal(t, keterangan.DefaultTenor, d.Tenor)
		assert.Len(t, loan.Schedule(l, nil, now), keterangan.DefaultTenor)
	})

	t.Run("TypedTerms", func(t *testing.T) {
		l := disbursement("TRX-L9", "A1", 1_000_000, day(2024, 1, 15))
		l.Keterangan = "Tenor: 24 bulan"
		l.Loan = &keterangan.Terms{Tenor: 1_000_000_000, SukuBunga: 1}

		assert.Len(t, loan.Schedule(l, nil, now), 24)
		assert.Equal(t, 24, loan.RemainingInstallments(l, nil))
	})
}

func TestIsLinked(t *testing.T) {
	typed := payment("P1", "A1", "TRX-L1", 1, day(2024, 1, 1))
	typed.LoanID = new("TRX-L12")

	tests := []struct {
		name    string
		payment *transaction.Transaction
		loanID  string
		want    bool
	}{
		{name: "substring match", payment: payment("P", "A1", "TRX-L1", 1, day(2024, 1, 1)), loanID: "TRX-L1", want: true},
		{name: "case sensitive", payment: payment("P", "A1", "trx-l1", 1, day(2024, 1, 1)), loanID: "TRX-L1", want: false},
		{name: "typed link wins over text", payment: typed, loanID: "TRX-L1", want: false},
		{name: "typed link exact", payment: typed, loanID: "TRX-L12", want: true},
		{name: "empty id never links", payment: payment("P", "A1", "", 1, day(2024, 1, 1)), loanID: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, loan.IsLinked(tt.payment, tt.loanID))
		})
	}
}

func TestService_GenerateInstallmentSchedule(t *testing.T) {
	now := func() time.Time { return day(2024, 6, 1) }
	svc := loan.NewService(scenario(), loan.WithClock(now))

	schedule, err := svc.GenerateInstallmentSchedule(context.Background(), "TRX-L1")
	require.NoError(t, err)
	require.Len(t, schedule, 12)

	for i, entry := range schedule {
		assert.Equal(t, i+1, entry.AngsuranKe)
		assert.Equal(t, day(2024, 1, 15).AddDate(0, i+1, 0), entry.JatuhTempo)
		assert.Equal(t, int64(1_070_000), entry.Jumlah)
	}

	for _, entry := range schedule[:3] {
		assert.Equal(t, loan.InstallmentLunas, entry.Status)
		require.NotNil(t, entry.TanggalBayar)
		assert.Equal(t, int64(856_000), entry.NominalPokok)
		assert.Equal(t, int64(214_000), entry.NominalJasa)
	}

	assert.Equal(t, day(2024, 4, 20), *schedule[2].TanggalBayar)

	// Due 15 May, unpaid on 1 June.
	assert.Equal(t, loan.InstallmentTerlambat, schedule[3].Status)
	assert.Nil(t, schedule[3].TanggalBayar)
	assert.Zero(t, schedule[3].NominalPokok)

	for _, entry := range schedule[4:] {
		assert.Equal(t, loan.InstallmentBelumBayar, entry.Status)
	}
}

func TestService_GenerateInstallmentSchedule_UnknownLoan(t *testing.T) {
	svc := loan.NewService(scenario())

	schedule, err := svc.GenerateInstallmentSchedule(context.Background(), "missing")
	require.NoError(t, err)
	assert.NotNil(t, schedule)
	assert.Empty(t, schedule)
}

func TestSchedule_Matching(t *testing.T) {
	loanTx := disbursement("L", "A1", 3_000_000, day(2024, 1, 15))
	loanTx.Loan = &keterangan.Terms{Tenor: 3, SukuBunga: 1, AngsuranPerBulan: 1_000_000, TotalPengembalian: 3_000_000}
	now := day(2024, 12, 31)

	tests := []struct {
		name     string
		payments []*transaction.Transaction
		want     []loan.InstallmentStatus
	}{
		{
			name: "early payments fill consecutive slots",
			payments: []*transaction.Transaction{
				payment("P2", "A1", "L", 1_000_000, day(2024, 1, 20)),
				payment("P1", "A1", "L", 1_000_000, day(2024, 1, 18)),
			},
			want: []loan.InstallmentStatus{loan.InstallmentLunas, loan.InstallmentLunas, loan.InstallmentTerlambat},
		},
		{
			name: "payment past grace skips the slot",
			payments: []*transaction.Transaction{
				payment("P1", "A1", "L", 1_000_000, day(2024, 4, 1)),
			},
			want: []loan.InstallmentStatus{loan.InstallmentTerlambat, loan.InstallmentLunas, loan.InstallmentTerlambat},
		},
		{
			name: "payment within grace settles the slot",
			payments: []*transaction.Transaction{
				payment("P1", "A1", "L", 1_000_000, day(2024, 3, 16)),
			},
			want: []loan.InstallmentStatus{loan.InstallmentLunas, loan.InstallmentTerlambat, loan.InstallmentTerlambat},
		},
		{
			name: "surplus payments are not reused",
			payments: []*transaction.Transaction{
				payment("P1", "A1", "L", 1_000_000, day(2024, 2, 1)),
				payment("P2", "A1", "L", 1_000_000, day(2024, 2, 2)),
				payment("P3", "A1", "L", 1_000_000, day(2024, 2, 3)),
				payment("P4", "A1", "L", 1_000_000, day(2024, 2, 4)),
			},
			want: []loan.InstallmentStatus{loan.InstallmentLunas, loan.InstallmentLunas, loan.InstallmentLunas},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := append([]*transaction.Transaction{loanTx}, tt.payments...)

			schedule := loan.Schedule(loanTx, history, now)
			require.Len(t, schedule, 3)

			got := make([]loan.InstallmentStatus, len(schedule))
			for i, entry := range schedule {
				got[i] = entry.Status
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSchedule_PaymentsUsedOnce(t *testing.T) {
	loanTx := disbursement("L", "A1", 3_000_000, day(2024, 1, 15))
	history := []*transaction.Transaction{
		loanTx,
		payment("P1", "A1", "L", 1_070_000, day(2024, 2, 1)),
		payment("P2", "A1", "L", 1_070_000, day(2024, 5, 1)),
	}

	seen := map[time.Time]bool{}
	for _, entry := range loan.Schedule(loanTx, history, day(2024, 6, 1)) {
		if entry.TanggalBayar == nil {
			continue
		}
		assert.False(t, seen[*entry.TanggalBayar], "payment %s assigned twice", entry.TanggalBayar)
		seen[*entry.TanggalBayar] = true
	}
	assert.Len(t, seen, 2)
}

func TestService_CalculateRemainingInstallments(t *testing.T) {
	svc := loan.NewService(scenario())

	n, err := svc.CalculateRemainingInstallments(context.Background(), "TRX-L1")
	require.NoError(t, err)
	assert.Equal(t, 9, n)

	n, err = svc.CalculateRemainingInstallments(context.Background(), "missing")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestService_CalculateMemberTotalPinjaman(t *testing.T) {
	ledger := scenario()
	paidOff := disbursement("TRX-L2", "A1", 1_000_000, day(2023, 1, 1))
	ledger.txs = append(ledger.txs,
		paidOff,
		payment("TRX-P9", "A1", "TRX-L2", 1_000_000, day(2023, 2, 1)),
		disbursement("TRX-L3", "A2", 5_000_000, day(2024, 1, 1)),
	)
	svc := loan.NewService(ledger)

	total, err := svc.CalculateMemberTotalPinjaman(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, int64(8_790_000), total)

	total, err = svc.CalculateMemberTotalPinjaman(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Zero(t, total)

	loans, err := svc.ListMemberLoans(context.Background(), "A1")
	require.NoError(t, err)
	assert.Len(t, loans, 2)
}

func TestService_ExtractLoanInfo(t *testing.T) {
	t.Run("derived", func(t *testing.T) {
		ledger := scenario()
		svc := loan.NewService(ledger)

		info := svc.ExtractLoanInfo(context.Background(), ledger.txs[0])
		require.NotNil(t, info)
		assert.True(t, info.Derived)
		assert.Equal(t, int64(8_790_000), info.SisaPinjaman)
		assert.Equal(t, int64(214_000), info.NominalJasa)
		assert.Equal(t, int64(214_000*12), info.TotalNominalJasa)
	})

	t.Run("falls back to description", func(t *testing.T) {
		svc := loan.NewService(&fakeLedger{err: errors.New("timeout")})
		tx := disbursement("TRX-L1", "A1", 12_000_000, day(2024, 1, 15))

		info := svc.ExtractLoanInfo(context.Background(), tx)
		require.NotNil(t, info)
		assert.False(t, info.Derived)
		assert.Equal(t, int64(12_000_000), info.SisaPinjaman)
		assert.Equal(t, 12, info.Tenor)
		assert.Equal(t, int64(1_070_000), info.AngsuranPerBulan)
		assert.Equal(t, int64(214_000), info.NominalJasa)
	})

	t.Run("nil transaction", func(t *testing.T) {
		svc := loan.NewService(scenario())
		assert.Nil(t, svc.ExtractLoanInfo(context.Background(), nil))
	})
}

func TestSplit(t *testing.T) {
	tests := []struct {
		angsuran  int64
		wantPokok int64
		wantJasa  int64
	}{
		{1_070_000, 856_000, 214_000},
		{1_000_001, 800_000, 200_000},
		{0, 0, 0},
	}

	for _, tt := range tests {
		pokok, jasa := loan.Split(tt.angsuran)
		assert.Equal(t, tt.wantPokok, pokok)
		assert.Equal(t, tt.wantJasa, jasa)
	}
}

func TestFlatTerms(t *testing.T) {
	terms := loan.FlatTerms(12_000_000, 12, 1.5)
	assert.Equal(t, int64(1_180_000), terms.AngsuranPerBulan)
	assert.Equal(t, int64(14_160_000), terms.TotalPengembalian)

	terms = loan.FlatTerms(1_000_000, 3, 1)
	assert.Equal(t, int64(343_334), terms.AngsuranPerBulan)
	assert.Equal(t, int64(1_030_002), terms.TotalPengembalian)

	terms = loan.FlatTerms(1_000_000, 0, 1)
	assert.Equal(t, keterangan.DefaultTenor, terms.Tenor)
}
