package transaction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/keterangan"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id string) (*Transaction, error)
	UpdateTransaction(ctx context.Context, tx *Transaction) error

	ListByMember(ctx context.Context, anggotaID string) ([]*Transaction, error)
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

type CreateParams struct {
	AnggotaID  string
	Jenis      Jenis
	Jumlah     int64
	Kategori   string
	Keterangan string
	Status     Status
	Tanggal    time.Time
}

type ListFilter struct {
	Jenis     *Jenis
	Status    *Status
	StartDate *time.Time
	EndDate   *time.Time
}

// EndBefore is the exclusive upper bound for EndDate. EndDate names a whole
// day, so rows at any time on that day are kept.
func (f ListFilter) EndBefore() time.Time {
	y, m, d := f.EndDate.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, f.EndDate.Location())
}

type LoanParams struct {
	AnggotaID string
	Jumlah    int64
	Kategori  string
	Terms     keterangan.Terms
	Tanggal   time.Time
}

type InstallmentParams struct {
	AnggotaID string
	LoanID    string
	Jumlah    int64
	Note      string
	Tanggal   time.Time
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	tx, err := s.newTransaction(params)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func (s *Service) newTransaction(params CreateParams) (*Transaction, error) {
	if !params.Jenis.Valid() {
		return nil, fmt.Errorf("%w: unknown jenis %q", ErrInvalid, params.Jenis)
	}

	if params.AnggotaID == "" {
		return nil, fmt.Errorf("%w: anggota id is required", ErrInvalid)
	}

	status := params.Status
	if status == "" {
		status = StatusSukses
	}

	tanggal := params.Tanggal
	if tanggal.IsZero() {
		tanggal = s.now()
	}

	return &Transaction{
		ID:         uuid.NewString(),
		AnggotaID:  params.AnggotaID,
		Jenis:      params.Jenis,
		Jumlah:     params.Jumlah,
		Kategori:   params.Kategori,
		Keterangan: params.Keterangan,
		Status:     status,
		Tanggal:    tanggal,
	}, nil
}

// RecordLoan stores a disbursement carrying both typed terms and the legacy
// description, so either reader can derive the loan.
func (s *Service) RecordLoan(ctx context.Context, params LoanParams) (*Transaction, error) {
	if params.Jumlah <= 0 {
		return nil, fmt.Errorf("%w: loan amount must be positive", ErrInvalid)
	}

	if !keterangan.ValidTenor(params.Terms.Tenor) {
		return nil, fmt.Errorf("%w: loan tenor must be between 1 and %d months", ErrInvalid, keterangan.MaxTenor)
	}

	tx, err := s.newTransaction(CreateParams{
		AnggotaID:  params.AnggotaID,
		Jenis:      JenisPinjam,
		Jumlah:     params.Jumlah,
		Kategori:   params.Kategori,
		Keterangan: keterangan.Format(params.Kategori, params.Terms),
		Status:     StatusSukses,
		Tanggal:    params.Tanggal,
	})
	if err != nil {
		return nil, err
	}

	terms := params.Terms
	tx.Loan = &terms

	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

// RecordInstallment stores a payment against a loan. The loan id is written
// both as a typed link and into the description for legacy readers.
func (s *Service) RecordInstallment(ctx context.Context, params InstallmentParams) (*Transaction, error) {
	if params.Jumlah <= 0 {
		return nil, fmt.Errorf("%w: installment amount must be positive", ErrInvalid)
	}

	loanTx, err := s.repo.GetTransaction(ctx, params.LoanID)
	if err != nil {
		return nil, err
	}

	if loanTx.Jenis != JenisPinjam {
		return nil, fmt.Errorf("%w: transaction %s is not a loan", ErrInvalid, params.LoanID)
	}

	anggotaID := params.AnggotaID
	if anggotaID == "" {
		anggotaID = loanTx.AnggotaID
	}

	if anggotaID != loanTx.AnggotaID {
		return nil, fmt.Errorf("%w: loan %s belongs to another member", ErrInvalid, params.LoanID)
	}

	desc := "Angsuran pinjaman " + loanTx.ID
	if note := strings.TrimSpace(params.Note); note != "" {
		desc += " - " + note
	}

	tx, err := s.newTransaction(CreateParams{
		AnggotaID:  anggotaID,
		Jenis:      JenisAngsuran,
		Jumlah:     params.Jumlah,
		Kategori:   loanTx.Kategori,
		Keterangan: desc,
		Status:     StatusSukses,
		Tanggal:    params.Tanggal,
	})
	if err != nil {
		return nil, err
	}

	tx.LoanID = new(loanTx.ID)

	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

// UpdateStatus settles or fails a pending transaction.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (*Transaction, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalid, status)
	}

	tx, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	tx.Status = status

	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("updating transaction status: %w", err)
	}

	return tx, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

func (s *Service) ListForMember(ctx context.Context, anggotaID string) ([]*Transaction, error) {
	return s.repo.ListByMember(ctx, anggotaID)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

type BackfillResult struct {
	Loans        int
	Installments int
}

// BackfillLoanMetadata copies the loan metadata of legacy rows into the typed
// fields. Loans get their parsed terms; installments are linked to the single
// loan of the same member whose id appears in their description. Ambiguous
// installments (more than one candidate loan) are left untouched.
func (s *Service) BackfillLoanMetadata(ctx context.Context) (*BackfillResult, error) {
	pinjam := JenisPinjam

	loans, err := s.repo.ListTransactions(ctx, ListFilter{Jenis: &pinjam})
	if err != nil {
		return nil, fmt.Errorf("listing loans: %w", err)
	}

	result := &BackfillResult{}
	loansByMember := make(map[string][]*Transaction)

	for _, l := range loans {
		loansByMember[l.AnggotaID] = append(loansByMember[l.AnggotaID], l)

		if l.Loan != nil {
			continue
		}

		terms := keterangan.Parse(l.Keterangan)
		l.Loan = &terms

		if err := s.repo.UpdateTransaction(ctx, l); err != nil {
			return nil, fmt.Errorf("backfilling loan %s: %w", l.ID, err)
		}

		result.Loans++
	}

	angsuran := JenisAngsuran

	payments, err := s.repo.ListTransactions(ctx, ListFilter{Jenis: &angsuran})
	if err != nil {
		return nil, fmt.Errorf("listing installments: %w", err)
	}

	for _, p := range payments {
		if p.LoanID != nil {
			continue
		}

		var match *Transaction

		for _, l := range loansByMember[p.AnggotaID] {
			if !strings.Contains(p.Keterangan, l.ID) {
				continue
			}

			if match != nil {
				match = nil
				break
			}

			match = l
		}

		if match == nil {
			continue
		}

		p.LoanID = new(match.ID)

		if err := s.repo.UpdateTransaction(ctx, p); err != nil {
			return nil, fmt.Errorf("backfilling installment %s: %w", p.ID, err)
		}

		result.Installments++
	}

	return result, nil
}
