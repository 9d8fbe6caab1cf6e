package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/transaction"
)

// Ledger is the read-only view of the transaction log the deriver needs.
type Ledger interface {
	Get(ctx context.Context, id string) (*transaction.Transaction, error)
	ListForMember(ctx context.Context, anggotaID string) ([]*transaction.Transaction, error)
}

type Service struct {
	ledger Ledger
	now    func() time.Time
}

type Option func(*Service)

// WithClock overrides the time used to decide whether an installment is overdue.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(ledger Ledger, opts ...Option) *Service {
	s := &Service{ledger: ledger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// snapshot loads a disbursement and the history of its member.
func (s *Service) snapshot(ctx context.Context, loanID string) (*transaction.Transaction, []*transaction.Transaction, error) {
	loanTx, err := s.ledger.Get(ctx, loanID)
	if err != nil {
		if errors.Is(err, transaction.ErrNotFound) {
			return nil, nil, ErrNotFound
		}

		return nil, nil, fmt.Errorf("getting loan transaction: %w", err)
	}

	if loanTx.Jenis != transaction.JenisPinjam {
		return nil, nil, ErrNotFound
	}

	history, err := s.ledger.ListForMember(ctx, loanTx.AnggotaID)
	if err != nil {
		return nil, nil, fmt.Errorf("listing member transactions: %w", err)
	}

	return loanTx, history, nil
}

// GetLoanDetails derives a loan. It returns ErrNotFound when the id is unknown
// or does not belong to a disbursement.
func (s *Service) GetLoanDetails(ctx context.Context, loanID string) (*Details, error) {
	loanTx, history, err := s.snapshot(ctx, loanID)
	if err != nil {
		return nil, err
	}

	d, _ := Derive(loanTx, history)

	return d, nil
}

// GenerateInstallmentSchedule returns the schedule of a loan, or an empty
// schedule when the loan does not exist.
func (s *Service) GenerateInstallmentSchedule(ctx context.Context, loanID string) ([]Installment, error) {
	loanTx, history, err := s.snapshot(ctx, loanID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []Installment{}, nil
		}

		return nil, err
	}

	return Schedule(loanTx, history, s.now()), nil
}

// CalculateRemainingInstallments returns the number of unpaid installments,
// zero for an unknown loan.
func (s *Service) CalculateRemainingInstallments(ctx context.Context, loanID string) (int, error) {
	loanTx, history, err := s.snapshot(ctx, loanID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, nil
		}

		return 0, err
	}

	return RemainingInstallments(loanTx, history), nil
}

// ListMemberLoans derives every loan of a member, oldest first.
func (s *Service) ListMemberLoans(ctx context.Context, anggotaID string) ([]*Details, error) {
	history, err := s.ledger.ListForMember(ctx, anggotaID)
	if err != nil {
		return nil, fmt.Errorf("listing member transactions: %w", err)
	}

	return DeriveAll(history), nil
}

// DeriveAll derives every disbursement found in a member's history.
func DeriveAll(history []*transaction.Transaction) []*Details {
	var loans []*Details

	for _, tx := range history {
		if d, ok := Derive(tx, history); ok {
			loans = append(loans, d)
		}
	}

	return loans
}

// CalculateMemberTotalPinjaman sums the outstanding principal of a member's active loans.
func (s *Service) CalculateMemberTotalPinjaman(ctx context.Context, anggotaID string) (int64, error) {
	loans, err := s.ListMemberLoans(ctx, anggotaID)
	if err != nil {
		return 0, err
	}

	return TotalOutstanding(loans), nil
}

func TotalOutstanding(loans []*Details) int64 {
	var total int64

	for _, l := range loans {
		if l.Status == StatusAktif {
			total += l.SisaPinjaman
		}
	}

	return total
}

// ExtractLoanInfo summarizes a disbursement. When the loan cannot be derived
// from the ledger it falls back to the transaction's own description.
func (s *Service) ExtractLoanInfo(ctx context.Context, tx *transaction.Transaction) *Info {
	if tx == nil {
		return nil
	}

	d, err := s.GetLoanDetails(ctx, tx.ID)
	if err == nil {
		return infoFromDetails(d)
	}

	if !errors.Is(err, ErrNotFound) {
		slog.Warn("deriving loan info, falling back to description", "loan_id", tx.ID, "error", err)
	}

	return InfoFromTerms(tx)
}
