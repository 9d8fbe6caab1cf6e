package shu

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/formula"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/member"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=shu
type SettingsRepository interface {
	GetSettings(ctx context.Context) (*Settings, error)
	SaveSettings(ctx context.Context, s *Settings) error
}

// Members lists the members taking part in a distribution.
type Members interface {
	ListActive(ctx context.Context) ([]*member.Member, error)
}

// Ledger reads member transaction histories.
type Ledger interface {
	ListForMember(ctx context.Context, anggotaID string) ([]*transaction.Transaction, error)
}

type Service struct {
	repo        SettingsRepository
	members     Members
	ledger      Ledger
	previewSize int
	now         func() time.Time

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

type Option func(*Service)

func WithPreviewSize(n int) Option {
	return func(s *Service) {
		s.previewSize = n
	}
}

// WithSeed makes previews reproducible.
func WithSeed(seed uint64) Option {
	return func(s *Service) {
		s.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo SettingsRepository, members Members, ledger Ledger, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		members:     members,
		ledger:      ledger,
		previewSize: DefaultPreviewSize,
		rng:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Settings returns the saved settings, or the defaults when none were saved.
func (s *Service) Settings(ctx context.Context) (*Settings, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		if errors.Is(err, ErrSettingsNotFound) {
			d := DefaultSettings()
			return &d, nil
		}

		return nil, fmt.Errorf("getting shu settings: %w", err)
	}

	return settings, nil
}

// SaveSettings stores settings after checking the distribution and dry-running
// both formulas against the sample environment.
func (s *Service) SaveSettings(ctx context.Context, settings *Settings) error {
	if err := ValidateDistribution(settings.Distribution); err != nil {
		return err
	}

	sample := SampleVariables(settings.CustomVariables)

	if _, err := formula.Evaluate(settings.Formula, sample); err != nil {
		return fmt.Errorf("shu formula: %w", err)
	}

	if settings.THRFormula != "" {
		if _, err := formula.Evaluate(settings.THRFormula, sample); err != nil {
			return fmt.Errorf("thr formula: %w", err)
		}
	}

	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("saving shu settings: %w", err)
	}

	return nil
}

// ValidateFormula dry-runs src against the sample environment built from the
// saved custom variables.
func (s *Service) ValidateFormula(ctx context.Context, src string) (formula.Validation, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return formula.Validation{}, err
	}

	return formula.Validate(src, SampleVariables(settings.CustomVariables)), nil
}

// Preview simulates the distribution. A nil draft previews the saved settings.
func (s *Service) Preview(ctx context.Context, draft *Settings) (*PreviewResult, error) {
	settings := draft
	if settings == nil {
		saved, err := s.Settings(ctx)
		if err != nil {
			return nil, err
		}
		settings = saved
	}

	members, err := s.members.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}

	return Preview(*settings, members, s.previewSize, s.previewRand())
}

// previewRand returns a generator for one preview, seeded from the service's
// source so a fixed seed still yields a reproducible sequence of previews.
func (s *Service) previewRand() *rand.Rand {
	s.mu.Lock()
	defer s.mu.Unlock()

	return rand.New(rand.NewPCG(s.rng.Uint64(), s.rng.Uint64()))
}

// Share is the computed SHU and THR of one member.
type Share struct {
	AnggotaID string             `json:"anggotaId"`
	Nama      string             `json:"nama"`
	Variables map[string]float64 `json:"variables"`
	SHU       float64            `json:"shu"`
	THR       float64            `json:"thr"`
}

// DistributionResult is the authoritative per-member distribution.
type DistributionResult struct {
	Shares   []Share   `json:"shares"`
	TotalSHU float64   `json:"totalShu"`
	TotalTHR float64   `json:"totalThr"`
	AsOf     time.Time `json:"asOf"`
}

// Distribute evaluates the saved formulas for every active member against
// their real transaction history. Any failure aborts the run.
func (s *Service) Distribute(ctx context.Context) (*DistributionResult, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}

	c, err := compile(*settings)
	if err != nil {
		return nil, err
	}

	members, err := s.members.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}

	result := &DistributionResult{Shares: make([]Share, 0, len(members)), AsOf: s.now()}

	for _, m := range members {
		history, err := s.ledger.ListForMember(ctx, m.ID)
		if err != nil {
			return nil, fmt.Errorf("listing transactions of member %s: %w", m.ID, err)
		}

		vars := MemberVariables(m, history, settings.CustomVariables, result.AsOf)

		shu, thr, err := c.eval(vars)
		if err != nil {
			return nil, fmt.Errorf("evaluating member %s: %w", m.ID, err)
		}

		result.Shares = append(result.Shares, Share{AnggotaID: m.ID, Nama: m.Nama, Variables: vars, SHU: shu, THR: thr})
		result.TotalSHU += shu
		result.TotalTHR += thr
	}

	return result, nil
}
