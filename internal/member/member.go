package member

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("member not found")

// Status represents whether a member takes part in SHU distribution.
type Status string

const (
	StatusAktif    Status = "aktif"
	StatusNonaktif Status = "nonaktif"
)

// Member is a cooperative member (anggota).
type Member struct {
	ID               string
	Nama             string
	TanggalBergabung time.Time
	Status           Status
}

// YearsOfMembership returns the number of whole years between joining and asOf.
func (m Member) YearsOfMembership(asOf time.Time) int {
	if m.TanggalBergabung.IsZero() || asOf.Before(m.TanggalBergabung) {
		return 0
	}

	joined := m.TanggalBergabung
	years := asOf.Year() - joined.Year()
	if asOf.Month() < joined.Month() || (asOf.Month() == joined.Month() && asOf.Day() < joined.Day()) {
		years--
	}

	return max(0, years)
}

//go:generate mockgen -source=member.go -destination=repository_mock.go -package=member
type Repository interface {
	GetMember(ctx context.Context, id string) (*Member, error)
	ListMembers(ctx context.Context) ([]*Member, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id string) (*Member, error) {
	m, err := s.repo.GetMember(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting member: %w", err)
	}

	return m, nil
}

// ListActive returns the members currently eligible for distribution.
func (s *Service) ListActive(ctx context.Context) ([]*Member, error) {
	all, err := s.repo.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}

	active := make([]*Member, 0, len(all))
	for _, m := range all {
		if m.Status == StatusAktif {
			active = append(active, m)
		}
	}

	return active, nil
}
