package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/member"
)

const selectColumns = `SELECT id, nama, tanggal_bergabung, status FROM anggota`

type scanner interface {
	Scan(dest ...any) error
}

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func scanMember(s scanner) (*member.Member, error) {
	var m member.Member
	if err := s.Scan(&m.ID, &m.Nama, &m.TanggalBergabung, &m.Status); err != nil {
		return nil, err
	}

	return &m, nil
}

func (s *Store) GetMember(ctx context.Context, id string) (*member.Member, error) {
	m, err := scanMember(s.db.QueryRowContext(ctx, selectColumns+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, member.ErrNotFound
		}

		return nil, fmt.Errorf("getting member: %w", err)
	}

	return m, nil
}

func (s *Store) ListMembers(ctx context.Context) ([]*member.Member, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY tanggal_bergabung, id`)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	defer rows.Close()

	var members []*member.Member

	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}

		members = append(members, m)
	}

	return members, rows.Err()
}
