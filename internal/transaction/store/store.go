package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/keterangan"
	"github.com/kiraniaklipang2008/kpri-7juli-v4-sub002/internal/transaction"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTransaction reads a transaction row from the scanner and returns a populated Transaction.
// Expected column order: id, anggota_id, jenis, jumlah, kategori, keterangan, status, tanggal,
// loan_terms, loan_id, created_at, updated_at
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var tx transaction.Transaction

	var jenisStr, statusStr string

	var kategori, ket sql.NullString

	var terms []byte

	var loanID sql.NullString

	if err := s.Scan(
		&tx.ID, &tx.AnggotaID, &jenisStr, &tx.Jumlah, &kategori, &ket, &statusStr, &tx.Tanggal,
		&terms, &loanID,
		&tx.CreatedAt, &tx.UpdatedAt,
	); err != nil {
		return nil, err
	}

	tx.Jenis = transaction.Jenis(jenisStr)
	tx.Status = transaction.Status(statusStr)
	tx.Kategori = kategori.String
	tx.Keterangan = ket.String

	if loanID.Valid {
		tx.LoanID = &loanID.String
	}

	if len(terms) > 0 {
		var t keterangan.Terms
		if err := json.Unmarshal(terms, &t); err != nil {
			return nil, fmt.Errorf("decoding loan terms of %s: %w", tx.ID, err)
		}

		tx.Loan = &t
	}

	return &tx, nil
}

// encodeTerms returns the jsonb parameter for loan_terms, nil (NULL) when absent.
func encodeTerms(t *keterangan.Terms) (any, error) {
	if t == nil {
		return nil, nil
	}

	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}

	return string(b), nil
}

const selectTransactionColumns = `
	id, anggota_id, jenis, jumlah, kategori, keterangan, status, tanggal,
	loan_terms, loan_id, created_at, updated_at
`

func (s *Store) CreateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	terms, err := encodeTerms(tx.Loan)
	if err != nil {
		return fmt.Errorf("encoding loan terms: %w", err)
	}

	query := `
		INSERT INTO transactions (id, anggota_id, jenis, jumlah, kategori, keterangan, status, tanggal, loan_terms, loan_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err = s.db.QueryRowContext(ctx, query,
		tx.ID,
		tx.AnggotaID,
		tx.Jenis,
		tx.Jumlah,
		tx.Kategori,
		tx.Keterangan,
		tx.Status,
		tx.Tanggal,
		terms,
		tx.LoanID,
	).Scan(&tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	return nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions
		WHERE id = $1`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) ListByMember(ctx context.Context, anggotaID string) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions
		WHERE anggota_id = $1
		ORDER BY tanggal ASC, created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, anggotaID)
	if err != nil {
		return nil, fmt.Errorf("listing member transactions: %w", err)
	}
	defer rows.Close()

	return collect(rows)
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + `
		FROM transactions
		WHERE TRUE`

	var args []any

	argIdx := 1

	if filter.Jenis != nil {
		query += fmt.Sprintf(" AND jenis = $%d", argIdx)

		args = append(args, *filter.Jenis)
		argIdx++
	}

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND tanggal >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND tanggal < $%d", argIdx)

		args = append(args, filter.EndBefore())
		argIdx++
	}

	query += " ORDER BY tanggal ASC, created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	return collect(rows)
}

func collect(rows *sql.Rows) ([]*transaction.Transaction, error) {
	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}

	return txs, nil
}

// UpdateTransaction rewrites the mutable columns of a transaction. Amount,
// member and kind are immutable once written.
func (s *Store) UpdateTransaction(ctx context.Context, tx *transaction.Transaction) error {
	terms, err := encodeTerms(tx.Loan)
	if err != nil {
		return fmt.Errorf("encoding loan terms: %w", err)
	}

	query := `
		UPDATE transactions
		SET kategori = $1, keterangan = $2, status = $3, loan_terms = $4, loan_id = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`

	err = s.db.QueryRowContext(ctx, query,
		tx.Kategori,
		tx.Keterangan,
		tx.Status,
		terms,
		tx.LoanID,
		tx.ID,
	).Scan(&tx.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return transaction.ErrNotFound
		}

		return fmt.Errorf("updating transaction: %w", err)
	}

	return nil
}
