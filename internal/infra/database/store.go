package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/xavierca1/ligue-rateio/internal/entity"
	"github.com/xavierca1/ligue-rateio/internal/usecase"
)

// DBTX é o que *sql.DB e *sql.Tx têm em comum.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store expõe os repositórios sobre o pool ou sobre uma transação aberta.
type Store struct {
	db *sql.DB
	q  DBTX
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

func (s *Store) Accounts() entity.AccountRepository {
	return &AccountRepository{DB: s.q}
}

func (s *Store) Streamings() entity.StreamingRepository {
	return &StreamingRepository{DB: s.q}
}

func (s *Store) Participants() entity.ParticipantRepository {
	return &ParticipantRepository{DB: s.q}
}

func (s *Store) Subscriptions() entity.SubscriptionRepository {
	return &SubscriptionRepository{DB: s.q}
}

func (s *Store) Charges() entity.ChargeRepository {
	return &ChargeRepository{DB: s.q}
}

func (s *Store) Batches() entity.BatchRepository {
	return &BatchRepository{DB: s.q}
}

func (s *Store) Wallet() entity.WalletRepository {
	return &WalletRepository{DB: s.q}
}

func (s *Store) Plans() entity.PlanRepository {
	return &PlanRepository{DB: s.q}
}

// WithinTx roda fn numa transação; erro ou panic fazem rollback.
func (s *Store) WithinTx(ctx context.Context, fn func(tx usecase.Store) error) (err error) {
	if s.db == nil {
		return errors.New("transação aninhada não suportada")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("erro ao abrir transação: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&Store{q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("erro ao confirmar transação: %w", err)
	}
	return nil
}

// uniqueViolation devolve o nome do índice quando err é um 23505 do Postgres.
func uniqueViolation(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return pqErr.Constraint, true
	}
	return "", false
}

// staleOrMissing explica um UPDATE condicional que não afetou linhas.
func staleOrMissing(ctx context.Context, q DBTX, table, id string) error {
	var status string
	err := q.QueryRowContext(ctx, `SELECT status FROM `+table+` WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrNotFound
	}
	if err != nil {
		return err
	}
	return entity.ErrStaleStatus
}

// notFound trata id que não é uuid (22P02) como registro inexistente.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) || invalidText(err) {
		return entity.ErrNotFound
	}
	return err
}

func invalidText(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "22P02"
}

// rowScanner cobre *sql.Row e *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func nullString(s sql.NullString) string {
	if s.Valid {
		return s.String
	}
	return ""
}

func dateOnlyPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := entity.DateOnly(*t)
	return &d
}
