package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xavierca1/ligue-rateio/internal/entity"
)

type SubscriptionRepository struct {
	DB DBTX
}

func NewSubscriptionRepository(db DBTX) *SubscriptionRepository {
	return &SubscriptionRepository{DB: db}
}

const subscriptionColumns = `id, account_id, participant_id, streaming_id, frequencia, valor, data_inicio,
	data_cancelamento, status, data_suspensao, COALESCE(motivo_suspensao, ''), created_at, updated_at`

func (r *SubscriptionRepository) Create(ctx context.Context, s *entity.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			id, account_id, participant_id, streaming_id, frequencia, valor, data_inicio,
			data_cancelamento, status, data_suspensao, motivo_suspensao, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''), $12, $13)
	`
	_, err := r.DB.ExecContext(ctx, query,
		s.ID,
		s.AccountID,
		s.ParticipantID,
		s.StreamingID,
		s.Frequency,
		s.Amount,
		entity.DateOnly(s.StartDate),
		dateOnlyPtr(s.CancellationDate),
		s.Status,
		s.SuspendedAt,
		s.SuspensionReason,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if _, dup := uniqueViolation(err); dup {
		return entity.ErrDuplicateSubscription
	}
	if err != nil {
		return fmt.Errorf("erro ao salvar assinatura: %w", err)
	}
	return nil
}

func scanSubscription(row rowScanner) (*entity.Subscription, error) {
	var s entity.Subscription
	var cancellation, suspended sql.NullTime
	err := row.Scan(
		&s.ID,
		&s.AccountID,
		&s.ParticipantID,
		&s.StreamingID,
		&s.Frequency,
		&s.Amount,
		&s.StartDate,
		&cancellation,
		&s.Status,
		&suspended,
		&s.SuspensionReason,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	s.StartDate = entity.DateOnly(s.StartDate)
	if cancellation.Valid {
		d := entity.DateOnly(cancellation.Time)
		s.CancellationDate = &d
	}
	if suspended.Valid {
		s.SuspendedAt = &suspended.Time
	}
	return &s, nil
}

func (r *SubscriptionRepository) FindByID(ctx context.Context, id string) (*entity.Subscription, error) {
	return scanSubscription(r.DB.QueryRowContext(ctx, `SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id))
}

func (r *SubscriptionRepository) CountBillable(ctx context.Context, streamingID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE streaming_id = $1 AND status IN ('ativa', 'suspensa')`,
		streamingID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("erro ao contar vagas: %w", err)
	}
	return n, nil
}

func (r *SubscriptionRepository) ExistsBillable(ctx context.Context, participantID, streamingID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM subscriptions
			WHERE participant_id = $1 AND streaming_id = $2 AND status IN ('ativa', 'suspensa')
		)`,
		participantID, streamingID,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *SubscriptionRepository) ListBillable(ctx context.Context) ([]*entity.Subscription, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE status IN ('ativa', 'suspensa') ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar assinaturas: %w", err)
	}
	defer rows.Close()

	var subs []*entity.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// Update só grava se o status no banco ainda for from.
func (r *SubscriptionRepository) Update(ctx context.Context, s *entity.Subscription, from entity.SubscriptionStatus) error {
	query := `
		UPDATE subscriptions SET
			status = $3,
			data_cancelamento = $4,
			data_suspensao = $5,
			motivo_suspensao = NULLIF($6, ''),
			updated_at = $7
		WHERE id = $1 AND status = $2
	`
	res, err := r.DB.ExecContext(ctx, query,
		s.ID,
		from,
		s.Status,
		dateOnlyPtr(s.CancellationDate),
		s.SuspendedAt,
		s.SuspensionReason,
		s.UpdatedAt,
	)
	if _, dup := uniqueViolation(err); dup {
		return entity.ErrDuplicateSubscription
	}
	if err != nil {
		return fmt.Errorf("erro ao atualizar assinatura: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return staleOrMissing(ctx, r.DB, "subscriptions", s.ID)
	}
	return nil
}
