package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xavierca1/ligue-rateio/internal/entity"
)

type ChargeRepository struct {
	DB DBTX
}

func NewChargeRepository(db DBTX) *ChargeRepository {
	return &ChargeRepository{DB: db}
}

const chargeColumns = `id, account_id, subscription_id, valor, periodo_inicio, periodo_fim, data_vencimento,
	status, data_pagamento, COALESCE(origem_pagamento, ''), COALESCE(comprovativo_url, ''),
	lote_id, COALESCE(gateway_payment_id, ''), created_at, updated_at`

// Create é idempotente por período: um segundo INSERT do mesmo período
// não grava nada e devolve ErrDuplicateCharge.
func (r *ChargeRepository) Create(ctx context.Context, c *entity.Charge) error {
	query := `
		INSERT INTO charges (
			id, account_id, subscription_id, valor, periodo_inicio, periodo_fim, data_vencimento,
			status, data_pagamento, origem_pagamento, comprovativo_url, lote_id, gateway_payment_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), NULLIF($11, ''), NULLIF($12, '')::uuid, NULLIF($13, ''), $14, $15)
		ON CONFLICT (subscription_id, periodo_inicio) WHERE status <> 'cancelado' DO NOTHING
	`
	res, err := r.DB.ExecContext(ctx, query,
		c.ID,
		c.AccountID,
		c.SubscriptionID,
		c.Amount,
		entity.DateOnly(c.PeriodStart),
		entity.DateOnly(c.PeriodEnd),
		entity.DateOnly(c.DueDate),
		c.Status,
		c.PaidAt,
		c.PaymentOrigin,
		c.ProofURL,
		c.BatchID,
		c.GatewayPaymentID,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("erro ao criar cobrança: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrDuplicateCharge
	}
	return nil
}

func scanCharge(row rowScanner) (*entity.Charge, error) {
	var c entity.Charge
	var paidAt sql.NullTime
	var batchID sql.NullString
	err := row.Scan(
		&c.ID,
		&c.AccountID,
		&c.SubscriptionID,
		&c.Amount,
		&c.PeriodStart,
		&c.PeriodEnd,
		&c.DueDate,
		&c.Status,
		&paidAt,
		&c.PaymentOrigin,
		&c.ProofURL,
		&batchID,
		&c.GatewayPaymentID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	c.PeriodStart = entity.DateOnly(c.PeriodStart)
	c.PeriodEnd = entity.DateOnly(c.PeriodEnd)
	c.DueDate = entity.DateOnly(c.DueDate)
	if paidAt.Valid {
		c.PaidAt = &paidAt.Time
	}
	c.BatchID = nullString(batchID)
	return &c, nil
}

func (r *ChargeRepository) list(ctx context.Context, query string, args ...any) ([]*entity.Charge, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao listar cobranças: %w", err)
	}
	defer rows.Close()

	var charges []*entity.Charge
	for rows.Next() {
		c, err := scanCharge(rows)
		if err != nil {
			return nil, err
		}
		charges = append(charges, c)
	}
	return charges, rows.Err()
}

func (r *ChargeRepository) FindByID(ctx context.Context, id string) (*entity.Charge, error) {
	return scanCharge(r.DB.QueryRowContext(ctx, `SELECT `+chargeColumns+` FROM charges WHERE id = $1`, id))
}

func (r *ChargeRepository) ListBySubscription(ctx context.Context, subscriptionID string) ([]*entity.Charge, error) {
	return r.list(ctx,
		`SELECT `+chargeColumns+` FROM charges WHERE subscription_id = $1 ORDER BY periodo_inicio, created_at`,
		subscriptionID,
	)
}

func (r *ChargeRepository) Latest(ctx context.Context, subscriptionID string) (*entity.Charge, error) {
	return scanCharge(r.DB.QueryRowContext(ctx,
		`SELECT `+chargeColumns+` FROM charges WHERE subscription_id = $1 ORDER BY periodo_inicio DESC, created_at DESC LIMIT 1`,
		subscriptionID,
	))
}

func (r *ChargeRepository) Update(ctx context.Context, c *entity.Charge, from entity.ChargeStatus) error {
	query := `
		UPDATE charges SET
			status = $3,
			data_pagamento = $4,
			origem_pagamento = NULLIF($5, ''),
			comprovativo_url = NULLIF($6, ''),
			lote_id = NULLIF($7, '')::uuid,
			gateway_payment_id = NULLIF($8, ''),
			updated_at = $9
		WHERE id = $1 AND status = $2
	`
	res, err := r.DB.ExecContext(ctx, query,
		c.ID,
		from,
		c.Status,
		c.PaidAt,
		c.PaymentOrigin,
		c.ProofURL,
		c.BatchID,
		c.GatewayPaymentID,
		c.UpdatedAt,
	)
	if _, dup := uniqueViolation(err); dup {
		return entity.ErrDuplicateCharge
	}
	if err != nil {
		return fmt.Errorf("erro ao atualizar cobrança: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return staleOrMissing(ctx, r.DB, "charges", c.ID)
	}
	return nil
}

func (r *ChargeRepository) SumByStatus(ctx context.Context, accountID string) (map[entity.ChargeStatus]decimal.Decimal, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT status, COALESCE(SUM(valor), 0) FROM charges WHERE account_id = $1 GROUP BY status`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("erro ao somar cobranças: %w", err)
	}
	defer rows.Close()

	sums := make(map[entity.ChargeStatus]decimal.Decimal)
	for rows.Next() {
		var status entity.ChargeStatus
		var total decimal.Decimal
		if err := rows.Scan(&status, &total); err != nil {
			return nil, err
		}
		sums[status] = total
	}
	return sums, rows.Err()
}
