package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/xavierca1/ligue-rateio/internal/entity"
)

type BatchRepository struct {
	DB DBTX
}

func NewBatchRepository(db DBTX) *BatchRepository {
	return &BatchRepository{DB: db}
}

func (r *BatchRepository) Create(ctx context.Context, b *entity.Batch) error {
	query := `
		INSERT INTO batches (id, account_id, valor_total, comprovativo_url, status, motivo_rejeicao, data_revisao, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9)
	`
	_, err := r.DB.ExecContext(ctx, query,
		b.ID,
		b.AccountID,
		b.Total,
		b.ProofURL,
		b.Status,
		b.RejectionReason,
		b.ReviewedAt,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("erro ao criar lote: %w", err)
	}

	// a ordem dos itens é a ordem em que o participante enviou
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO batch_charges (batch_id, charge_id, posicao)
		SELECT $1, item.charge_id, item.posicao
		FROM unnest($2::uuid[]) WITH ORDINALITY AS item(charge_id, posicao)
	`, b.ID, pq.Array(b.ChargeIDs))
	if err != nil {
		return fmt.Errorf("erro ao vincular cobranças ao lote: %w", err)
	}
	return nil
}

func (r *BatchRepository) FindByID(ctx context.Context, id string) (*entity.Batch, error) {
	query := `
		SELECT id, account_id, valor_total, comprovativo_url, status, COALESCE(motivo_rejeicao, ''),
			data_revisao, created_at, updated_at,
			ARRAY(SELECT charge_id::text FROM batch_charges WHERE batch_id = batches.id ORDER BY posicao)
		FROM batches WHERE id = $1
	`
	var b entity.Batch
	var reviewed sql.NullTime
	var ids []string
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&b.ID,
		&b.AccountID,
		&b.Total,
		&b.ProofURL,
		&b.Status,
		&b.RejectionReason,
		&reviewed,
		&b.CreatedAt,
		&b.UpdatedAt,
		pq.Array(&ids),
	)
	if err != nil {
		return nil, notFound(err)
	}
	if reviewed.Valid {
		b.ReviewedAt = &reviewed.Time
	}
	b.ChargeIDs = ids
	return &b, nil
}

func (r *BatchRepository) Update(ctx context.Context, b *entity.Batch, from entity.BatchStatus) error {
	query := `
		UPDATE batches SET status = $3, motivo_rejeicao = NULLIF($4, ''), data_revisao = $5, updated_at = $6
		WHERE id = $1 AND status = $2
	`
	res, err := r.DB.ExecContext(ctx, query, b.ID, from, b.Status, b.RejectionReason, b.ReviewedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("erro ao atualizar lote: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return staleOrMissing(ctx, r.DB, "batches", b.ID)
	}
	return nil
}
