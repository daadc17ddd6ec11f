package database

import (
	"context"

	"github.com/xavierca1/ligue-rateio/internal/entity"
)

type StreamingRepository struct {
	DB DBTX
}

func NewStreamingRepository(db DBTX) *StreamingRepository {
	return &StreamingRepository{DB: db}
}

const streamingColumns = `id, account_id, nome, valor_integral, limite_participantes, created_at, updated_at`

func scanStreaming(row rowScanner) (*entity.Streaming, error) {
	var s entity.Streaming
	if err := row.Scan(&s.ID, &s.AccountID, &s.Name, &s.FullPrice, &s.SlotLimit, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *StreamingRepository) FindByID(ctx context.Context, id string) (*entity.Streaming, error) {
	return scanStreaming(r.DB.QueryRowContext(ctx, `SELECT `+streamingColumns+` FROM streamings WHERE id = $1`, id))
}

// LockByID trava a linha do streaming: quem cria assinatura espera aqui antes de contar vagas.
func (r *StreamingRepository) LockByID(ctx context.Context, id string) (*entity.Streaming, error) {
	return scanStreaming(r.DB.QueryRowContext(ctx, `SELECT `+streamingColumns+` FROM streamings WHERE id = $1 FOR UPDATE`, id))
}
