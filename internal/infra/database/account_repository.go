package database

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xavierca1/ligue-rateio/internal/entity"
)

type AccountRepository struct {
	DB DBTX
}

func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{DB: db}
}

const accountColumns = `id, nome, COALESCE(plano, ''), limite_grupos, COALESCE(chave_pix, ''),
	COALESCE(pix_nome, ''), COALESCE(pix_cidade, ''), saldo_disponivel, created_at, updated_at`

func scanAccount(row rowScanner) (*entity.Account, error) {
	var a entity.Account
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Plan,
		&a.GroupLimit,
		&a.PixKey,
		&a.PixPayeeName,
		&a.PixCity,
		&a.AvailableAmount,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*entity.Account, error) {
	return scanAccount(r.DB.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
}

func (r *AccountRepository) LockByID(ctx context.Context, id string) (*entity.Account, error) {
	return scanAccount(r.DB.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, id))
}

func (r *AccountRepository) UpdateAvailableAmount(ctx context.Context, id string, amount decimal.Decimal) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE accounts SET saldo_disponivel = $2, updated_at = NOW() WHERE id = $1`,
		id, amount,
	)
	if err != nil {
		return fmt.Errorf("erro ao atualizar saldo: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrNotFound
	}
	return nil
}
