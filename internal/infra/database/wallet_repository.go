package database

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xavierca1/ligue-rateio/internal/entity"
)

type WalletRepository struct {
	DB DBTX
}

func NewWalletRepository(db DBTX) *WalletRepository {
	return &WalletRepository{DB: db}
}

// Append só insere; lançamentos da carteira nunca são alterados.
func (r *WalletRepository) Append(ctx context.Context, e *entity.WalletEntry) error {
	query := `
		INSERT INTO wallet_entries (id, account_id, charge_id, tipo, valor_bruto, taxa, valor_liquido, descricao, created_at)
		VALUES ($1, $2, NULLIF($3, '')::uuid, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.DB.ExecContext(ctx, query,
		e.ID,
		e.AccountID,
		e.ChargeID,
		e.Kind,
		e.Gross,
		e.Fee,
		e.Net,
		e.Description,
		e.CreatedAt,
	)
	if _, dup := uniqueViolation(err); dup {
		return entity.ErrDuplicateWalletEntry
	}
	if err != nil {
		return fmt.Errorf("erro ao lançar na carteira: %w", err)
	}
	return nil
}

func (r *WalletRepository) Balance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.DB.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(valor_liquido), 0) FROM wallet_entries WHERE account_id = $1`,
		accountID,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("erro ao calcular saldo: %w", err)
	}
	return total, nil
}
