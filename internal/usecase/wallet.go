package usecase

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/xavierca1/ligue-rateio/internal/entity"
)

type WalletUseCase struct {
	*Engine
}

func NewWalletUseCase(engine *Engine) *WalletUseCase {
	return &WalletUseCase{Engine: engine}
}

// GetBalance devolve a soma dos lançamentos, que é a fonte de verdade do saldo.
func (uc *WalletUseCase) GetBalance(ctx context.Context, accountID string) (*BalanceOutput, error) {
	if _, err := uc.UoW.Accounts().FindByID(ctx, accountID); err != nil {
		return nil, AsBillingError(wrapLookup(err, "conta"))
	}
	balance, err := uc.UoW.Wallet().Balance(ctx, accountID)
	if err != nil {
		return nil, AsBillingError(err)
	}
	return &BalanceOutput{AccountID: accountID, Balance: balance}, nil
}

func (uc *WalletUseCase) RequestPayout(ctx context.Context, input PayoutInput) (*entity.WalletEntry, error) {
	if errs := validateAmount("valor", input.Amount); len(errs) > 0 {
		return nil, invalidInput(errs)
	}

	var out *entity.WalletEntry
	err := uc.inTx(ctx, func(tx Store, evs *txEvents) error {
		// lock na conta serializa saques concorrentes
		account, err := tx.Accounts().LockByID(ctx, input.AccountID)
		if err != nil {
			return wrapLookup(err, "conta")
		}
		balance, err := tx.Wallet().Balance(ctx, account.ID)
		if err != nil {
			return err
		}
		entry, err := entity.NewDebit(account.ID, input.Amount, balance)
		if err != nil {
			return err
		}
		if err := tx.Wallet().Append(ctx, entry); err != nil {
			return err
		}
		if err := tx.Accounts().UpdateAvailableAmount(ctx, account.ID, balance.Add(entry.Net)); err != nil {
			return err
		}
		out = entry
		return nil
	})
	if err != nil {
		return nil, AsBillingError(err)
	}

	uc.Logger.WithFields(logrus.Fields{
		"account_id": input.AccountID,
		"valor":      input.Amount.StringFixed(entity.MoneyPlaces),
	}).Info("💸 saque registrado")
	return out, nil
}

// GetFinancialSummary agrega estritamente por status da cobrança:
// recebido = pago, pendente = pendente + aguardando aprovação, atrasado = atrasado.
func (uc *WalletUseCase) GetFinancialSummary(ctx context.Context, accountID string) (*FinancialSummary, error) {
	if _, err := uc.UoW.Accounts().FindByID(ctx, accountID); err != nil {
		return nil, AsBillingError(wrapLookup(err, "conta"))
	}
	sums, err := uc.UoW.Charges().SumByStatus(ctx, accountID)
	if err != nil {
		return nil, AsBillingError(err)
	}

	get := func(s entity.ChargeStatus) decimal.Decimal {
		if v, ok := sums[s]; ok {
			return v
		}
		return decimal.Zero
	}
	return &FinancialSummary{
		AccountID: accountID,
		Received:  get(entity.ChargePago),
		Pending:   get(entity.ChargePendente).Add(get(entity.ChargeAguardandoAprovacao)),
		Overdue:   get(entity.ChargeAtrasado),
	}, nil
}
