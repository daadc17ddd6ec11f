package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/xavierca1/ligue-rateio/internal/entity"
)

// pixTxIDMax é o tamanho máximo do txid em um BR Code estático.
const pixTxIDMax = 25

type ChargePixUseCase struct {
	Store Store
	Pix   PixGenerator
}

func NewChargePixUseCase(store Store, pix PixGenerator) *ChargePixUseCase {
	return &ChargePixUseCase{Store: store, Pix: pix}
}

func (uc *ChargePixUseCase) Execute(ctx context.Context, input ChargeActionInput) (*ChargePixOutput, error) {
	c, err := loadCharge(ctx, uc.Store, input.AccountID, input.ChargeID)
	if err != nil {
		return nil, AsBillingError(err)
	}
	if !c.Status.Outstanding() {
		return nil, invalidStatus(fmt.Sprintf("cobrança %s não está em aberto", c.Status))
	}

	account, err := uc.Store.Accounts().FindByID(ctx, c.AccountID)
	if err != nil {
		return nil, AsBillingError(wrapLookup(err, "conta"))
	}
	if account.PixKey == "" {
		return nil, validationError(CodeValidation, "conta sem chave PIX cadastrada")
	}

	txID := chargeTxID(c.ID)
	payload, err := uc.Pix.GenerateStaticPix(account.PixKey, account.PixPayeeName, account.PixCity, c.Amount, txID)
	if err != nil {
		return nil, validationError(CodeValidation, err.Error())
	}

	return &ChargePixOutput{
		ChargeID: c.ID,
		Amount:   c.Amount.Round(entity.MoneyPlaces),
		TxID:     txID,
		Payload:  payload,
	}, nil
}

func chargeTxID(chargeID string) string {
	id := strings.ReplaceAll(chargeID, "-", "")
	if len(id) > pixTxIDMax {
		id = id[:pixTxIDMax]
	}
	return id
}
