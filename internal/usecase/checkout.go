package usecase

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

type CheckoutUseCase struct {
	Store   Store
	Gateway PaymentGateway
	Logger  logrus.FieldLogger
}

func NewCheckoutUseCase(store Store, gateway PaymentGateway, logger logrus.FieldLogger) *CheckoutUseCase {
	return &CheckoutUseCase{Store: store, Gateway: gateway, Logger: logger}
}

// Execute abre a sessão de checkout do plano da plataforma para a conta.
func (uc *CheckoutUseCase) Execute(ctx context.Context, input CheckoutInput) (*CheckoutOutput, error) {
	if strings.TrimSpace(input.PlanID) == "" {
		return nil, invalidInput([]ValidationError{{"plan_id", "is required"}})
	}

	if _, err := uc.Store.Accounts().FindByID(ctx, input.AccountID); err != nil {
		return nil, AsBillingError(wrapLookup(err, "conta"))
	}
	plan, err := uc.Store.Plans().FindByID(ctx, input.PlanID)
	if err != nil {
		return nil, AsBillingError(wrapLookup(err, "plano"))
	}

	url, err := uc.Gateway.CreateCheckoutSession(ctx, input.AccountID, plan)
	if err != nil {
		uc.Logger.WithError(err).WithField("account_id", input.AccountID).Error("❌ falha ao criar checkout no gateway")
		return nil, infraError(CodeGateway, "falha ao criar sessão de pagamento", err)
	}
	return &CheckoutOutput{URL: url}, nil
}
