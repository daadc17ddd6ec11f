package usecase

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/xavierca1/ligue-rateio/internal/entity"
)

type ParticipantUseCase struct {
	*Engine
}

func NewParticipantUseCase(engine *Engine) *ParticipantUseCase {
	return &ParticipantUseCase{Engine: engine}
}

// Register devolve o participante já existente na conta quando alguma chave
// bate, na ordem usuário > CPF > email > telefone.
func (uc *ParticipantUseCase) Register(ctx context.Context, input RegisterParticipantInput) (*RegisterParticipantOutput, error) {
	if errs := ValidateRegisterParticipantInput(input); len(errs) > 0 {
		return nil, invalidInput(errs)
	}

	p, err := entity.NewParticipant(input.AccountID, input.UserID, input.Name, input.CPF, input.Email, input.Phone)
	if err != nil {
		return nil, invalidInput([]ValidationError{{"participant", err.Error()}})
	}

	var out RegisterParticipantOutput
	err = uc.inTx(ctx, func(tx Store, evs *txEvents) error {
		for _, id := range p.Identities() {
			existing, err := tx.Participants().FindByIdentity(ctx, input.AccountID, id)
			if errors.Is(err, entity.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			out = RegisterParticipantOutput{Participant: existing, Created: false}
			return nil
		}

		if err := tx.Participants().Create(ctx, p); err != nil {
			return err
		}
		out = RegisterParticipantOutput{Participant: p, Created: true}
		return nil
	})
	if err != nil {
		return nil, AsBillingError(err)
	}

	uc.Logger.WithFields(logrus.Fields{
		"account_id":     input.AccountID,
		"participant_id": out.Participant.ID,
		"created":        out.Created,
	}).Info("participante registrado")
	return &out, nil
}
