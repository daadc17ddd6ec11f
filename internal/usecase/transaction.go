package usecase

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Transaction é uma saga simples: cada operação concluída registra sua
// compensação, executada em ordem reversa se uma operação posterior falhar.
// Usada para desfazer efeitos externos (upload de comprovante) quando a
// transação do banco não confirma.
type Transaction struct {
	operations    []Operation
	compensations []Compensation
	logger        logrus.FieldLogger
}

type Operation struct {
	Name string
	Fn   func(context.Context) error
}

type Compensation struct {
	Name string
	Fn   func(context.Context) error
}

func NewTransaction(logger logrus.FieldLogger) *Transaction {
	return &Transaction{logger: logger}
}

// AddStep registra a operação e sua compensação (nil quando não há o que desfazer).
func (t *Transaction) AddStep(name string, fn, compensate func(context.Context) error) {
	t.operations = append(t.operations, Operation{name, fn})
	t.compensations = append(t.compensations, Compensation{name, compensate})
}

func (t *Transaction) Execute(ctx context.Context) error {
	for i, op := range t.operations {
		if err := op.Fn(ctx); err != nil {
			t.rollback(ctx, i)
			return fmt.Errorf("operation '%s' failed: %w", op.Name, err)
		}
	}
	return nil
}

func (t *Transaction) rollback(ctx context.Context, failedAt int) {
	// a compensação roda mesmo com ctx cancelado
	ctx = context.WithoutCancel(ctx)
	for i := failedAt - 1; i >= 0; i-- {
		comp := t.compensations[i]
		if comp.Fn == nil {
			continue
		}
		if err := comp.Fn(ctx); err != nil {
			t.logger.WithError(err).WithField("step", comp.Name).Warn("⚠️ compensação falhou, risco de inconsistência")
		}
	}
}
