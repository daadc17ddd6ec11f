package entity

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var nonDigits = regexp.MustCompile(`\D`)

// Participant é quem paga uma vaga dentro de uma Account.
type Participant struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	UserID    string    `json:"user_id,omitempty"`
	Name      string    `json:"nome"`
	CPF       string    `json:"cpf,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"telefone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IdentityKind identifica qual campo torna o participante único na Account.
type IdentityKind string

const (
	IdentityUser  IdentityKind = "user_id"
	IdentityCPF   IdentityKind = "cpf"
	IdentityEmail IdentityKind = "email"
	IdentityPhone IdentityKind = "telefone"
)

// Identity é a chave de unicidade com maior prioridade disponível.
type Identity struct {
	Kind  IdentityKind
	Value string
}

func NewParticipant(accountID, userID, name, cpf, email, phone string) (*Participant, error) {
	now := time.Now()
	p := &Participant{
		ID:        uuid.New().String(),
		AccountID: accountID,
		UserID:    strings.TrimSpace(userID),
		Name:      strings.TrimSpace(name),
		CPF:       nonDigits.ReplaceAllString(cpf, ""),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Phone:     nonDigits.ReplaceAllString(phone, ""),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Participant) Validate() error {
	if p.AccountID == "" {
		return errors.New("account_id is required")
	}
	if p.Name == "" {
		return errors.New("name is required")
	}
	if _, ok := p.Identity(); !ok {
		return errors.New("user_id, cpf, email or phone is required")
	}
	return nil
}

// Identity segue a prioridade usuário vinculado > CPF > email > telefone.
func (p *Participant) Identity() (Identity, bool) {
	ids := p.Identities()
	if len(ids) == 0 {
		return Identity{}, false
	}
	return ids[0], true
}

// Identities lista todas as chaves preenchidas, da mais forte para a mais fraca.
func (p *Participant) Identities() []Identity {
	var ids []Identity
	if p.UserID != "" {
		ids = append(ids, Identity{IdentityUser, p.UserID})
	}
	if p.CPF != "" {
		ids = append(ids, Identity{IdentityCPF, p.CPF})
	}
	if p.Email != "" {
		ids = append(ids, Identity{IdentityEmail, p.Email})
	}
	if p.Phone != "" {
		ids = append(ids, Identity{IdentityPhone, p.Phone})
	}
	return ids
}
