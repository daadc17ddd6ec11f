package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xavierca1/ligue-rateio/internal/entity"
)

type ParticipantRepository struct {
	DB DBTX
}

func NewParticipantRepository(db DBTX) *ParticipantRepository {
	return &ParticipantRepository{DB: db}
}

const participantColumns = `id, account_id, user_id, nome, cpf, email, telefone, created_at, updated_at`

// identityColumn mapeia o tipo de identidade para a coluna; nunca vem do usuário.
var identityColumn = map[entity.IdentityKind]string{
	entity.IdentityUser:  "user_id",
	entity.IdentityCPF:   "cpf",
	entity.IdentityEmail: "email",
	entity.IdentityPhone: "telefone",
}

func (r *ParticipantRepository) Create(ctx context.Context, p *entity.Participant) error {
	query := `
		INSERT INTO participants (id, account_id, user_id, nome, cpf, email, telefone, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8, $9)
	`
	_, err := r.DB.ExecContext(ctx, query,
		p.ID,
		p.AccountID,
		p.UserID,
		p.Name,
		p.CPF,
		p.Email,
		p.Phone,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if _, dup := uniqueViolation(err); dup {
		return entity.ErrDuplicateParticipant
	}
	if err != nil {
		return fmt.Errorf("erro ao criar participante: %w", err)
	}
	return nil
}

func scanParticipant(row rowScanner) (*entity.Participant, error) {
	var p entity.Participant
	var userID, cpf, email, phone sql.NullString
	if err := row.Scan(&p.ID, &p.AccountID, &userID, &p.Name, &cpf, &email, &phone, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	p.UserID = nullString(userID)
	p.CPF = nullString(cpf)
	p.Email = nullString(email)
	p.Phone = nullString(phone)
	return &p, nil
}

func (r *ParticipantRepository) FindByID(ctx context.Context, id string) (*entity.Participant, error) {
	return scanParticipant(r.DB.QueryRowContext(ctx, `SELECT `+participantColumns+` FROM participants WHERE id = $1`, id))
}

func (r *ParticipantRepository) FindByIdentity(ctx context.Context, accountID string, id entity.Identity) (*entity.Participant, error) {
	column, ok := identityColumn[id.Kind]
	if !ok {
		return nil, fmt.Errorf("identidade desconhecida: %s", id.Kind)
	}
	query := `SELECT ` + participantColumns + ` FROM participants WHERE account_id = $1 AND ` + column + ` = $2`
	return scanParticipant(r.DB.QueryRowContext(ctx, query, accountID, id.Value))
}
