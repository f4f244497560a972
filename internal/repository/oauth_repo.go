package repository

import (
	"context"

	"todo_webapp/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type OAuthRepository struct {
	db *pgxpool.Pool
}

func NewOAuthRepository(db *pgxpool.Pool) *OAuthRepository {
	return &OAuthRepository{db: db}
}

func (r *OAuthRepository) GetByProviderSubject(ctx context.Context, provider, subject string) (*domain.OAuthIdentity, error) {
	var id domain.OAuthIdentity
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, provider, subject, email, created_at
		 FROM oauth_identities
		 WHERE provider = $1 AND subject = $2`,
		provider, subject,
	).Scan(&id.ID, &id.UserID, &id.Provider, &id.Subject, &id.Email, &id.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &id, nil
}

func (r *OAuthRepository) Create(ctx context.Context, id *domain.OAuthIdentity) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO oauth_identities (user_id, provider, subject, email)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		id.UserID, id.Provider, id.Subject, id.Email,
	).Scan(&id.ID, &id.CreatedAt)
	return translate(err)
}
