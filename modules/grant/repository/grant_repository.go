package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"meetsync/core/database"
	"meetsync/core/logger"
	"meetsync/modules/grant/entity"
)

const grantColumns = `
	id, company_id, user_id, provider, grant_token, refresh_token, token_expires_at,
	status, email, scopes, last_validated_at, created_at, updated_at
`

type GrantRepositoryInterface interface {
	Create(ctx context.Context, grant *entity.Grant) (*entity.Grant, error)
	Update(ctx context.Context, grant *entity.Grant) error
	GetActiveByCompanyAndEmail(ctx context.Context, companyID uuid.UUID, email string) (*entity.Grant, error)
	GetActiveByCompanyAndUser(ctx context.Context, companyID, userID uuid.UUID) (*entity.Grant, error)
	ListActiveByCompany(ctx context.Context, companyID uuid.UUID) ([]entity.Grant, error)
	Revoke(ctx context.Context, companyID, userID uuid.UUID) error
}

type GrantRepository struct {
	DB database.Database
}

func NewGrantRepository(db database.Database) *GrantRepository {
	return &GrantRepository{DB: db}
}

func (r *GrantRepository) Create(ctx context.Context, grant *entity.Grant) (*entity.Grant, error) {
	query := `
		INSERT INTO grants (company_id, user_id, provider, grant_token, refresh_token,
		                    token_expires_at, status, email, scopes, last_validated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + grantColumns

	var created entity.Grant
	err := r.DB.GetContext(ctx, &created, query,
		grant.CompanyID, grant.UserID, grant.Provider, grant.GrantToken, grant.RefreshToken,
		grant.TokenExpiresAt, grant.Status, grant.Email, pq.Array(grant.Scopes), grant.LastValidatedAt)
	if err != nil {
		logger.Error("GrantRepository:Create", err)
		return nil, err
	}

	return &created, nil
}

func (r *GrantRepository) Update(ctx context.Context, grant *entity.Grant) error {
	query := `
		UPDATE grants
		SET provider = $2, grant_token = $3, refresh_token = $4, token_expires_at = $5,
		    status = $6, email = $7, scopes = $8, last_validated_at = $9, updated_at = NOW()
		WHERE id = $1
	`

	err := r.DB.ExecContext(ctx, query,
		grant.ID, grant.Provider, grant.GrantToken, grant.RefreshToken, grant.TokenExpiresAt,
		grant.Status, grant.Email, pq.Array(grant.Scopes), grant.LastValidatedAt)
	if err != nil {
		logger.Error("GrantRepository:Update", err)
		return err
	}

	return nil
}

// GetActiveByCompanyAndEmail is the resolver's indexed lookup path
func (r *GrantRepository) GetActiveByCompanyAndEmail(ctx context.Context, companyID uuid.UUID, email string) (*entity.Grant, error) {
	query := `
		SELECT ` + grantColumns + `
		FROM grants
		WHERE company_id = $1 AND email = $2 AND status = 'active'
	`

	var grant entity.Grant
	err := r.DB.GetContext(ctx, &grant, query, companyID, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("GrantRepository:GetActiveByCompanyAndEmail", err)
		return nil, err
	}

	return &grant, nil
}

func (r *GrantRepository) GetActiveByCompanyAndUser(ctx context.Context, companyID, userID uuid.UUID) (*entity.Grant, error) {
	query := `
		SELECT ` + grantColumns + `
		FROM grants
		WHERE company_id = $1 AND user_id = $2 AND status = 'active'
	`

	var grant entity.Grant
	err := r.DB.GetContext(ctx, &grant, query, companyID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("GrantRepository:GetActiveByCompanyAndUser", err)
		return nil, err
	}

	return &grant, nil
}

func (r *GrantRepository) ListActiveByCompany(ctx context.Context, companyID uuid.UUID) ([]entity.Grant, error) {
	query := `
		SELECT ` + grantColumns + `
		FROM grants
		WHERE company_id = $1 AND status = 'active'
		ORDER BY created_at
	`

	var grants []entity.Grant
	err := r.DB.SelectContext(ctx, &grants, query, companyID)
	if err != nil {
		logger.Error("GrantRepository:ListActiveByCompany", err)
		return nil, err
	}

	return grants, nil
}

// Revoke soft-deletes every active grant of the user; rows stay for audit
func (r *GrantRepository) Revoke(ctx context.Context, companyID, userID uuid.UUID) error {
	query := `
		UPDATE grants
		SET status = 'revoked', updated_at = NOW()
		WHERE company_id = $1 AND user_id = $2 AND status = 'active'
	`

	err := r.DB.ExecContext(ctx, query, companyID, userID)
	if err != nil {
		logger.Error("GrantRepository:Revoke", err)
		return err
	}

	return nil
}
