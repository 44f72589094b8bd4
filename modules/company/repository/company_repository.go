package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"meetsync/core/database"
	"meetsync/core/logger"
	"meetsync/modules/company/entity"
)

type CompanyRepositoryInterface interface {
	CreateCompany(ctx context.Context, company *entity.Company) (*entity.Company, error)
	GetCompanyByID(ctx context.Context, id uuid.UUID) (*entity.Company, error)

	CreateAPIKey(ctx context.Context, key *entity.APIKey) error
	GetAPIKeysByPrefix(ctx context.Context, prefix string) ([]entity.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID) error

	UpsertSecret(ctx context.Context, secret *entity.Secret) error
	GetSecret(ctx context.Context, companyID uuid.UUID, keyName string) (*entity.Secret, error)
}

type CompanyRepository struct {
	DB database.Database
}

func NewCompanyRepository(db database.Database) *CompanyRepository {
	return &CompanyRepository{DB: db}
}

func (r *CompanyRepository) CreateCompany(ctx context.Context, company *entity.Company) (*entity.Company, error) {
	query := `
		INSERT INTO companies (name, slug)
		VALUES ($1, $2)
		RETURNING id, name, slug, created_at, updated_at
	`

	var created entity.Company
	err := r.DB.GetContext(ctx, &created, query, company.Name, company.Slug)
	if err != nil {
		logger.Error("CompanyRepository:CreateCompany", err)
		return nil, err
	}

	return &created, nil
}

func (r *CompanyRepository) GetCompanyByID(ctx context.Context, id uuid.UUID) (*entity.Company, error) {
	query := `SELECT id, name, slug, created_at, updated_at FROM companies WHERE id = $1`

	var company entity.Company
	err := r.DB.GetContext(ctx, &company, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("CompanyRepository:GetCompanyByID", err)
		return nil, err
	}

	return &company, nil
}

func (r *CompanyRepository) CreateAPIKey(ctx context.Context, key *entity.APIKey) error {
	query := `
		INSERT INTO company_api_keys (id, company_id, key_hash, prefix, revoked)
		VALUES ($1, $2, $3, $4, $5)
	`

	err := r.DB.ExecContext(ctx, query, key.ID, key.CompanyID, key.KeyHash, key.Prefix, key.Revoked)
	if err != nil {
		logger.Error("CompanyRepository:CreateAPIKey", err)
		return err
	}

	return nil
}

func (r *CompanyRepository) GetAPIKeysByPrefix(ctx context.Context, prefix string) ([]entity.APIKey, error) {
	query := `
		SELECT id, company_id, key_hash, prefix, revoked, created_at
		FROM company_api_keys
		WHERE prefix = $1 AND revoked = false
	`

	var keys []entity.APIKey
	err := r.DB.SelectContext(ctx, &keys, query, prefix)
	if err != nil {
		logger.Error("CompanyRepository:GetAPIKeysByPrefix", err)
		return nil, err
	}

	return keys, nil
}

func (r *CompanyRepository) RevokeAPIKey(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE company_api_keys SET revoked = true WHERE id = $1`
	err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		logger.Error("CompanyRepository:RevokeAPIKey", err)
		return err
	}
	return nil
}

func (r *CompanyRepository) UpsertSecret(ctx context.Context, secret *entity.Secret) error {
	query := `
		INSERT INTO company_secrets (company_id, key_name, secret_value)
		VALUES ($1, $2, $3)
		ON CONFLICT (company_id, key_name) DO UPDATE SET secret_value = $3, updated_at = NOW()
	`

	err := r.DB.ExecContext(ctx, query, secret.CompanyID, secret.KeyName, secret.SecretValue)
	if err != nil {
		logger.Error("CompanyRepository:UpsertSecret", err)
		return err
	}

	return nil
}

func (r *CompanyRepository) GetSecret(ctx context.Context, companyID uuid.UUID, keyName string) (*entity.Secret, error) {
	query := `
		SELECT id, company_id, key_name, secret_value, created_at, updated_at
		FROM company_secrets
		WHERE company_id = $1 AND key_name = $2
	`

	var secret entity.Secret
	err := r.DB.GetContext(ctx, &secret, query, companyID, keyName)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("CompanyRepository:GetSecret", err)
		return nil, err
	}

	return &secret, nil
}
