package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"golang.org/x/crypto/bcrypt"

	"meetsync/core/cache"
	"meetsync/core/constants"
	"meetsync/core/errors"
	"meetsync/core/logger"
	"meetsync/core/utils"
	"meetsync/modules/company/dto"
	"meetsync/modules/company/entity"
	"meetsync/modules/company/repository"
)

const apiKeyPrefixLen = 8

// CompanyServiceInterface covers tenant management, machine credentials and
// the company-scoped secret lookup used by all agents.
type CompanyServiceInterface interface {
	CreateCompany(ctx context.Context, req *dto.CreateCompanyRequest) (*dto.CompanyResponse, *errors.AppError)
	IssueAPIKey(ctx context.Context, companyID uuid.UUID) (*dto.IssuedAPIKeyResponse, *errors.AppError)
	VerifyAPIKey(ctx context.Context, apiKey string) (*uuid.UUID, error)

	// GetSecret returns the secret value or "" when not configured. The
	// result is cached with a short TTL in an injected cache instance.
	GetSecret(ctx context.Context, companyID uuid.UUID, keyName string) (string, error)
	SetSecret(ctx context.Context, companyID uuid.UUID, req *dto.SetSecretRequest) *errors.AppError
}

type CompanyService struct {
	repo  repository.CompanyRepositoryInterface
	cache *cache.Service
}

func NewCompanyService(repo repository.CompanyRepositoryInterface, cacheService *cache.Service) CompanyServiceInterface {
	return &CompanyService{
		repo:  repo,
		cache: cacheService,
	}
}

func (s *CompanyService) CreateCompany(ctx context.Context, req *dto.CreateCompanyRequest) (*dto.CompanyResponse, *errors.AppError) {
	company := &entity.Company{
		Name: req.Name,
		Slug: slug.Make(req.Name),
	}

	created, err := s.repo.CreateCompany(ctx, company)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to create company", err)
	}

	return &dto.CompanyResponse{
		ID:        created.ID.String(),
		Name:      created.Name,
		Slug:      created.Slug,
		CreatedAt: created.CreatedAt,
	}, nil
}

// IssueAPIKey mints a new plaintext key and stores only its bcrypt hash
func (s *CompanyService) IssueAPIKey(ctx context.Context, companyID uuid.UUID) (*dto.IssuedAPIKeyResponse, *errors.AppError) {
	plaintext := "msk_" + utils.GenerateRandomString(32)
	prefix := plaintext[:apiKeyPrefixLen]

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to hash API key", err)
	}

	key := &entity.APIKey{
		ID:        uuid.New(),
		CompanyID: companyID,
		KeyHash:   string(hash),
		Prefix:    prefix,
		Revoked:   false,
	}

	if err := s.repo.CreateAPIKey(ctx, key); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to store API key", err)
	}

	return &dto.IssuedAPIKeyResponse{
		ID:     key.ID.String(),
		APIKey: plaintext,
		Prefix: prefix,
	}, nil
}

// VerifyAPIKey resolves the key to its company by prefix lookup plus bcrypt
// comparison. Returns nil when the key is unknown or revoked.
func (s *CompanyService) VerifyAPIKey(ctx context.Context, apiKey string) (*uuid.UUID, error) {
	if len(apiKey) < apiKeyPrefixLen {
		return nil, nil
	}

	candidates, err := s.repo.GetAPIKeysByPrefix(ctx, apiKey[:apiKeyPrefixLen])
	if err != nil {
		return nil, err
	}

	for _, candidate := range candidates {
		if bcrypt.CompareHashAndPassword([]byte(candidate.KeyHash), []byte(apiKey)) == nil {
			companyID := candidate.CompanyID
			return &companyID, nil
		}
	}

	return nil, nil
}

func (s *CompanyService) GetSecret(ctx context.Context, companyID uuid.UUID, keyName string) (string, error) {
	cacheKey := fmt.Sprintf("secret:%s:%s", companyID, keyName)

	var cached string
	if s.cache.Get(ctx, cacheKey, &cached) {
		return cached, nil
	}

	secret, err := s.repo.GetSecret(ctx, companyID, keyName)
	if err != nil {
		return "", err
	}
	if secret == nil {
		return "", nil
	}

	if err := s.cache.Set(ctx, cacheKey, secret.SecretValue, constants.CredentialCacheTTL); err != nil {
		logger.Warn("CompanyService:GetSecret:CacheSet", "key_name", keyName, "error", err)
	}

	return secret.SecretValue, nil
}

func (s *CompanyService) SetSecret(ctx context.Context, companyID uuid.UUID, req *dto.SetSecretRequest) *errors.AppError {
	secret := &entity.Secret{
		CompanyID:   companyID,
		KeyName:     req.KeyName,
		SecretValue: req.Value,
	}

	if err := s.repo.UpsertSecret(ctx, secret); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to store secret", err)
	}

	// Invalidate any cached copy so the new value takes effect immediately
	cacheKey := fmt.Sprintf("secret:%s:%s", companyID, req.KeyName)
	_ = s.cache.Delete(ctx, cacheKey)

	return nil
}
