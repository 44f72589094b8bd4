package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"meetsync/core/config"
	"meetsync/core/errors"
	"meetsync/core/logger"
	"meetsync/modules/grant/dto"
	"meetsync/modules/grant/entity"
	"meetsync/modules/grant/repository"
)

// GrantServiceInterface translates (company, user email) into the credential
// needed to call the provider on that user's behalf.
type GrantServiceInterface interface {
	// Resolve returns nil when no active grant exists; read-only.
	Resolve(ctx context.Context, companyID uuid.UUID, email string) (*entity.Grant, error)
	// MustResolve distinguishes "not connected" from lookup failure.
	MustResolve(ctx context.Context, companyID uuid.UUID, email string) (*entity.Grant, *errors.AppError)

	SaveGrant(ctx context.Context, companyID, userID uuid.UUID, req *dto.ConnectCallbackRequest) (*dto.GrantResponse, *errors.AppError)
	ListGrants(ctx context.Context, companyID uuid.UUID) ([]dto.GrantResponse, *errors.AppError)
	ListActiveGrants(ctx context.Context, companyID uuid.UUID) ([]entity.Grant, error)
	Disconnect(ctx context.Context, companyID, userID uuid.UUID) *errors.AppError

	// EnsureValidToken refreshes the grant token when it is about to expire
	// and persists the rotated credentials.
	EnsureValidToken(ctx context.Context, grant *entity.Grant) (string, error)
}

type GrantService struct {
	repo        repository.GrantRepositoryInterface
	oauthConfig *oauth2.Config
}

func NewGrantService(repo repository.GrantRepositoryInterface) GrantServiceInterface {
	cfg := config.Get()

	return &GrantService{
		repo: repo,
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.Provider.ClientID,
			ClientSecret: cfg.Provider.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL: cfg.Provider.TokenURL,
			},
		},
	}
}

func (s *GrantService) Resolve(ctx context.Context, companyID uuid.UUID, email string) (*entity.Grant, error) {
	return s.repo.GetActiveByCompanyAndEmail(ctx, companyID, email)
}

func (s *GrantService) MustResolve(ctx context.Context, companyID uuid.UUID, email string) (*entity.Grant, *errors.AppError) {
	grant, err := s.repo.GetActiveByCompanyAndEmail(ctx, companyID, email)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to look up grant", err)
	}
	if grant == nil {
		return nil, errors.NewAppError(errors.ErrNotConnected,
			"This user has not connected a calendar account yet; ask them to connect it first", nil)
	}
	return grant, nil
}

// SaveGrant exchanges the auth code and upserts the grant. At most one active
// grant exists per (company, user): reconnecting updates in place.
func (s *GrantService) SaveGrant(ctx context.Context, companyID, userID uuid.UUID, req *dto.ConnectCallbackRequest) (*dto.GrantResponse, *errors.AppError) {
	token, err := s.oauthConfig.Exchange(ctx, req.Code)
	if err != nil {
		logger.Error("GrantService:SaveGrant:Exchange:Error", "error", err, "provider", req.Provider)
		return nil, errors.NewAppError(errors.ErrProvider, "Failed to exchange authorization code", err)
	}

	now := time.Now()

	existing, err := s.repo.GetActiveByCompanyAndUser(ctx, companyID, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to look up grant", err)
	}

	if existing != nil {
		existing.Provider = req.Provider
		existing.GrantToken = token.AccessToken
		if token.RefreshToken != "" {
			existing.RefreshToken = token.RefreshToken
		}
		existing.TokenExpiresAt = token.Expiry
		existing.Email = req.Email
		existing.LastValidatedAt = &now

		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to update grant", err)
		}
		return toGrantResponse(existing), nil
	}

	grant := &entity.Grant{
		CompanyID:       companyID,
		UserID:          userID,
		Provider:        req.Provider,
		GrantToken:      token.AccessToken,
		RefreshToken:    token.RefreshToken,
		TokenExpiresAt:  token.Expiry,
		Status:          entity.GrantStatusActive,
		Email:           req.Email,
		Scopes:          []string{"calendar", "email", "contacts"},
		LastValidatedAt: &now,
	}

	created, err := s.repo.Create(ctx, grant)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to create grant", err)
	}

	return toGrantResponse(created), nil
}

func (s *GrantService) ListGrants(ctx context.Context, companyID uuid.UUID) ([]dto.GrantResponse, *errors.AppError) {
	grants, err := s.repo.ListActiveByCompany(ctx, companyID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to list grants", err)
	}

	result := make([]dto.GrantResponse, 0, len(grants))
	for i := range grants {
		result = append(result, *toGrantResponse(&grants[i]))
	}

	return result, nil
}

func (s *GrantService) ListActiveGrants(ctx context.Context, companyID uuid.UUID) ([]entity.Grant, error) {
	return s.repo.ListActiveByCompany(ctx, companyID)
}

func (s *GrantService) Disconnect(ctx context.Context, companyID, userID uuid.UUID) *errors.AppError {
	if err := s.repo.Revoke(ctx, companyID, userID); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to revoke grant", err)
	}
	return nil
}

func (s *GrantService) EnsureValidToken(ctx context.Context, grant *entity.Grant) (string, error) {
	if time.Now().Before(grant.TokenExpiresAt.Add(-5 * time.Minute)) {
		return grant.GrantToken, nil
	}

	logger.Info("GrantService:EnsureValidToken:Refreshing", "grant_id", grant.ID, "email", grant.Email)

	source := s.oauthConfig.TokenSource(ctx, &oauth2.Token{
		AccessToken:  grant.GrantToken,
		RefreshToken: grant.RefreshToken,
		Expiry:       grant.TokenExpiresAt,
	})

	token, err := source.Token()
	if err != nil {
		logger.Error("GrantService:EnsureValidToken:Refresh:Error", "error", err, "grant_id", grant.ID)
		return "", err
	}

	now := time.Now()
	grant.GrantToken = token.AccessToken
	if token.RefreshToken != "" {
		grant.RefreshToken = token.RefreshToken
	}
	grant.TokenExpiresAt = token.Expiry
	grant.LastValidatedAt = &now

	if err := s.repo.Update(ctx, grant); err != nil {
		logger.Error("GrantService:EnsureValidToken:Persist:Error", "error", err, "grant_id", grant.ID)
	}

	return token.AccessToken, nil
}

func toGrantResponse(g *entity.Grant) *dto.GrantResponse {
	return &dto.GrantResponse{
		ID:              g.ID.String(),
		Provider:        g.Provider,
		Email:           g.Email,
		Status:          string(g.Status),
		Scopes:          g.Scopes,
		LastValidatedAt: g.LastValidatedAt,
		ConnectedAt:     g.CreatedAt,
	}
}
