package service

import (
	"context"

	"github.com/google/uuid"

	"meetsync/core/async"
	"meetsync/core/cache"
	"meetsync/core/constants"
	"meetsync/core/errors"
	"meetsync/core/logger"
	"meetsync/modules/contacts/dto"
	grantEntity "meetsync/modules/grant/entity"
	grantService "meetsync/modules/grant/service"
)

const directoryPageSize = 200

// ContactsServiceInterface resolves participant directory profiles. All
// lookups are best-effort: a remote failure yields "not found", never an
// error, because enrichment must not block meeting creation.
type ContactsServiceInterface interface {
	// ResolveContact is cache-first with a 7-day TTL keyed (grant, email).
	ResolveContact(ctx context.Context, companyID uuid.UUID, organizerEmail, email string) *dto.Contact

	// CompanyDirectory merges contacts across all active grants,
	// de-duplicated by primary email, first grant in iteration order wins.
	CompanyDirectory(ctx context.Context, companyID uuid.UUID) (*dto.DirectoryResponse, *errors.AppError)
}

type ContactsService struct {
	grants grantService.GrantServiceInterface
	cache  *cache.Service
	client *providerClient
}

func NewContactsService(grants grantService.GrantServiceInterface, cacheService *cache.Service) ContactsServiceInterface {
	return &ContactsService{
		grants: grants,
		cache:  cacheService,
		client: newProviderClient(),
	}
}

func (s *ContactsService) ResolveContact(ctx context.Context, companyID uuid.UUID, organizerEmail, email string) *dto.Contact {
	grant, err := s.grants.Resolve(ctx, companyID, organizerEmail)
	if err != nil || grant == nil {
		return nil
	}

	key := cache.Key(grant.ID.String(), "contact", email)
	var cached dto.Contact
	if s.cache.Get(ctx, key, &cached) {
		return &cached
	}

	bearer, err := s.grants.EnsureValidToken(ctx, grant)
	if err != nil {
		logger.Warn("ContactsService:ResolveContact:Token", "email", email, "error", err)
		return nil
	}

	contact, err := s.client.SearchByEmail(ctx, bearer, grant.ID.String(), email)
	if err != nil {
		logger.Warn("ContactsService:ResolveContact:Remote", "email", email, "error", err)
		return nil
	}
	if contact == nil {
		return nil
	}

	if err := s.cache.Set(ctx, key, contact, constants.ContactCacheTTL); err != nil {
		logger.Warn("ContactsService:ResolveContact:CacheSet", "email", email, "error", err)
	}

	return contact
}

func (s *ContactsService) CompanyDirectory(ctx context.Context, companyID uuid.UUID) (*dto.DirectoryResponse, *errors.AppError) {
	grants, err := s.grants.ListActiveGrants(ctx, companyID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to list grants", err)
	}

	outcomes := async.Settle(ctx, grants, func(ctx context.Context, grant grantEntity.Grant) ([]dto.Contact, error) {
		bearer, err := s.grants.EnsureValidToken(ctx, &grant)
		if err != nil {
			return nil, err
		}
		return s.client.List(ctx, bearer, grant.ID.String(), directoryPageSize)
	})

	merged, grantErrors := mergeContacts(grants, outcomes)
	for _, msg := range grantErrors {
		logger.Warn("ContactsService:CompanyDirectory:GrantFailed", "error", msg)
	}

	return &dto.DirectoryResponse{
		Contacts:    merged,
		Total:       len(merged),
		GrantErrors: grantErrors,
	}, nil
}

// mergeContacts folds per-grant results in grant iteration order so dedup
// is deterministic: the first occurrence of an email wins. Failed grants
// contribute error strings instead of contacts.
func mergeContacts(grants []grantEntity.Grant, outcomes []async.Outcome[[]dto.Contact]) ([]dto.Contact, []string) {
	seen := make(map[string]bool)
	merged := []dto.Contact{}
	var grantErrors []string

	for i, o := range outcomes {
		if o.Err != nil {
			grantErrors = append(grantErrors, grants[i].Email+": "+o.Err.Error())
			continue
		}
		for _, contact := range o.Value {
			if seen[contact.Email] {
				continue
			}
			seen[contact.Email] = true
			merged = append(merged, contact)
		}
	}

	return merged, grantErrors
}
