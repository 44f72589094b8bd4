package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	coreEntity "meetsync/core/entity"
	"meetsync/core/errors"
	"meetsync/modules/grant/dto"
	"meetsync/modules/grant/entity"
)

type fakeGrantRepo struct {
	byEmail map[string]*entity.Grant
	active  *entity.Grant
	creates int
	updates int
}

func (r *fakeGrantRepo) Create(_ context.Context, grant *entity.Grant) (*entity.Grant, error) {
	r.creates++
	r.byEmail[grant.Email] = grant
	r.active = grant
	return grant, nil
}

func (r *fakeGrantRepo) Update(_ context.Context, grant *entity.Grant) error {
	r.updates++
	r.byEmail[grant.Email] = grant
	return nil
}

func (r *fakeGrantRepo) GetActiveByCompanyAndEmail(_ context.Context, _ uuid.UUID, email string) (*entity.Grant, error) {
	return r.byEmail[email], nil
}

func (r *fakeGrantRepo) GetActiveByCompanyAndUser(_ context.Context, _, _ uuid.UUID) (*entity.Grant, error) {
	return r.active, nil
}

func (r *fakeGrantRepo) ListActiveByCompany(_ context.Context, _ uuid.UUID) ([]entity.Grant, error) {
	return nil, nil
}

func (r *fakeGrantRepo) Revoke(_ context.Context, _, _ uuid.UUID) error {
	return nil
}

func newTestService(repo *fakeGrantRepo) *GrantService {
	return &GrantService{
		repo:        repo,
		oauthConfig: &oauth2.Config{},
	}
}

func TestMustResolveNotConnected(t *testing.T) {
	svc := newTestService(&fakeGrantRepo{byEmail: map[string]*entity.Grant{}})

	_, appErr := svc.MustResolve(context.Background(), uuid.New(), "nobody@acme.com")
	if appErr == nil {
		t.Fatal("expected a typed error for a user with no grant")
	}
	if appErr.Code != errors.ErrNotConnected {
		t.Errorf("code = %s, want %s", appErr.Code, errors.ErrNotConnected)
	}
}

func TestResolveReturnsNilWithoutError(t *testing.T) {
	svc := newTestService(&fakeGrantRepo{byEmail: map[string]*entity.Grant{}})

	grant, err := svc.Resolve(context.Background(), uuid.New(), "nobody@acme.com")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if grant != nil {
		t.Errorf("grant = %+v, want nil when not connected", grant)
	}
}

func TestEnsureValidTokenSkipsFreshToken(t *testing.T) {
	repo := &fakeGrantRepo{byEmail: map[string]*entity.Grant{}}
	svc := newTestService(repo)

	grant := &entity.Grant{
		Email:          "dana@acme.com",
		GrantToken:     "fresh-token",
		TokenExpiresAt: time.Now().Add(time.Hour),
	}

	token, err := svc.EnsureValidToken(context.Background(), grant)
	if err != nil {
		t.Fatalf("EnsureValidToken: %v", err)
	}
	if token != "fresh-token" {
		t.Errorf("token = %q, want the stored token untouched", token)
	}
	if repo.updates != 0 {
		t.Error("a fresh token must not trigger a persist")
	}
}

// tokenEndpoint serves a canned oauth2 exchange response
func tokenEndpoint(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"exchanged-token","refresh_token":"exchanged-refresh","token_type":"Bearer","expires_in":3600}`)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSaveGrantUpdatesExistingInPlace(t *testing.T) {
	server := tokenEndpoint(t)

	repo := &fakeGrantRepo{
		byEmail: map[string]*entity.Grant{},
		active: &entity.Grant{
			BaseEntity:   coreEntity.BaseEntity{ID: uuid.New()},
			Provider:     "google",
			GrantToken:   "stale-token",
			RefreshToken: "stale-refresh",
			Email:        "dana@acme.com",
			Status:       entity.GrantStatusActive,
		},
	}
	svc := &GrantService{
		repo: repo,
		oauthConfig: &oauth2.Config{
			Endpoint: oauth2.Endpoint{TokenURL: server.URL},
		},
	}

	resp, appErr := svc.SaveGrant(context.Background(), uuid.New(), uuid.New(), &dto.ConnectCallbackRequest{
		Provider: "microsoft",
		Code:     "auth-code",
		Email:    "dana@acme.com",
	})
	if appErr != nil {
		t.Fatalf("SaveGrant: %v", appErr)
	}

	if repo.creates != 0 {
		t.Errorf("creates = %d, reconnection must update in place", repo.creates)
	}
	if repo.updates != 1 {
		t.Errorf("updates = %d, want 1", repo.updates)
	}
	if repo.active.Provider != "microsoft" {
		t.Errorf("provider = %q, want the reconnection provider", repo.active.Provider)
	}
	if repo.active.GrantToken != "exchanged-token" {
		t.Errorf("grant token = %q, want the exchanged token", repo.active.GrantToken)
	}
	if repo.active.RefreshToken != "exchanged-refresh" {
		t.Errorf("refresh token = %q, want the exchanged refresh token", repo.active.RefreshToken)
	}
	if resp.Provider != "microsoft" {
		t.Errorf("response provider = %q, want microsoft", resp.Provider)
	}
}

func TestSaveGrantCreatesWhenNoneActive(t *testing.T) {
	server := tokenEndpoint(t)

	repo := &fakeGrantRepo{byEmail: map[string]*entity.Grant{}}
	svc := &GrantService{
		repo: repo,
		oauthConfig: &oauth2.Config{
			Endpoint: oauth2.Endpoint{TokenURL: server.URL},
		},
	}

	_, appErr := svc.SaveGrant(context.Background(), uuid.New(), uuid.New(), &dto.ConnectCallbackRequest{
		Provider: "google",
		Code:     "auth-code",
		Email:    "dana@acme.com",
	})
	if appErr != nil {
		t.Fatalf("SaveGrant: %v", appErr)
	}

	if repo.creates != 1 || repo.updates != 0 {
		t.Errorf("creates = %d, updates = %d, want a single create", repo.creates, repo.updates)
	}
	if repo.active.Status != entity.GrantStatusActive {
		t.Errorf("status = %q, want active", repo.active.Status)
	}
}
