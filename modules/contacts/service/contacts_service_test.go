package service

import (
	"errors"
	"testing"

	"meetsync/core/async"
	"meetsync/modules/contacts/dto"
	grantEntity "meetsync/modules/grant/entity"
)

func TestMergeContactsDedupFirstWins(t *testing.T) {
	grants := []grantEntity.Grant{
		{Email: "first@acme.com"},
		{Email: "second@acme.com"},
	}
	outcomes := []async.Outcome[[]dto.Contact]{
		{Value: []dto.Contact{
			{Email: "shared@acme.com", Name: "From First Grant"},
			{Email: "only-first@acme.com"},
		}},
		{Value: []dto.Contact{
			{Email: "shared@acme.com", Name: "From Second Grant"},
			{Email: "only-second@acme.com"},
		}},
	}

	merged, grantErrors := mergeContacts(grants, outcomes)

	if len(grantErrors) != 0 {
		t.Fatalf("unexpected grant errors: %v", grantErrors)
	}
	if len(merged) != 3 {
		t.Fatalf("got %d contacts, want 3: %+v", len(merged), merged)
	}
	if merged[0].Name != "From First Grant" {
		t.Errorf("dedup kept %q, want the first grant's copy", merged[0].Name)
	}
}

func TestMergeContactsFailedGrantIsReportedNotFatal(t *testing.T) {
	grants := []grantEntity.Grant{
		{Email: "broken@acme.com"},
		{Email: "healthy@acme.com"},
	}
	outcomes := []async.Outcome[[]dto.Contact]{
		{Err: errors.New("token refresh failed")},
		{Value: []dto.Contact{{Email: "someone@acme.com"}}},
	}

	merged, grantErrors := mergeContacts(grants, outcomes)

	if len(merged) != 1 || merged[0].Email != "someone@acme.com" {
		t.Errorf("merged = %+v, want the healthy grant's contact", merged)
	}
	if len(grantErrors) != 1 {
		t.Fatalf("got %d grant errors, want 1", len(grantErrors))
	}
	if grantErrors[0] != "broken@acme.com: token refresh failed" {
		t.Errorf("grant error = %q", grantErrors[0])
	}
}

func TestMergeContactsEmpty(t *testing.T) {
	merged, grantErrors := mergeContacts(nil, nil)
	if len(merged) != 0 || len(grantErrors) != 0 {
		t.Errorf("empty input should merge to nothing, got %v / %v", merged, grantErrors)
	}
}
