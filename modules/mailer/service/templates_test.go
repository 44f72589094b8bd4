package service

import (
	"html"
	"strings"
	"testing"
	"time"

	"meetsync/modules/mailer/dto"
)

func sampleEmail(locationType dto.LocationType) *dto.MeetingEmail {
	return &dto.MeetingEmail{
		MeetingID:      "m-123",
		Subject:        "Quarterly Review",
		Description:    "Numbers and next steps",
		OrganizerName:  "Dana",
		OrganizerEmail: "dana@acme.com",
		StartTime:      time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		EndTime:        time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC),
		Timezone:       "UTC",
		LocationType:   locationType,
		JoinURL:        "https://meet.example.com/abc",
		Address:        "1 Main St, Springfield",
		DialInNumber:   "+1 555 0100",
		Recipients:     []dto.Recipient{{Email: "bob@acme.com"}},
	}
}

func TestRenderEmailLocationBlock(t *testing.T) {
	tests := []struct {
		locationType dto.LocationType
		wantContains string
		wantAbsent   []string
	}{
		{dto.LocationVideo, "https://meet.example.com/abc", []string{"1 Main St", "+1 555 0100"}},
		{dto.LocationPhysical, "1 Main St, Springfield", []string{"meet.example.com", "+1 555 0100"}},
		{dto.LocationPhone, "+1 555 0100", []string{"meet.example.com", "1 Main St"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.locationType), func(t *testing.T) {
			rendered, err := RenderEmail(dto.EmailKindInvite, sampleEmail(tt.locationType), "")
			if err != nil {
				t.Fatalf("RenderEmail: %v", err)
			}
			// html/template entity-escapes characters like "+" in text nodes
			body := html.UnescapeString(rendered)
			if !strings.Contains(body, tt.wantContains) {
				t.Errorf("body missing %q for %s location", tt.wantContains, tt.locationType)
			}
			for _, absent := range tt.wantAbsent {
				if strings.Contains(body, absent) {
					t.Errorf("body for %s location must not contain %q", tt.locationType, absent)
				}
			}
		})
	}
}

func TestRenderEmailDeterministic(t *testing.T) {
	email := sampleEmail(dto.LocationVideo)

	first, err := RenderEmail(dto.EmailKindInvite, email, "https://cdn.example.com/m-123.ics")
	if err != nil {
		t.Fatalf("RenderEmail: %v", err)
	}
	second, err := RenderEmail(dto.EmailKindInvite, email, "https://cdn.example.com/m-123.ics")
	if err != nil {
		t.Fatalf("RenderEmail: %v", err)
	}
	if first != second {
		t.Error("identical inputs must render identical bodies")
	}
}

func TestRenderEmailUpdateListsChanges(t *testing.T) {
	email := sampleEmail(dto.LocationVideo)
	email.Changes = []dto.FieldChange{
		{Field: "start_time", Old: "10:00", New: "11:00"},
	}

	body, err := RenderEmail(dto.EmailKindUpdate, email, "")
	if err != nil {
		t.Fatalf("RenderEmail: %v", err)
	}
	if !strings.Contains(body, "start_time") || !strings.Contains(body, "11:00") {
		t.Error("update email should list what changed")
	}
}

func TestSubjectLine(t *testing.T) {
	tests := []struct {
		kind dto.EmailKind
		want string
	}{
		{dto.EmailKindInvite, "Invitation: Quarterly Review"},
		{dto.EmailKindUpdate, "Updated: Quarterly Review"},
		{dto.EmailKindCancel, "Cancelled: Quarterly Review"},
	}
	for _, tt := range tests {
		if got := SubjectLine(tt.kind, "Quarterly Review"); got != tt.want {
			t.Errorf("SubjectLine(%s) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestBuildICSContainsEvent(t *testing.T) {
	data, err := BuildICS(sampleEmail(dto.LocationVideo))
	if err != nil {
		t.Fatalf("BuildICS: %v", err)
	}
	ics := string(data)
	for _, want := range []string{"BEGIN:VCALENDAR", "BEGIN:VEVENT", "Quarterly Review"} {
		if !strings.Contains(ics, want) {
			t.Errorf("ICS output missing %q", want)
		}
	}
}
