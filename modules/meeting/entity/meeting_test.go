package entity

import "testing"

func TestStatusMonotonic(t *testing.T) {
	tests := []struct {
		from, to MeetingStatus
		want     bool
	}{
		{MeetingStatusDraft, MeetingStatusScheduled, true},
		{MeetingStatusScheduled, MeetingStatusSent, true},
		{MeetingStatusSent, MeetingStatusConfirmed, true},
		{MeetingStatusDraft, MeetingStatusSent, true},
		{MeetingStatusSent, MeetingStatusScheduled, false},
		{MeetingStatusScheduled, MeetingStatusDraft, false},
		{MeetingStatusDraft, MeetingStatusCancelled, true},
		{MeetingStatusSent, MeetingStatusCancelled, true},
		{MeetingStatusCancelled, MeetingStatusScheduled, false},
		{MeetingStatusCancelled, MeetingStatusCancelled, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanAdvanceTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
