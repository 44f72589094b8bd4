package service

import (
	"testing"
	"time"

	"meetsync/modules/calendar/dto"
)

func epoch(value string) int64 {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t.Unix()
}

func TestFindCommonSlotsSingleBusyBlock(t *testing.T) {
	// Window 09:00-11:00, one participant busy 09:00-10:00, 30-minute
	// meetings: the free slots start at 10:00, 10:15 and 10:30.
	calc := NewAvailabilityCalculator()

	participants := []dto.ParticipantBusy{
		{Email: "alice@acme.com", Busy: []dto.BusyInterval{
			{Start: epoch("2026-09-01T09:00:00Z"), End: epoch("2026-09-01T10:00:00Z")},
		}},
	}

	slots := calc.FindCommonSlots(participants,
		epoch("2026-09-01T09:00:00Z"), epoch("2026-09-01T11:00:00Z"), 30*60)

	want := []string{
		"2026-09-01T10:00:00Z",
		"2026-09-01T10:15:00Z",
		"2026-09-01T10:30:00Z",
	}
	if len(slots) != len(want) {
		t.Fatalf("got %d slots, want %d: %+v", len(slots), len(want), slots)
	}
	for i, w := range want {
		if slots[i].Start != w {
			t.Errorf("slot %d start = %s, want %s", i, slots[i].Start, w)
		}
		if !slots[i].AllAvailable {
			t.Errorf("slot %d should be all-available", i)
		}
	}
}

func TestFindCommonSlotsChronologicalOrder(t *testing.T) {
	calc := NewAvailabilityCalculator()

	participants := []dto.ParticipantBusy{
		{Email: "a@acme.com", Busy: []dto.BusyInterval{
			{Start: epoch("2026-09-01T09:30:00Z"), End: epoch("2026-09-01T10:00:00Z")},
		}},
		{Email: "b@acme.com"},
	}

	slots := calc.FindCommonSlots(participants,
		epoch("2026-09-01T09:00:00Z"), epoch("2026-09-01T12:00:00Z"), 60*60)

	for i := 1; i < len(slots); i++ {
		if slots[i-1].Start >= slots[i].Start {
			t.Fatalf("slots out of order at %d: %s then %s", i, slots[i-1].Start, slots[i].Start)
		}
	}
}

func TestFindCommonSlotsDeterministic(t *testing.T) {
	calc := NewAvailabilityCalculator()

	participants := []dto.ParticipantBusy{
		{Email: "a@acme.com", Busy: []dto.BusyInterval{
			{Start: epoch("2026-09-01T10:00:00Z"), End: epoch("2026-09-01T10:45:00Z")},
		}},
	}

	first := calc.FindCommonSlots(participants,
		epoch("2026-09-01T09:00:00Z"), epoch("2026-09-01T12:00:00Z"), 30*60)
	second := calc.FindCommonSlots(participants,
		epoch("2026-09-01T09:00:00Z"), epoch("2026-09-01T12:00:00Z"), 30*60)

	if len(first) != len(second) {
		t.Fatalf("repeat call changed slot count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Start != second[i].Start || first[i].End != second[i].End {
			t.Errorf("slot %d differs between identical calls", i)
		}
	}
}

func TestFindCommonSlotsZeroLengthBusyIgnored(t *testing.T) {
	calc := NewAvailabilityCalculator()

	participants := []dto.ParticipantBusy{
		{Email: "a@acme.com", Busy: []dto.BusyInterval{
			{Start: epoch("2026-09-01T09:00:00Z"), End: epoch("2026-09-01T09:00:00Z")},
			{Start: epoch("2026-09-01T10:00:00Z"), End: epoch("2026-09-01T09:00:00Z")},
		}},
	}

	slots := calc.FindCommonSlots(participants,
		epoch("2026-09-01T09:00:00Z"), epoch("2026-09-01T10:00:00Z"), 30*60)

	// The whole window stays free: 09:00, 09:15, 09:30
	if len(slots) != 3 {
		t.Fatalf("got %d slots, want 3 (degenerate intervals must not block): %+v", len(slots), slots)
	}
}

func TestFindCommonSlotsDurationExceedsWindow(t *testing.T) {
	calc := NewAvailabilityCalculator()

	slots := calc.FindCommonSlots(
		[]dto.ParticipantBusy{{Email: "a@acme.com"}},
		epoch("2026-09-01T09:00:00Z"), epoch("2026-09-01T09:30:00Z"), 60*60)

	if len(slots) != 0 {
		t.Errorf("got %d slots, want 0 when duration exceeds the window", len(slots))
	}
}

func TestFindCommonSlotsInvalidInputs(t *testing.T) {
	calc := NewAvailabilityCalculator()

	if got := calc.FindCommonSlots(nil, 100, 100, 900); len(got) != 0 {
		t.Errorf("empty window: got %d slots, want 0", len(got))
	}
	if got := calc.FindCommonSlots(nil, 200, 100, 900); len(got) != 0 {
		t.Errorf("inverted window: got %d slots, want 0", len(got))
	}
	if got := calc.FindCommonSlots(nil, 0, 7200, 0); len(got) != 0 {
		t.Errorf("zero duration: got %d slots, want 0", len(got))
	}
}

func TestFindSlotsWithMinFree(t *testing.T) {
	calc := NewAvailabilityCalculator()

	participants := []dto.ParticipantBusy{
		{Email: "busy@acme.com", Busy: []dto.BusyInterval{
			{Start: epoch("2026-09-01T09:00:00Z"), End: epoch("2026-09-01T11:00:00Z")},
		}},
		{Email: "free@acme.com"},
	}

	// All-must-be-free finds nothing in 09:00-10:00.
	strict := calc.FindCommonSlots(participants,
		epoch("2026-09-01T09:00:00Z"), epoch("2026-09-01T10:00:00Z"), 30*60)
	if len(strict) != 0 {
		t.Fatalf("strict: got %d slots, want 0", len(strict))
	}

	// minFree=1 returns slots where only the free participant attends.
	relaxed := calc.FindSlotsWithMinFree(participants,
		epoch("2026-09-01T09:00:00Z"), epoch("2026-09-01T10:00:00Z"), 30*60, 1)
	if len(relaxed) == 0 {
		t.Fatal("relaxed: expected slots with one free participant")
	}
	for _, s := range relaxed {
		if s.AllAvailable {
			t.Errorf("slot %s wrongly marked all-available", s.Start)
		}
		if len(s.AvailableParticipants) != 1 || s.AvailableParticipants[0] != "free@acme.com" {
			t.Errorf("slot %s available = %v", s.Start, s.AvailableParticipants)
		}
	}
}

func TestOverlapsHalfOpen(t *testing.T) {
	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd int64
		want                           bool
	}{
		{"disjoint", 0, 10, 20, 30, false},
		{"touching at boundary", 0, 10, 10, 20, false},
		{"partial overlap", 0, 15, 10, 20, true},
		{"contained", 0, 30, 10, 20, true},
		{"identical", 10, 20, 10, 20, true},
		{"one second overlap", 0, 11, 10, 20, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd); got != tt.want {
				t.Errorf("Overlaps(%d,%d,%d,%d) = %v, want %v",
					tt.aStart, tt.aEnd, tt.bStart, tt.bEnd, got, tt.want)
			}
		})
	}
}

func TestFindCommonSlotsNeverOverlapBusy(t *testing.T) {
	// Every returned slot, re-checked against the original busy
	// intervals, must be free for everyone.
	calc := NewAvailabilityCalculator()

	participants := []dto.ParticipantBusy{
		{Email: "alice@acme.com", Busy: []dto.BusyInterval{
			{Start: epoch("2026-09-01T09:00:00Z"), End: epoch("2026-09-01T09:45:00Z")},
			{Start: epoch("2026-09-01T12:30:00Z"), End: epoch("2026-09-01T13:00:00Z")},
		}},
		{Email: "bob@acme.com", Busy: []dto.BusyInterval{
			{Start: epoch("2026-09-01T10:15:00Z"), End: epoch("2026-09-01T11:00:00Z")},
			{Start: epoch("2026-09-01T14:00:00Z"), End: epoch("2026-09-01T15:30:00Z")},
		}},
		{Email: "carol@acme.com", Busy: []dto.BusyInterval{
			{Start: epoch("2026-09-01T09:30:00Z"), End: epoch("2026-09-01T10:30:00Z")},
		}},
	}

	for _, durationSec := range []int64{15 * 60, 30 * 60, 60 * 60} {
		slots := calc.FindCommonSlots(participants,
			epoch("2026-09-01T09:00:00Z"), epoch("2026-09-01T17:00:00Z"), durationSec)
		if len(slots) == 0 {
			t.Fatalf("expected free slots for %ds meetings in an 8h window", durationSec)
		}

		for _, slot := range slots {
			slotStart := epoch(slot.Start)
			slotEnd := epoch(slot.End)
			if slotEnd-slotStart != durationSec {
				t.Errorf("slot %s-%s is not %ds long", slot.Start, slot.End, durationSec)
			}
			for _, p := range participants {
				for _, busy := range p.Busy {
					if Overlaps(slotStart, slotEnd, busy.Start, busy.End) {
						t.Errorf("slot %s-%s overlaps %s busy interval [%d,%d)",
							slot.Start, slot.End, p.Email, busy.Start, busy.End)
					}
				}
			}
		}
	}
}
