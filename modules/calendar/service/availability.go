package service

import (
	"time"

	"meetsync/core/constants"
	"meetsync/modules/calendar/dto"
)

// AvailabilityCalculator computes common free slots across participants.
// Pure: deterministic given identical inputs, no side effects.
type AvailabilityCalculator struct {
	// IncrementMinutes is the candidate-slot grid step
	IncrementMinutes int
}

func NewAvailabilityCalculator() *AvailabilityCalculator {
	return &AvailabilityCalculator{
		IncrementMinutes: constants.SlotIncrementMinutes,
	}
}

// FindCommonSlots returns every slot of durationSec on the candidate grid
// within [searchStart, searchEnd) where all participants are free, in
// chronological order. An empty result is valid and means "no common slot".
func (c *AvailabilityCalculator) FindCommonSlots(
	participants []dto.ParticipantBusy,
	searchStart, searchEnd int64,
	durationSec int64,
) []dto.TimeSlot {
	return c.FindSlotsWithMinFree(participants, searchStart, searchEnd, durationSec, len(participants))
}

// FindSlotsWithMinFree relaxes the rule to "at least minFree participants
// free". AllAvailable is set on slots where everyone is free.
func (c *AvailabilityCalculator) FindSlotsWithMinFree(
	participants []dto.ParticipantBusy,
	searchStart, searchEnd int64,
	durationSec int64,
	minFree int,
) []dto.TimeSlot {
	slots := []dto.TimeSlot{}
	if durationSec <= 0 || searchStart >= searchEnd {
		return slots
	}

	increment := int64(c.IncrementMinutes) * 60

	for start := searchStart; start+durationSec <= searchEnd; start += increment {
		end := start + durationSec

		free := make([]string, 0, len(participants))
		for _, p := range participants {
			if !isBusy(p.Busy, start, end) {
				free = append(free, p.Email)
			}
		}

		if len(free) < minFree {
			continue
		}

		slots = append(slots, dto.TimeSlot{
			Start:                 time.Unix(start, 0).UTC().Format(time.RFC3339),
			End:                   time.Unix(end, 0).UTC().Format(time.RFC3339),
			AvailableParticipants: free,
			AllAvailable:          len(free) == len(participants),
		})
	}

	return slots
}

// isBusy applies the half-open overlap test against each interval. No
// pre-merge is needed: any single overlap disqualifies the slot.
func isBusy(busy []dto.BusyInterval, slotStart, slotEnd int64) bool {
	for _, b := range busy {
		// Degenerate zero-length intervals never block a slot
		if b.End <= b.Start {
			continue
		}
		if b.Start < slotEnd && b.End > slotStart {
			return true
		}
	}
	return false
}

// Overlaps reports whether the half-open intervals [aStart,aEnd) and
// [bStart,bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd int64) bool {
	return aStart < bEnd && aEnd > bStart
}
