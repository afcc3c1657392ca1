package serviceImp

import (
	"agrocal/entities"
	"agrocal/pkg/redistribution/types"
)

// resolution is the five-way redistribution policy, computed once from the
// delta and the buffer situation, then dispatched. Each branch stays
// independently testable this way.
type resolution int

const (
	noAction resolution = iota
	// the completed activity is itself the buffer day and came up short
	bufferSelfDeficit
	// the buffer slot absorbs the whole delta in place
	absorbInBuffer
	// the buffer would exceed its cap; cap it and overflow into a new slot
	capBufferAndOverflow
	// the buffer lands exactly on zero and is removed
	deleteBuffer
	// the buffer goes negative: remove it and reschedule the remainder
	deleteBufferWithDeficit
	// no buffer anywhere: excess becomes a new activity
	noBufferExcess
	// no buffer anywhere: deficit spreads across pending activities
	noBufferDeficit
)

// decide picks the resolution for a planned/actual delta given the buffer
// slot found among the block's pending activities (nil when none) and
// whether the completed activity is itself the buffer day.
func decide(delta float64, buffer *entities.Activity, targetIsBuffer bool) resolution {
	if buffer == nil {
		if targetIsBuffer {
			if delta < 0 {
				return bufferSelfDeficit
			}
			return noAction
		}
		if delta > 0 {
			return noBufferExcess
		}
		return noBufferDeficit
	}

	newBuffer := plannedOr(buffer, types.DefaultBufferHectares) - delta
	switch {
	case newBuffer > types.BufferCapHectares:
		return capBufferAndOverflow
	case newBuffer > 0:
		return absorbInBuffer
	case newBuffer == 0:
		return deleteBuffer
	default:
		return deleteBufferWithDeficit
	}
}

func plannedOr(a *entities.Activity, def float64) float64 {
	if a.PlannedHectares != nil && *a.PlannedHectares != 0 {
		return *a.PlannedHectares
	}
	return def
}
