// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package primary

// Phase is where a Primary sits within its current round's state machine.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseProposing
	PhaseAwaitingSignatures
	PhaseCertified
	PhaseBroadcasting
	PhaseAwaitingParents
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseProposing:
		return "Proposing"
	case PhaseAwaitingSignatures:
		return "AwaitingSignatures"
	case PhaseCertified:
		return "Certified"
	case PhaseBroadcasting:
		return "Broadcasting"
	case PhaseAwaitingParents:
		return "AwaitingParents"
	default:
		return "Unknown"
	}
}
