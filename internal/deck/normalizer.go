package deck

import (
	"fmt"

	"go.uber.org/zap"
)

// Trigger says why a deck had to be repaired.
type Trigger int

const (
	TriggerNone Trigger = iota
	TriggerSchema
	TriggerBullets
)

func (t Trigger) String() string {
	switch t {
	case TriggerNone:
		return "none"
	case TriggerSchema:
		return "schema"
	case TriggerBullets:
		return "bullets"
	default:
		return fmt.Sprintf("trigger(%d)", int(t))
	}
}

// RepairContractError is the panic value raised when Repair produced a deck
// that still fails validation. It always indicates a bug in Repair.
type RepairContractError struct {
	Trigger Trigger
	Err     error
}

func (e *RepairContractError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("repaired deck is still invalid (trigger: %s): %v", e.Trigger, e.Err)
	}
	return fmt.Sprintf("repaired deck is still invalid (trigger: %s): content slides without bullets", e.Trigger)
}

func (e *RepairContractError) Unwrap() error { return e.Err }

// Normalizer validates model output and repairs it when needed.
type Normalizer struct {
	schema *Schema
	log    *zap.Logger
}

func NewNormalizer(log *zap.Logger) *Normalizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Normalizer{schema: NewSchema(), log: log}
}

// Validate is the two-layer check used by ValidateAndRepair.
func (n *Normalizer) Validate(v any) bool {
	return n.schema.ValidateStructure(v) == nil && HasContentBullets(v)
}

// ValidateAndRepair returns v unchanged when it is already a valid deck and a
// repaired copy otherwise. A repaired deck that still fails validation panics
// with *RepairContractError.
func (n *Normalizer) ValidateAndRepair(v any) (map[string]any, Trigger) {
	if err := n.schema.ValidateStructure(v); err != nil {
		n.log.Warn("JSON schema validation failed; repairing slides data", zap.Error(err))
		return n.repair(v, TriggerSchema), TriggerSchema
	}
	if !HasContentBullets(v) {
		n.log.Warn("Bullets missing in some slides; repairing slides data")
		return n.repair(v, TriggerBullets), TriggerBullets
	}
	return v.(map[string]any), TriggerNone
}

func (n *Normalizer) repair(v any, trigger Trigger) map[string]any {
	repaired := Repair(v)
	if err := n.schema.ValidateStructure(repaired); err != nil {
		panic(&RepairContractError{Trigger: trigger, Err: err})
	}
	if !HasContentBullets(repaired) {
		panic(&RepairContractError{Trigger: trigger})
	}
	n.log.Debug("Slides data repaired", zap.Stringer("trigger", trigger))
	return repaired
}
