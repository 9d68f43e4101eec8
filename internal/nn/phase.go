package nn

// Phase is the position of a Sequential model within one training step.
//
//	Idle → Forwarding → LossComputed → Backpropagating → Updated → Idle
//
// A failed step returns straight to Idle.
type Phase int

// Training step phases.
const (
	PhaseIdle Phase = iota
	PhaseForwarding
	PhaseLossComputed
	PhaseBackpropagating
	PhaseUpdated
)

var phaseNames = [...]string{
	PhaseIdle:            "idle",
	PhaseForwarding:      "forwarding",
	PhaseLossComputed:    "loss_computed",
	PhaseBackpropagating: "backpropagating",
	PhaseUpdated:         "updated",
}

// String returns the lower-case phase name.
func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}
