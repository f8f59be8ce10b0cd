package sim

// Phase is a step in the simulation lifecycle. Phases only move forward.
type Phase int

const (
	Constructed Phase = iota
	ResourcesExchanged
	Initialized
	Running
	Finalized
)

func (p Phase) String() string {
	switch p {
	case Constructed:
		return "constructed"
	case ResourcesExchanged:
		return "resources exchanged"
	case Initialized:
		return "initialized"
	case Running:
		return "running"
	case Finalized:
		return "finalized"
	default:
		return "unknown"
	}
}
