package coordinator

import "sync"

// Phase is a step of a sync cycle
type Phase int

const (
	PhaseCheckWorker Phase = iota
	PhaseInitContext
	PhaseResolveAccount
	PhaseCheckCredentials
	PhaseRegisterListener
	PhaseBuildCommand
	PhaseDispatch
	PhaseWait
	PhaseUnregisterListener
	PhaseDone
)

// String returns the phase name
func (p Phase) String() string {
	switch p {
	case PhaseCheckWorker:
		return "check_worker"
	case PhaseInitContext:
		return "init_context"
	case PhaseResolveAccount:
		return "resolve_account"
	case PhaseCheckCredentials:
		return "check_credentials"
	case PhaseRegisterListener:
		return "register_listener"
	case PhaseBuildCommand:
		return "build_command"
	case PhaseDispatch:
		return "dispatch"
	case PhaseWait:
		return "wait"
	case PhaseUnregisterListener:
		return "unregister_listener"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// Helper to track phase transitions for testing
type StateRecorder struct {
	mu   sync.Mutex
	path []string
}

func NewStateRecorder() *StateRecorder {
	return &StateRecorder{path: make([]string, 0)}
}

func (r *StateRecorder) Record(p Phase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.path = append(r.path, p.String())
}

func (r *StateRecorder) Path() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.path))
	copy(out, r.path)
	return out
}
