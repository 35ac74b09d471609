package bootstrap

// Phase is a step of the bootstrap sequence.
type Phase int

const (
	PhaseCold Phase = iota
	PhaseWarm
	PhaseConnecting
	PhaseFinalize
)

// String returns a human-readable representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseCold:
		return "ColdStart"
	case PhaseWarm:
		return "WarmStart"
	case PhaseConnecting:
		return "Connecting"
	case PhaseFinalize:
		return "Finalize"
	default:
		return "Unknown"
	}
}

// RestartCause classifies how the current boot cycle began. The warm path
// uses it to pick which persistent counter to bump.
type RestartCause int

const (
	// CausePowerOn is a boot after full power loss; the persistent region
	// holds garbage and the record cannot be valid.
	CausePowerOn RestartCause = iota

	// CauseExternalReset is any non-sleep restart: watchdog, reset pin,
	// software restart.
	CauseExternalReset

	// CauseDeepSleepWake is a restart that resumed from the low-power
	// suspend state.
	CauseDeepSleepWake
)

// String returns a human-readable representation of the cause.
func (c RestartCause) String() string {
	switch c {
	case CausePowerOn:
		return "PowerOn"
	case CauseExternalReset:
		return "ExternalReset"
	case CauseDeepSleepWake:
		return "DeepSleepWake"
	default:
		return "Unknown"
	}
}
