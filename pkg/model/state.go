package model

// UpdateState is the observable state of one application's update engine.
type UpdateState int

const (
	StateIdle UpdateState = iota
	StateGatheringInfo
	StateDownloadingUpdate
	StateInstallingUpdate
	StateUpdated
	StateFailed
	StateUnsupported
)

var stateNames = map[UpdateState]string{
	StateIdle:              "idle",
	StateGatheringInfo:     "gathering-info",
	StateDownloadingUpdate: "downloading",
	StateInstallingUpdate:  "installing",
	StateUpdated:           "updated",
	StateFailed:            "failed",
	StateUnsupported:       "unsupported",
}

func (s UpdateState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsTerminal reports whether s ends an update attempt.
func (s UpdateState) IsTerminal() bool {
	return s == StateUpdated || s == StateFailed || s == StateUnsupported
}
