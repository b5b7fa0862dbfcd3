package workflow

// State is a workflow position. The forward states are strictly ordered;
// each is reachable only from its predecessor. Failed is reachable from
// any non-terminal state, RolledBack only from Failed when rollback is
// enabled.
type State int

const (
	StateCreated State = iota
	StateRepositoryProvisioned
	StateCommitApplied
	StatePipelineTriggered
	StatePullRequestOpened
	StateMerged
	StateDeployed
	StateRegistryUpdated
	StateFailed
	StateRolledBack
)

var stateNames = map[State]string{
	StateCreated:               "Created",
	StateRepositoryProvisioned: "RepositoryProvisioned",
	StateCommitApplied:         "CommitApplied",
	StatePipelineTriggered:     "PipelineTriggered",
	StatePullRequestOpened:     "PullRequestOpened",
	StateMerged:                "Merged",
	StateDeployed:              "Deployed",
	StateRegistryUpdated:       "RegistryUpdated",
	StateFailed:                "Failed",
	StateRolledBack:            "RolledBack",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Terminal reports whether the workflow can advance no further.
func (s State) Terminal() bool {
	return s == StateRegistryUpdated || s == StateFailed || s == StateRolledBack
}
