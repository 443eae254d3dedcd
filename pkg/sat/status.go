package sat

// Status classifies the terminal outcome of a solve.
type Status int

const (
	// StatusUnknown means the search stopped (time limit or cancellation)
	// before finding a solution or proving infeasibility.
	StatusUnknown Status = iota
	// StatusModelInvalid means the model failed structural validation and no
	// search was attempted.
	StatusModelInvalid
	// StatusInfeasible means the constraints were proved unsatisfiable.
	StatusInfeasible
	// StatusFeasible means a solution was found but the search stopped before
	// proving it optimal.
	StatusFeasible
	// StatusOptimal means a solution was found and proved optimal (or, for a
	// pure feasibility solve, any solution was found).
	StatusOptimal
)

var statusNames = map[Status]string{
	StatusUnknown:      "UNKNOWN",
	StatusModelInvalid: "MODEL_INVALID",
	StatusInfeasible:   "INFEASIBLE",
	StatusFeasible:     "FEASIBLE",
	StatusOptimal:      "OPTIMAL",
}

// String returns the canonical upper-case name of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// HasSolution reports whether a schedule can be extracted from a solve that
// ended with this status.
func (s Status) HasSolution() bool {
	return s == StatusOptimal || s == StatusFeasible
}
