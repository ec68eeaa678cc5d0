// Package gate implements the interception pipeline around agent tool
// calls: pre-action gates that can refuse a write, post-action gates that
// demand remediation, and completion gates that keep the agent working
// until project-level checks pass.
package gate

// Action is the kind of unit of work being gated.
type Action string

const (
	// ActionWrite is a file creation or full rewrite.
	ActionWrite Action = "write"
	// ActionEdit is a partial file modification.
	ActionEdit Action = "edit"
	// ActionStop is the agent's attempt to finish.
	ActionStop Action = "stop"
)

// Mutating reports whether the action changes an artifact.
func (a Action) Mutating() bool {
	return a == ActionWrite || a == ActionEdit
}

// Request is the unit passed into a gate evaluation. Path is empty for
// ActionStop.
type Request struct {
	Action Action
	Path   string
}

// Verdict is a gate's decision about a request.
type Verdict string

const (
	// VerdictAllow lets the action proceed.
	VerdictAllow Verdict = "allow"
	// VerdictBlock refuses the action with an actionable reason.
	VerdictBlock Verdict = "block"
	// VerdictWarn lets the action proceed but surfaces the reason.
	// Reserved for advisory gates; the built-in gates never warn.
	VerdictWarn Verdict = "warn"
)

// Fault distinguishes why a block happened. Control flow is identical
// either way; the fault only shapes the diagnostic text.
type Fault string

const (
	// FaultPolicy means the gate's own precondition is unmet: the agent
	// can fix it by doing the required work.
	FaultPolicy Fault = "policy"
	// FaultTooling means an external tool could not deliver a verdict:
	// unverifiable state blocks, but the operator is told the tooling is
	// broken rather than the agent being at fault.
	FaultTooling Fault = "tooling"
)

// Decision is what every gate returns.
type Decision struct {
	Verdict Verdict
	Reason  string
	Fault   Fault
}

// Allowed reports whether the action may proceed.
func (d Decision) Allowed() bool {
	return d.Verdict == VerdictAllow || d.Verdict == VerdictWarn
}

// Allow is the pass decision.
func Allow() Decision {
	return Decision{Verdict: VerdictAllow}
}

// BlockPolicy refuses the action because of an unmet precondition.
func BlockPolicy(reason string) Decision {
	return Decision{Verdict: VerdictBlock, Reason: reason, Fault: FaultPolicy}
}

// BlockTooling refuses the action because a check could not be performed.
func BlockTooling(reason string) Decision {
	return Decision{Verdict: VerdictBlock, Reason: reason, Fault: FaultTooling}
}

// Warn lets the action proceed while surfacing the reason.
func Warn(reason string) Decision {
	return Decision{Verdict: VerdictWarn, Reason: reason}
}
