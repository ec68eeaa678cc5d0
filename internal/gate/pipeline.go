package gate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gatewright/gatewright/internal/artifact"
	"github.com/gatewright/gatewright/internal/session"
	"github.com/gatewright/gatewright/internal/validator"
	"github.com/rs/zerolog/log"
)

// State is the pipeline's position in its action cycle.
type State string

const (
	StateIdle            State = "idle"
	StatePreCheck        State = "pre_check"
	StateExecuting       State = "executing"
	StatePostCheck       State = "post_check"
	StateBlocked         State = "blocked"
	StateStopRequested   State = "stop_requested"
	StateCompletionCheck State = "completion_check"
	StateTerminated      State = "terminated"
)

// ErrTerminated is returned when a pipeline is used after a successful
// stop.
var ErrTerminated = errors.New("pipeline terminated")

// Auditor records every decision a pipeline takes. Optional.
type Auditor interface {
	RecordDecision(ctx context.Context, sessionID string, rec session.DecisionRecord) error
}

// Options configure a pipeline.
type Options struct {
	Classifier  *artifact.Classifier
	Session     *session.Session
	ProjectRoot string
	// PostAction validators run after every allowed mutation, in declared
	// order.
	PostAction []validator.Runner
	// Completion validators run when the agent attempts to stop, in
	// declared order.
	Completion []validator.Runner
	// Auditor, when set, receives every decision.
	Auditor Auditor
	// DisableTestFirst turns the pre-action precondition off. Post-action
	// and completion gates still run.
	DisableTestFirst bool
}

// Pipeline drives the gate state machine for one session. Evaluations are
// serialized: the embedding runtime issues one action at a time, and the
// pipeline holds that line even if a future caller does not.
type Pipeline struct {
	mu         sync.Mutex
	state      State
	classifier *artifact.Classifier
	sess       *session.Session
	root       string
	postAction []validator.Runner
	completion []validator.Runner
	auditor    Auditor
	noPrecheck bool
}

// NewPipeline validates the wiring and returns an idle pipeline.
func NewPipeline(opts Options) (*Pipeline, error) {
	if opts.Classifier == nil {
		return nil, fmt.Errorf("pipeline: classifier is required")
	}
	if opts.Session == nil {
		return nil, fmt.Errorf("pipeline: session is required")
	}
	return &Pipeline{
		state:      StateIdle,
		classifier: opts.Classifier,
		sess:       opts.Session,
		root:       opts.ProjectRoot,
		postAction: opts.PostAction,
		completion: opts.Completion,
		auditor:    opts.Auditor,
		noPrecheck: opts.DisableTestFirst,
	}, nil
}

// State returns the current pipeline state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// EvaluatePreAction decides whether a mutation may happen. It must run
// strictly before the underlying write; a block means the write never
// happens and no session state changes.
func (p *Pipeline) EvaluatePreAction(ctx context.Context, req Request) (Decision, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateTerminated {
		return Decision{}, ErrTerminated
	}
	if !req.Action.Mutating() {
		return Decision{}, fmt.Errorf("pre-action gate: action %q is not a mutation", req.Action)
	}
	p.state = StatePreCheck

	decision, err := p.testFirst(ctx, req.Path)
	if err != nil {
		return Decision{}, err
	}
	p.settle(ctx, "pre", req, decision, StateExecuting)
	return decision, nil
}

// testFirst enforces the test-before-implementation precondition.
func (p *Pipeline) testFirst(ctx context.Context, path string) (Decision, error) {
	if p.noPrecheck {
		return Allow(), nil
	}
	cls := p.classifier.Classify(path)
	switch cls.Kind {
	case artifact.KindTest, artifact.KindUnclassified:
		return Allow(), nil
	case artifact.KindImplementation:
		if len(cls.Counterparts) == 0 {
			// No convention produces a counterpart for this path, so there
			// is nothing the precondition could demand.
			return Allow(), nil
		}
		for _, counterpart := range cls.Counterparts {
			touched, err := p.sess.HasTouched(ctx, counterpart)
			if err != nil {
				return Decision{}, fmt.Errorf("query touched set: %w", err)
			}
			if touched {
				return Allow(), nil
			}
		}
		return BlockPolicy(fmt.Sprintf("write test first: %s", cls.Counterparts[0])), nil
	default:
		return Decision{}, fmt.Errorf("unexpected classification %q for %s", cls.Kind, path)
	}
}

// EvaluatePostAction runs the configured post-action validators against a
// mutation that already happened. The mutated path joins the touched set
// regardless of the validator outcome; a block demands remediation before
// further work.
func (p *Pipeline) EvaluatePostAction(ctx context.Context, req Request) (Decision, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateTerminated {
		return Decision{}, ErrTerminated
	}
	if !req.Action.Mutating() {
		return Decision{}, fmt.Errorf("post-action gate: action %q is not a mutation", req.Action)
	}
	p.state = StatePostCheck

	// The write succeeded, so the artifact counts as touched even when a
	// validator blocks: remediation edits re-enter through the same gates.
	if err := p.sess.RecordTouched(ctx, req.Path); err != nil {
		return Decision{}, fmt.Errorf("record touched artifact: %w", err)
	}

	runners := applicable(p.postAction, req.Path)
	outcomes := validator.RunBatch(ctx, runners, p.root, req.Path)
	decision := decide(outcomes)
	p.settle(ctx, "post", req, decision, StateIdle)
	return decision, nil
}

// EvaluateCompletion decides whether the agent's stop request succeeds.
// Completion checks re-run in full on every attempt; earlier results are
// never reused.
func (p *Pipeline) EvaluateCompletion(ctx context.Context) (Decision, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateTerminated {
		return Decision{}, ErrTerminated
	}
	p.state = StateCompletionCheck

	outcomes := validator.RunBatch(ctx, p.completion, p.root, "")
	decision := decide(outcomes)
	p.settle(ctx, "completion", Request{Action: ActionStop}, decision, StateTerminated)
	return decision, nil
}

// settle records the decision and moves to the follow-up state, or to
// Blocked when the decision refuses the action.
func (p *Pipeline) settle(ctx context.Context, phase string, req Request, decision Decision, next State) {
	if decision.Allowed() {
		p.state = next
	} else {
		p.state = StateBlocked
	}
	log.Debug().
		Str("phase", phase).
		Str("action", string(req.Action)).
		Str("path", req.Path).
		Str("verdict", string(decision.Verdict)).
		Str("fault", string(decision.Fault)).
		Msg("gate decision")
	if p.auditor == nil {
		return
	}
	rec := session.DecisionRecord{
		Phase:   phase,
		Action:  string(req.Action),
		Path:    req.Path,
		Verdict: string(decision.Verdict),
		Fault:   string(decision.Fault),
		Reason:  decision.Reason,
	}
	if err := p.auditor.RecordDecision(ctx, p.sess.ID(), rec); err != nil {
		log.Warn().Err(err).Msg("failed to audit gate decision")
	}
}

// applicable filters the batch down to validators that have an opinion
// about the mutated artifact. Declared order is preserved.
func applicable(runners []validator.Runner, path string) []validator.Runner {
	out := make([]validator.Runner, 0, len(runners))
	for _, r := range runners {
		if r.AppliesTo(path) {
			out = append(out, r)
		}
	}
	return out
}

// decide merges a batch of outcomes into one decision: first declared
// failure wins, execution errors block as tooling faults.
func decide(outcomes []validator.Outcome) Decision {
	failure := validator.FirstFailure(outcomes)
	if failure == nil {
		return Allow()
	}
	if failure.Err != nil {
		return BlockTooling(fmt.Sprintf("%s could not deliver a verdict: %v", failure.ID, failure.Err))
	}
	return BlockPolicy(formatDiagnostics(failure.ID, failure.Result))
}

func formatDiagnostics(id string, result validator.Result) string {
	if len(result.Diagnostics) == 0 {
		return fmt.Sprintf("%s failed", id)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s failed:", id)
	for _, d := range result.Diagnostics {
		b.WriteString("\n")
		if d.Location != "" {
			b.WriteString(d.Location)
			b.WriteString(": ")
		}
		b.WriteString(d.Message)
	}
	return b.String()
}
