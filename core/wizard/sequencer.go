package wizard

import "github.com/pkg/errors"

var (
	// ErrNoSteps is the configuration error raised when a Sequencer is built
	// without steps; callers surface it as a rendered error state.
	ErrNoSteps = errors.New("wizard: no steps configured")

	// ErrDuplicateStep is raised when two steps share an ID.
	ErrDuplicateStep = errors.New("wizard: duplicate step id")
)

// StepDescriptor describes one named wizard step.
// A nil Valid predicate means the step is always valid.
type StepDescriptor struct {
	ID    string
	Title string
	Valid func(*State) bool
}

// Sequencer tracks an ordered list of steps, the current position and
// per-step completion, and gates forward navigation on validity predicates.
// Permitted direct jumps: monotonic-forward-by-one, any-backward, step 0.
// All other jumps are silent no-ops.
type Sequencer struct {
	steps        []StepDescriptor
	state        *State
	disableNext  bool
	completed    bool // completion callback latch
	onComplete   func()
	onTransition func(from, to int)
}

func NewSequencer(steps []StepDescriptor, state *State, onComplete func()) (*Sequencer, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	seen := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		if step.ID == "" {
			return nil, ErrNoSteps
		}
		if _, dup := seen[step.ID]; dup {
			return nil, errors.Wrap(ErrDuplicateStep, step.ID)
		}
		seen[step.ID] = struct{}{}
	}
	if state == nil {
		state = NewState()
	}
	if state.CurrentStep < 0 || state.CurrentStep >= len(steps) {
		state.CurrentStep = 0
	}
	return &Sequencer{
		steps:      steps,
		state:      state,
		onComplete: onComplete,
	}, nil
}

func (sq *Sequencer) Len() int     { return len(sq.steps) }
func (sq *Sequencer) Current() int { return sq.state.CurrentStep }

func (sq *Sequencer) CurrentStep() StepDescriptor {
	return sq.steps[sq.state.CurrentStep]
}

func (sq *Sequencer) Steps() []StepDescriptor { return sq.steps }

// SetNextDisabled blocks Advance while set, regardless of step validity.
func (sq *Sequencer) SetNextDisabled(disabled bool) {
	sq.disableNext = disabled
}

// OnTransition registers the presentation hook fired after every transition
// (eg. scrolling the new step into view). A nil hook is tolerated.
func (sq *Sequencer) OnTransition(fn func(from, to int)) {
	sq.onTransition = fn
}

func (sq *Sequencer) currentValid() bool {
	valid := sq.steps[sq.state.CurrentStep].Valid
	return valid == nil || valid(sq.state)
}

func (sq *Sequencer) transition(to int) {
	from := sq.state.CurrentStep
	sq.state.CurrentStep = to
	if to < from {
		sq.completed = false // re-entering earlier steps re-arms completion
	}
	if sq.onTransition != nil {
		sq.onTransition(from, to)
	}
}

// GoTo jumps directly to index. No-op unless the jump is backward,
// to step 0, or to the immediate next step.
func (sq *Sequencer) GoTo(index int) {
	if index < 0 || index >= len(sq.steps) {
		return
	}
	cur := sq.state.CurrentStep
	if index == cur {
		return
	}
	if index > cur && !(index == cur+1 || index == 0) {
		return
	}
	sq.transition(index)
}

// Advance moves to the next step if the current step is valid, marking the
// current step completed. At the last step it invokes the completion callback
// (once) instead of advancing.
func (sq *Sequencer) Advance() {
	if sq.disableNext || !sq.currentValid() {
		return
	}

	cur := sq.state.CurrentStep
	sq.state.MarkStepCompleted(sq.steps[cur].ID)

	if cur == len(sq.steps)-1 {
		if !sq.completed {
			sq.completed = true
			if sq.onComplete != nil {
				sq.onComplete()
			}
		}
		return
	}
	sq.transition(cur + 1)
}

// Retreat moves to the previous step; no-op at step 0.
func (sq *Sequencer) Retreat() {
	if sq.state.CurrentStep == 0 {
		return
	}
	sq.transition(sq.state.CurrentStep - 1)
}
