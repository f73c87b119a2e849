// Package session drives a single quiz play-through.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/verte-zerg/irregulars/internal/answer"
	"github.com/verte-zerg/irregulars/internal/model"
)

// DefaultShortCount is the number of verbs asked in short mode.
const DefaultShortCount = 15

// ErrInvalidState reports an engine call the current phase forbids.
var ErrInvalidState = errors.New("invalid session state")

// Phase is the engine's position in the session lifecycle.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseAwaitingAnswer
	PhaseAwaitingAdvance
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not started"
	case PhaseAwaitingAnswer:
		return "awaiting answer"
	case PhaseAwaitingAdvance:
		return "awaiting advance"
	case PhaseCompleted:
		return "completed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Source supplies question sets.
type Source interface {
	All() []model.Verb
	Sample(n int) ([]model.Verb, error)
}

// Submission is the outcome of grading one answer.
type Submission struct {
	Correct  bool
	Finished bool
	Expected [3]string
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithShortCount sets how many verbs short mode asks.
func WithShortCount(n int) Option {
	return func(e *Engine) {
		e.shortCount = n
	}
}

// Engine is the quiz state machine. It is not safe for concurrent use.
type Engine struct {
	source     Source
	now        func() time.Time
	shortCount int

	mode      model.Mode
	questions []model.Verb
	phase     Phase
	index     int
	correct   int
	timings   []model.QuestionTime
	errors    []model.AnswerError

	startedAt         time.Time
	questionStartedAt time.Time

	result model.SessionResult
}

// New constructs an Engine reading questions from source.
func New(source Source, opts ...Option) *Engine {
	e := &Engine{
		source:     source,
		now:        time.Now,
		shortCount: DefaultShortCount,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start discards any session in progress and begins a new one.
func (e *Engine) Start(mode model.Mode) error {
	var questions []model.Verb
	switch mode {
	case model.ModeShort:
		sample, err := e.source.Sample(e.shortCount)
		if err != nil {
			return fmt.Errorf("failed to select questions: %w", err)
		}
		questions = sample
	case model.ModeFull:
		questions = e.source.All()
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
	if len(questions) == 0 {
		return fmt.Errorf("question set is empty")
	}

	now := e.now()
	e.mode = mode
	e.questions = questions
	e.phase = PhaseAwaitingAnswer
	e.index = 0
	e.correct = 0
	e.timings = nil
	e.errors = nil
	e.startedAt = now
	e.questionStartedAt = now
	e.result = model.SessionResult{}
	return nil
}

// Submit grades fields against the current question.
func (e *Engine) Submit(fields []string) (Submission, error) {
	if e.phase != PhaseAwaitingAnswer {
		return Submission{}, fmt.Errorf("submit while %s: %w", e.phase, ErrInvalidState)
	}
	verb := e.questions[e.index]
	elapsed := e.now().Sub(e.questionStartedAt)
	correct := answer.Validate(fields, verb.EN)

	e.timings = append(e.timings, model.QuestionTime{
		Verb:      verb.ES,
		ElapsedMs: elapsed.Milliseconds(),
		Correct:   correct,
	})
	out := Submission{Correct: correct, Expected: verb.EN}

	if !correct {
		submitted := make([]string, len(fields))
		copy(submitted, fields)
		e.errors = append(e.errors, model.AnswerError{Verb: verb, User: answer.Join(submitted)})
		e.phase = PhaseAwaitingAdvance
		return out, nil
	}

	// Count before moving on so finalize sees this answer.
	e.correct++
	out.Finished = e.next()
	return out, nil
}

// Advance moves past a wrong answer. It reports whether the session finished.
func (e *Engine) Advance() (bool, error) {
	if e.phase != PhaseAwaitingAdvance {
		return false, fmt.Errorf("advance while %s: %w", e.phase, ErrInvalidState)
	}
	e.phase = PhaseAwaitingAnswer
	return e.next(), nil
}

// CurrentQuestion returns the verb awaiting an answer or acknowledgement.
func (e *Engine) CurrentQuestion() (model.Verb, error) {
	if e.phase == PhaseNotStarted || e.phase == PhaseCompleted {
		return model.Verb{}, fmt.Errorf("no current question while %s: %w", e.phase, ErrInvalidState)
	}
	return e.questions[e.index], nil
}

// Result returns the final result once the session is completed.
func (e *Engine) Result() (model.SessionResult, bool) {
	if e.phase != PhaseCompleted {
		return model.SessionResult{}, false
	}
	return e.result, true
}

// Phase returns the current lifecycle phase.
func (e *Engine) Phase() Phase {
	return e.phase
}

// Index returns the zero-based position of the current question.
func (e *Engine) Index() int {
	return e.index
}

// Total returns the size of the question set.
func (e *Engine) Total() int {
	return len(e.questions)
}

// Mode returns the mode of the current or last session.
func (e *Engine) Mode() model.Mode {
	return e.mode
}

// Correct returns the number of correct answers so far.
func (e *Engine) Correct() int {
	return e.correct
}

// QuestionElapsed is the time spent on the current question.
func (e *Engine) QuestionElapsed() time.Duration {
	if e.phase != PhaseAwaitingAnswer && e.phase != PhaseAwaitingAdvance {
		return 0
	}
	return e.now().Sub(e.questionStartedAt)
}

func (e *Engine) next() bool {
	if e.index+1 < len(e.questions) {
		e.index++
		e.questionStartedAt = e.now()
		return false
	}
	e.finalize()
	return true
}

func (e *Engine) finalize() {
	now := e.now()
	total := len(e.questions)
	totalMs := now.Sub(e.startedAt).Milliseconds()

	timings := make([]model.QuestionTime, len(e.timings))
	copy(timings, e.timings)
	errs := make([]model.AnswerError, len(e.errors))
	copy(errs, e.errors)

	e.result = model.SessionResult{
		Total:         total,
		Correct:       e.correct,
		Accuracy:      float64(e.correct) / float64(total) * 100,
		TotalTimeMs:   totalMs,
		AverageTimeMs: float64(totalMs) / float64(total),
		QuestionTimes: timings,
		Errors:        errs,
		Mode:          e.mode,
		Timestamp:     now,
	}
	e.index = total
	e.phase = PhaseCompleted
}
