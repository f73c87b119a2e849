package session

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/verte-zerg/irregulars/internal/catalog"
	"github.com/verte-zerg/irregulars/internal/model"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestEngine(t *testing.T, n int) (*Engine, *fakeClock) {
	t.Helper()
	verbs := []model.Verb{
		{ES: "ir", EN: [3]string{"go", "went", "gone"}},
		{ES: "comer", EN: [3]string{"eat", "ate", "eaten"}},
		{ES: "ver", EN: [3]string{"see", "saw", "seen"}},
		{ES: "beber", EN: [3]string{"drink", "drank", "drunk"}},
	}
	clock := &fakeClock{t: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)}
	cat := catalog.New(verbs[:n], rand.New(rand.NewSource(1)))
	return New(cat, WithClock(clock.now), WithShortCount(n)), clock
}

func answerCurrent(t *testing.T, e *Engine) []string {
	t.Helper()
	verb, err := e.CurrentQuestion()
	if err != nil {
		t.Fatalf("CurrentQuestion failed: %v", err)
	}
	return verb.EN[:]
}

func TestAllCorrectCompletesWithoutAdvance(t *testing.T) {
	e, clock := newTestEngine(t, 4)
	if err := e.Start(model.ModeFull); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	for i := 0; i < 4; i++ {
		clock.advance(time.Second)
		sub, err := e.Submit(answerCurrent(t, e))
		if err != nil {
			t.Fatalf("Submit %d failed: %v", i, err)
		}
		if !sub.Correct {
			t.Fatalf("Submit %d: expected correct", i)
		}
		if sub.Finished != (i == 3) {
			t.Fatalf("Submit %d: unexpected finished=%v", i, sub.Finished)
		}
		if i < 3 && e.Phase() != PhaseAwaitingAnswer {
			t.Fatalf("Submit %d: expected awaiting answer, got %s", i, e.Phase())
		}
	}
	if e.Phase() != PhaseCompleted {
		t.Fatalf("expected completed, got %s", e.Phase())
	}
	res, ok := e.Result()
	if !ok {
		t.Fatalf("expected result")
	}
	if res.Correct != 4 || res.Total != 4 {
		t.Fatalf("expected 4/4, got %d/%d", res.Correct, res.Total)
	}
	if res.Accuracy != 100 {
		t.Fatalf("expected accuracy 100, got %v", res.Accuracy)
	}
	if res.TotalTimeMs != 4000 || res.AverageTimeMs != 1000 {
		t.Fatalf("unexpected timing: total=%d avg=%v", res.TotalTimeMs, res.AverageTimeMs)
	}
	if len(res.Errors) != 0 || len(res.QuestionTimes) != 4 {
		t.Fatalf("unexpected logs: errors=%d times=%d", len(res.Errors), len(res.QuestionTimes))
	}
	if res.Mode != model.ModeFull || !res.Timestamp.Equal(clock.now()) {
		t.Fatalf("unexpected mode/timestamp: %s %v", res.Mode, res.Timestamp)
	}
}

func TestLastCorrectAnswerIsCounted(t *testing.T) {
	e, _ := newTestEngine(t, 1)
	if err := e.Start(model.ModeShort); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	sub, err := e.Submit(answerCurrent(t, e))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !sub.Finished {
		t.Fatalf("expected single question session to finish")
	}
	res, _ := e.Result()
	if res.Correct != 1 || res.Accuracy != 100 {
		t.Fatalf("expected final correct answer to count, got %d (%v%%)", res.Correct, res.Accuracy)
	}
}

func TestWrongAnswerRequiresAdvance(t *testing.T) {
	e, _ := newTestEngine(t, 3)
	if err := e.Start(model.ModeFull); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := e.Submit(answerCurrent(t, e)); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	sub, err := e.Submit([]string{"see", "saw", "sawn"})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if sub.Correct || sub.Finished {
		t.Fatalf("expected incorrect unfinished submission, got %+v", sub)
	}
	if sub.Expected != [3]string{"eat", "ate", "eaten"} {
		t.Fatalf("unexpected expected forms: %v", sub.Expected)
	}
	if e.Phase() != PhaseAwaitingAdvance || e.Index() != 1 {
		t.Fatalf("expected awaiting advance at index 1, got %s at %d", e.Phase(), e.Index())
	}
	if _, err := e.Submit([]string{"eat", "ate", "eaten"}); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if verb, err := e.CurrentQuestion(); err != nil || verb.ES != "comer" {
		t.Fatalf("expected current question to stay on comer, got %v %v", verb, err)
	}
	finished, err := e.Advance()
	if err != nil || finished {
		t.Fatalf("Advance: finished=%v err=%v", finished, err)
	}
	if e.Index() != 2 || e.Phase() != PhaseAwaitingAnswer {
		t.Fatalf("expected index 2 awaiting answer, got %d %s", e.Index(), e.Phase())
	}
	if _, err := e.Submit(answerCurrent(t, e)); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	res, ok := e.Result()
	if !ok {
		t.Fatalf("expected completed session")
	}
	if res.Correct != 2 || res.Total != 3 {
		t.Fatalf("expected 2/3, got %d/%d", res.Correct, res.Total)
	}
	if len(res.Errors) != 1 || res.Errors[0].Verb.ES != "comer" || res.Errors[0].User != "see - saw - sawn" {
		t.Fatalf("unexpected error log: %+v", res.Errors)
	}
	if len(res.QuestionTimes) != 3 || res.QuestionTimes[1].Correct {
		t.Fatalf("unexpected timings: %+v", res.QuestionTimes)
	}
}

func TestWrongLastAnswerFinalizesOnAdvance(t *testing.T) {
	e, _ := newTestEngine(t, 2)
	if err := e.Start(model.ModeFull); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := e.Submit(answerCurrent(t, e)); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, err := e.Submit([]string{"x"}); err != nil {
		t.Fatalf("malformed submission must not error: %v", err)
	}
	if _, ok := e.Result(); ok {
		t.Fatalf("session must not finish before advance")
	}
	finished, err := e.Advance()
	if err != nil || !finished {
		t.Fatalf("Advance: finished=%v err=%v", finished, err)
	}
	res, _ := e.Result()
	if res.Correct != 1 || res.Accuracy != 50 {
		t.Fatalf("expected 1 correct at 50%%, got %d at %v", res.Correct, res.Accuracy)
	}
	if e.Index() != e.Total() {
		t.Fatalf("expected index %d, got %d", e.Total(), e.Index())
	}
}

func TestInvalidStateCalls(t *testing.T) {
	e, _ := newTestEngine(t, 1)
	if _, err := e.Submit([]string{"go", "went", "gone"}); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("submit before start: expected ErrInvalidState, got %v", err)
	}
	if _, err := e.CurrentQuestion(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("question before start: expected ErrInvalidState, got %v", err)
	}
	if err := e.Start(model.ModeFull); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := e.Advance(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("advance while awaiting answer: expected ErrInvalidState, got %v", err)
	}
	if _, err := e.Submit(answerCurrent(t, e)); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if _, err := e.Submit([]string{"go", "went", "gone"}); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("submit after completion: expected ErrInvalidState, got %v", err)
	}
	if _, err := e.CurrentQuestion(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("question after completion: expected ErrInvalidState, got %v", err)
	}
	if _, err := e.Advance(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("advance after completion: expected ErrInvalidState, got %v", err)
	}
}

func TestSubmitRecordsElapsedTime(t *testing.T) {
	e, clock := newTestEngine(t, 2)
	if err := e.Start(model.ModeFull); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	clock.advance(500 * time.Millisecond)
	if got := e.QuestionElapsed(); got != 500*time.Millisecond {
		t.Fatalf("expected elapsed 500ms, got %v", got)
	}
	if _, err := e.Submit(answerCurrent(t, e)); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	clock.advance(1200 * time.Millisecond)
	if _, err := e.Submit([]string{"", "", ""}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	clock.advance(3 * time.Second)
	if _, err := e.Advance(); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	res, _ := e.Result()
	if res.QuestionTimes[0].ElapsedMs != 500 || !res.QuestionTimes[0].Correct {
		t.Fatalf("unexpected first timing: %+v", res.QuestionTimes[0])
	}
	if res.QuestionTimes[1].ElapsedMs != 1200 || res.QuestionTimes[1].Verb != "comer" {
		t.Fatalf("unexpected second timing: %+v", res.QuestionTimes[1])
	}
	if res.TotalTimeMs != 4700 || res.AverageTimeMs != 2350 {
		t.Fatalf("unexpected totals: %d %v", res.TotalTimeMs, res.AverageTimeMs)
	}
}

func TestStartDiscardsProgress(t *testing.T) {
	e, _ := newTestEngine(t, 3)
	if err := e.Start(model.ModeFull); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := e.Submit([]string{"no", "no", "no"}); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := e.Start(model.ModeShort); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if e.Phase() != PhaseAwaitingAnswer || e.Index() != 0 || e.Correct() != 0 {
		t.Fatalf("expected fresh session, got %s index=%d correct=%d", e.Phase(), e.Index(), e.Correct())
	}
	if e.Total() != 3 || e.Mode() != model.ModeShort {
		t.Fatalf("unexpected total/mode: %d %s", e.Total(), e.Mode())
	}
	for e.Phase() != PhaseCompleted {
		if _, err := e.Submit(answerCurrent(t, e)); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}
	res, _ := e.Result()
	if len(res.Errors) != 0 || res.Correct != 3 {
		t.Fatalf("previous session leaked into result: %+v", res)
	}
}

func TestStartShortSampleTooLarge(t *testing.T) {
	verbs := []model.Verb{{ES: "ir", EN: [3]string{"go", "went", "gone"}}}
	e := New(catalog.New(verbs, rand.New(rand.NewSource(1))))
	err := e.Start(model.ModeShort)
	if !errors.Is(err, catalog.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if e.Phase() != PhaseNotStarted {
		t.Fatalf("failed start must not change phase, got %s", e.Phase())
	}
}
