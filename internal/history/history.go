// Package history keeps a bounded log of completed sessions in a key-value store.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/irregulars/internal/model"
)

const (
	// Key is the store key holding the serialized log.
	Key = "irregularVerbsStats"
	// DefaultLimit is the number of sessions kept.
	DefaultLimit = 50
)

// Store is the key-value collaborator the log is persisted in.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// History appends to and reads the session log.
//
// Append performs a single read-modify-write; callers must not run two
// appends against the same store concurrently.
type History struct {
	store Store
	limit int
	log   *logrus.Logger
	now   func() time.Time
	newID func() string
}

// Option configures a History.
type Option func(*History)

// WithLimit overrides DefaultLimit.
func WithLimit(n int) Option {
	return func(h *History) {
		if n > 0 {
			h.limit = n
		}
	}
}

// WithLogger sets the logger used for recovered storage problems.
func WithLogger(log *logrus.Logger) Option {
	return func(h *History) {
		h.log = log
	}
}

// WithClock replaces time.Now for stamping entries.
func WithClock(now func() time.Time) Option {
	return func(h *History) {
		h.now = now
	}
}

// WithIDFunc replaces the uuid generator.
func WithIDFunc(fn func() string) Option {
	return func(h *History) {
		h.newID = fn
	}
}

// New returns a History persisted in st.
func New(st Store, opts ...Option) *History {
	h := &History{
		store: st,
		limit: DefaultLimit,
		log:   logrus.StandardLogger(),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Limit returns the maximum number of stored sessions.
func (h *History) Limit() int {
	return h.limit
}

// Append stores a copy of result and returns it as stored.
// The returned error is only ever a failed write.
func (h *History) Append(ctx context.Context, result model.SessionResult) (model.SessionResult, error) {
	entries := h.load(ctx)

	entry := cloneResult(result)
	if entry.ID == "" || containsID(entries, entry.ID) {
		entry.ID = h.uniqueID(entries)
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = h.now()
	}
	entries = append(entries, entry)
	if len(entries) > h.limit {
		entries = entries[len(entries)-h.limit:]
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return entry, fmt.Errorf("failed to encode history: %w", err)
	}
	if err := h.store.Set(ctx, Key, string(data)); err != nil {
		return entry, fmt.Errorf("failed to save history: %w", err)
	}
	return entry, nil
}

// All returns the stored log, oldest first. It never fails: missing or
// unreadable data yields an empty log.
func (h *History) All(ctx context.Context) []model.SessionResult {
	return h.load(ctx)
}

// Clear removes the stored log.
func (h *History) Clear(ctx context.Context) error {
	if err := h.store.Remove(ctx, Key); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (h *History) load(ctx context.Context) []model.SessionResult {
	raw, ok, err := h.store.Get(ctx, Key)
	if err != nil {
		h.log.WithError(err).WithField("key", Key).Warn("failed to read history; treating as empty")
		return []model.SessionResult{}
	}
	if !ok || raw == "" {
		return []model.SessionResult{}
	}
	var entries []model.SessionResult
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		h.log.WithError(err).WithField("key", Key).Warn("history is corrupt; treating as empty")
		return []model.SessionResult{}
	}
	if entries == nil {
		entries = []model.SessionResult{}
	}
	return entries
}

func (h *History) uniqueID(entries []model.SessionResult) string {
	for {
		id := h.newID()
		if id != "" && !containsID(entries, id) {
			return id
		}
	}
}

func containsID(entries []model.SessionResult, id string) bool {
	for _, e := range entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

func cloneResult(r model.SessionResult) model.SessionResult {
	out := r
	if r.QuestionTimes != nil {
		out.QuestionTimes = append([]model.QuestionTime(nil), r.QuestionTimes...)
	}
	if r.Errors != nil {
		out.Errors = append([]model.AnswerError(nil), r.Errors...)
	}
	return out
}
