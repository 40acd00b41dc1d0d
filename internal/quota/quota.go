// Package quota keeps per-user and per-group drawing counters with a
// sliding reset window. The model is allow-by-default: only identities
// with a configured limit are counted, everyone else draws freely.
package quota

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Scope says which limit was applied to a draw.
type Scope int

const (
	ScopeNone Scope = iota
	ScopeUser
	ScopeGroup
)

// Record is one usage entry as persisted on disk.
type Record struct {
	Timestamp int64 `json:"timestamp"`
	Count     int   `json:"count"`
}

// Policy is the static quota configuration. A limit value of 0 in
// UserLimits or GroupLimits means "use DefaultLimit".
type Policy struct {
	Enabled       bool
	DefaultLimit  int
	UserLimits    map[string]int
	GroupLimits   map[string]int
	ResetInterval time.Duration
}

// Result of a single draw attempt.
type Result struct {
	Allowed   bool
	Limited   bool // false means no limit applied to this identity
	Limit     int
	Remaining int
	Scope     Scope
}

// Limiter owns the usage record map and its JSON file. All access goes
// through the mutex because telebot dispatches handlers on separate
// goroutines.
type Limiter struct {
	mu      sync.Mutex
	policy  Policy
	records map[string]Record
	path    string
	now     func() time.Time
}

type Option func(*Limiter)

// WithNow replaces the clock, used in tests.
func WithNow(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// NewLimiter loads existing records from path. Load failures are
// logged and swallowed, the limiter carries on with an empty map.
func NewLimiter(policy Policy, path string, opts ...Option) *Limiter {
	l := &Limiter{
		policy:  policy,
		records: make(map[string]Record),
		path:    path,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.load()
	return l
}

func (l *Limiter) load() {
	if l.path == "" {
		return
	}
	b, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
				log.Errorf("[quota] could not create record directory: %v", err)
			}
			return
		}
		log.Errorf("[quota] could not load usage records: %v", err)
		return
	}
	if err := json.Unmarshal(b, &l.records); err != nil {
		log.Errorf("[quota] could not parse usage records: %v", err)
		l.records = make(map[string]Record)
	}
}

// save persists the record map. Not durable-atomic on purpose, a draw
// counter is not worth a rename dance.
func (l *Limiter) save() {
	if l.path == "" {
		return
	}
	b, err := json.MarshalIndent(l.records, "", "    ")
	if err != nil {
		log.Errorf("[quota] could not marshal usage records: %v", err)
		return
	}
	if err := os.WriteFile(l.path, b, 0o644); err != nil {
		log.Errorf("[quota] could not save usage records: %v", err)
	}
}

// RecordKey derives the identity under which a draw is counted: the
// group when the event happened in one, else the sender.
func RecordKey(userID, groupID string) string {
	if groupID != "" {
		return fmt.Sprintf("group_%s", groupID)
	}
	return fmt.Sprintf("user_%s", userID)
}

// limitFor resolves the applicable limit. A per-user limit always wins
// over a per-group limit; neither present means unlimited.
func (l *Limiter) limitFor(userID, groupID string) (int, Scope) {
	if limit, ok := l.policy.UserLimits[userID]; ok {
		if limit <= 0 {
			limit = l.policy.DefaultLimit
		}
		return limit, ScopeUser
	}
	if groupID != "" {
		if limit, ok := l.policy.GroupLimits[groupID]; ok {
			if limit <= 0 {
				limit = l.policy.DefaultLimit
			}
			return limit, ScopeGroup
		}
	}
	return 0, ScopeNone
}

// Check decides whether a draw is permitted and, if so, counts it.
// The record is reset to zero first when it is older than the policy
// window. Denial leaves the record untouched.
func (l *Limiter) Check(userID, groupID string) Result {
	if !l.policy.Enabled {
		return Result{Allowed: true}
	}

	limit, scope := l.limitFor(userID, groupID)
	if scope == ScopeNone {
		return Result{Allowed: true}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().Unix()
	key := RecordKey(userID, groupID)
	record, ok := l.records[key]
	if !ok {
		record = Record{Timestamp: now, Count: 0}
	}
	if float64(now-record.Timestamp)/60 > l.policy.ResetInterval.Minutes() {
		record = Record{Timestamp: now, Count: 0}
	}

	if record.Count >= limit {
		return Result{Allowed: false, Limited: true, Limit: limit, Scope: scope}
	}

	record.Count++
	record.Timestamp = now
	l.records[key] = record
	l.save()

	return Result{
		Allowed:   true,
		Limited:   true,
		Limit:     limit,
		Remaining: limit - record.Count,
		Scope:     scope,
	}
}

// Reset discards all usage records and persists the empty map.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = make(map[string]Record)
	l.save()
}

// Len reports the number of tracked records.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
