package alerting

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ErrEmptyRuleName is returned by Add when the rule name is empty or
// whitespace-only. It is a rejected operation, not a fatal condition.
var ErrEmptyRuleName = errors.New("alert rule name must not be empty")

// RuleSet is the in-memory collection of alert rules for one channel
// session. All methods are safe for concurrent use; Snapshot returns a
// copy so callers never observe in-place mutation.
type RuleSet struct {
	mu    sync.RWMutex
	rules []AlertRule
	now   func() time.Time
}

// NewRuleSet creates a rule set seeded with the given rules. An empty or
// nil seed falls back to the built-in defaults, so there is always at
// least one rule row to evaluate against.
func NewRuleSet(rules []AlertRule) *RuleSet {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	s := &RuleSet{now: time.Now}
	s.rules = append(s.rules, rules...)
	return s
}

// Snapshot returns a copy of the current rules.
func (s *RuleSet) Snapshot() []AlertRule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AlertRule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Len returns the number of rules, enabled or not.
func (s *RuleSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}

// Toggle flips the enabled flag of the matching rule and reports whether a
// rule was found. An unknown ID is a silent no-op: the rule may have been
// deleted concurrently by another session.
func (s *RuleSet) Toggle(ruleID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rules {
		if s.rules[i].ID == ruleID {
			s.rules[i].Enabled = !s.rules[i].Enabled
			return true
		}
	}
	return false
}

// Add appends a rule with a freshly generated time-derived ID, ignoring
// any ID the caller supplied. Rules with blank names are rejected with
// ErrEmptyRuleName. The stored rule is returned so callers learn the
// assigned ID.
func (s *RuleSet) Add(rule AlertRule) (AlertRule, error) {
	if strings.TrimSpace(rule.Name) == "" {
		return AlertRule{}, ErrEmptyRuleName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now().UnixNano()
	id := fmt.Sprintf("rule-%d", ts)
	for s.containsLocked(id) {
		ts++
		id = fmt.Sprintf("rule-%d", ts)
	}
	rule.ID = id
	s.rules = append(s.rules, rule)
	return rule, nil
}

// Remove deletes the matching rule and reports whether one was found.
// Unknown IDs are a no-op, mirroring Toggle.
func (s *RuleSet) Remove(ruleID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rules {
		if s.rules[i].ID == ruleID {
			s.rules = append(s.rules[:i], s.rules[i+1:]...)
			return true
		}
	}
	return false
}

// Replace swaps the entire rule list, used when a fresher server-side rule
// set arrives during bootstrap. An empty replacement is ignored so the
// defaults survive a backend that returns none.
func (s *RuleSet) Replace(rules []AlertRule) {
	if len(rules) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = make([]AlertRule, len(rules))
	copy(s.rules, rules)
}

func (s *RuleSet) containsLocked(id string) bool {
	for i := range s.rules {
		if s.rules[i].ID == id {
			return true
		}
	}
	return false
}
