package services

import (
	"fmt"
	"sync"
	"time"

	"rentledger/internal/core"
)

// ReminderPolicy decides whether a tenant whose rent covers up to the month
// before due should be reminded at now.
type ReminderPolicy interface {
	IsDue(due core.MonthLabel, now time.Time) bool
}

// OnDuePolicy reminds from the first day of the due month.
type OnDuePolicy struct{}

func (OnDuePolicy) IsDue(due core.MonthLabel, now time.Time) bool {
	return !core.MonthLabelFor(now).Before(due)
}

// GracePolicy waits Days days into the due month. Later months are always due.
type GracePolicy struct {
	Days int
}

func (g GracePolicy) IsDue(due core.MonthLabel, now time.Time) bool {
	current := core.MonthLabelFor(now)
	if current.Before(due) {
		return false
	}
	if current != due {
		return true
	}
	lastDay := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	day := g.Days + 1
	if day > lastDay {
		day = lastDay
	}
	return now.Day() >= day
}

type policyFactory func(graceDays int) ReminderPolicy

var (
	policiesMu sync.RWMutex
	policies   = map[string]policyFactory{
		"on_due": func(int) ReminderPolicy { return OnDuePolicy{} },
		"grace":  func(days int) ReminderPolicy { return GracePolicy{Days: days} },
	}
)

// GetReminderPolicy returns the policy registered under name.
func GetReminderPolicy(name string, graceDays int) (ReminderPolicy, error) {
	policiesMu.RLock()
	f, ok := policies[name]
	policiesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown reminder policy: %s", name)
	}
	return f(graceDays), nil
}

// RegisterReminderPolicy adds or replaces a named policy.
func RegisterReminderPolicy(name string, f func(graceDays int) ReminderPolicy) {
	policiesMu.Lock()
	defer policiesMu.Unlock()
	policies[name] = f
}
