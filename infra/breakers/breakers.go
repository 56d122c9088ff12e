// Package breakers wraps gobreaker.CircuitBreaker with the trip thresholds
// the news stage's external collaborators (news search, disclosure list,
// LLM classifier escalation) share: one breaker instance per collaborator,
// per SPEC_FULL.md §6.2.
package breakers

import (
    "time"
    cb "github.com/sony/gobreaker"
)

// Breaker is one named circuit breaker guarding a single HTTP collaborator.
type Breaker struct{ cb *cb.CircuitBreaker }

// New builds a Breaker that trips after 3 consecutive failures, or after a
// >5% failure rate once at least 20 requests have been observed in the
// rolling 60s window.
func New(name string) *Breaker {
    st := cb.Settings{Name: name}
    st.Interval = 60 * time.Second
    st.Timeout = 60 * time.Second
    st.ReadyToTrip = func(counts cb.Counts) bool {
        if counts.ConsecutiveFailures >= 3 { return true }
        total := counts.Requests
        if total < 20 { return false }
        if float64(counts.TotalFailures)/float64(total) > 0.05 { return true }
        return false
    }
    return &Breaker{cb: cb.NewCircuitBreaker(st)}
}

// Execute runs fn through the breaker, short-circuiting with gobreaker's own
// error when the breaker is open.
func (b *Breaker) Execute(fn func() (any, error)) (any, error) { return b.cb.Execute(fn) }

