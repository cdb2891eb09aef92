// Package circuitbreaker wraps sony/gobreaker with the storefront defaults:
// trip after five consecutive failures, probe again after ten seconds.
package circuitbreaker

import (
	"log"
	"time"

	"github.com/sony/gobreaker/v2"
)

func New[T any](name string) *gobreaker.CircuitBreaker[T] {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("circuit breaker %s: %s -> %s", name, from, to)
		},
	}
	return gobreaker.NewCircuitBreaker[T](settings)
}
