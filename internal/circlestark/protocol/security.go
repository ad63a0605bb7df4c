// Package protocol wires the field, circle, merkle, transcript and air
// packages into the end-to-end circle-STARK prover and verifier: trace
// commitment, the LogUp accumulator, the composition/DEEP quotient, and
// the FRI low-degree test, all synchronized through one Fiat-Shamir
// transcript.
package protocol

import "github.com/cockroachdb/errors"

// SecurityConfig controls the blowup factor, query count, and FRI
// termination size. Built with With* options rather than a struct
// literal so new knobs don't break existing callers.
type SecurityConfig struct {
	logBlowup   uint // beta = 2^logBlowup
	numQueries  int
	friStopSize int // FRI terminates once a layer has <= this many evaluations
}

// DefaultSecurityConfig targets roughly 80 bits of query soundness at a
// blowup factor of 16 (logBlowup=4): 80/log2(16) = 20 queries.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		logBlowup:   4,
		numQueries:  20,
		friStopSize: 4,
	}
}

func (s SecurityConfig) WithLogBlowup(logBlowup uint) SecurityConfig {
	s.logBlowup = logBlowup
	return s
}

func (s SecurityConfig) WithNumQueries(n int) SecurityConfig {
	s.numQueries = n
	return s
}

func (s SecurityConfig) WithFRIStopSize(n int) SecurityConfig {
	s.friStopSize = n
	return s
}

// Blowup returns 2^logBlowup, the LDE coset's size relative to the trace.
func (s SecurityConfig) Blowup() uint { return 1 << s.logBlowup }

func (s SecurityConfig) LogBlowup() uint { return s.logBlowup }
func (s SecurityConfig) NumQueries() int { return s.numQueries }
func (s SecurityConfig) FRIStopSize() int { return s.friStopSize }

// SecurityBits estimates the query-soundness bits this configuration
// provides: numQueries * log2(blowup).
func (s SecurityConfig) SecurityBits() float64 {
	return float64(s.numQueries) * float64(s.logBlowup)
}

// Validate rejects configurations that cannot possibly meet the
// project's stated minimum of 80 bits of query soundness.
func (s SecurityConfig) Validate() error {
	if s.logBlowup == 0 {
		return errors.New("protocol: logBlowup must be positive")
	}
	if s.numQueries <= 0 {
		return errors.New("protocol: numQueries must be positive")
	}
	if s.friStopSize <= 0 || s.friStopSize&(s.friStopSize-1) != 0 {
		return errors.New("protocol: friStopSize must be a positive power of two")
	}
	if s.SecurityBits() < 80 {
		return errors.Newf("protocol: configuration gives only %.1f bits of query soundness, want >= 80", s.SecurityBits())
	}
	return nil
}
