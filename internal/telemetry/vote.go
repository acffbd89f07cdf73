// Package telemetry implements two-out-of-three sensor voting.
package telemetry

import (
	"errors"
	"fmt"
	"math"
)

// Tolerance is the largest difference at which two readings agree.
const Tolerance = 1.0

// ErrReadingCount is returned when a vote is not given exactly three readings.
var ErrReadingCount = errors.New("exactly 3 readings required for 2oo3 voting")

// FaultStatus classifies the sensors after a vote.
type FaultStatus string

const (
	AllHealthy  FaultStatus = "AllHealthy"
	OneFaulty   FaultStatus = "OneFaulty"
	NoConsensus FaultStatus = "NoConsensus"
)

// VoteResult is the outcome of a 2oo3 vote.
type VoteResult struct {
	Consensus   float64     `json:"consensus"`
	Rejected    []float64   `json:"rejected"`
	FaultStatus FaultStatus `json:"faultStatus"`
}

// VoteReadings validates the reading count and votes.
func VoteReadings(readings []float64) (VoteResult, error) {
	if len(readings) != 3 {
		return VoteResult{}, fmt.Errorf("%w: got %d", ErrReadingCount, len(readings))
	}

	return Vote([3]float64(readings)), nil
}

// Vote averages the readings that agree within Tolerance. When all three
// agree the result is their mean; when exactly one pair agrees the outlier
// is rejected; otherwise every reading is rejected and Consensus is zero.
func Vote(r [3]float64) VoteResult {
	a, b, c := r[0], r[1], r[2]

	agree := func(x, y float64) bool { return math.Abs(x-y) <= Tolerance }

	switch {
	case agree(a, b) && agree(b, c) && agree(a, c):
		return VoteResult{Consensus: (a + b + c) / 3, Rejected: []float64{}, FaultStatus: AllHealthy}
	case agree(a, b):
		return VoteResult{Consensus: (a + b) / 2, Rejected: []float64{c}, FaultStatus: OneFaulty}
	case agree(b, c):
		return VoteResult{Consensus: (b + c) / 2, Rejected: []float64{a}, FaultStatus: OneFaulty}
	case agree(a, c):
		return VoteResult{Consensus: (a + c) / 2, Rejected: []float64{b}, FaultStatus: OneFaulty}
	default:
		return VoteResult{Consensus: 0, Rejected: []float64{a, b, c}, FaultStatus: NoConsensus}
	}
}
