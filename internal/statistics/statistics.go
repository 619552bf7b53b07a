// Package statistics aggregates simulated game results.
package statistics

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// GameResult represents the outcome of a single simulated game
type GameResult struct {
	Seed       int64         // Deck seed for this game (for replay)
	Scores     []int         // Sets claimed per seat
	Winners    []int         // Seats holding the top score
	Penalties  int           // Invalid triples submitted
	Stale      int           // Requests invalidated before verification
	Reshuffles int           // Table reshuffles
	Duration   time.Duration // Wall time of the game
}

// Sets returns the total number of sets claimed in the game
func (r GameResult) Sets() int {
	total := 0
	for _, s := range r.Scores {
		total += s
	}
	return total
}

// SeatStats tracks statistics for a specific seat
type SeatStats struct {
	Games int
	Wins  int // Outright and shared wins
	Ties  int // Wins shared with another seat
	Sets  int
}

// Statistics aggregates results over many games. Per-game values are sets
// claimed by all seats together.
type Statistics struct {
	Games    int
	SumSets  float64
	SumSets2 float64   // Sum of squares for variance calculation
	Values   []float64 // Store all values for median/percentile calculation

	Penalties  int
	Stale      int
	Reshuffles int
	Duration   time.Duration

	// Seat analytics, indexed by seat
	Seats []SeatStats
}

// Add incorporates a new game result into the statistics
func (s *Statistics) Add(result GameResult) {
	sets := float64(result.Sets())
	s.Games++
	s.SumSets += sets
	s.SumSets2 += sets * sets
	s.Values = append(s.Values, sets)

	s.Penalties += result.Penalties
	s.Stale += result.Stale
	s.Reshuffles += result.Reshuffles
	s.Duration += result.Duration

	for len(s.Seats) < len(result.Scores) {
		s.Seats = append(s.Seats, SeatStats{})
	}
	for seat, score := range result.Scores {
		s.Seats[seat].Games++
		s.Seats[seat].Sets += score
	}
	for _, w := range result.Winners {
		if w < 0 || w >= len(s.Seats) {
			continue
		}
		s.Seats[w].Wins++
		if len(result.Winners) > 1 {
			s.Seats[w].Ties++
		}
	}
}

// Mean returns the mean number of sets per game
func (s *Statistics) Mean() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.SumSets / float64(s.Games)
}

// Variance returns the sample variance of sets per game
func (s *Statistics) Variance() float64 {
	if s.Games < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumSets2 - float64(s.Games)*mean*mean) / float64(s.Games-1)
}

// StdDev returns the sample standard deviation of sets per game
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Games))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the median value of all results
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// SeatMean returns the mean number of sets claimed by a seat
func (s *Statistics) SeatMean(seat int) float64 {
	if seat < 0 || seat >= len(s.Seats) || s.Seats[seat].Games == 0 {
		return 0
	}
	return float64(s.Seats[seat].Sets) / float64(s.Seats[seat].Games)
}

// WinRate returns the share of games a seat won or tied for the win
func (s *Statistics) WinRate(seat int) float64 {
	if seat < 0 || seat >= len(s.Seats) || s.Seats[seat].Games == 0 {
		return 0
	}
	return float64(s.Seats[seat].Wins) / float64(s.Seats[seat].Games)
}

// IsLedgerBalanced checks that per-seat sets add up to the game totals
func (s *Statistics) IsLedgerBalanced() bool {
	seatSets := 0
	for _, seat := range s.Seats {
		seatSets += seat.Sets
	}
	return math.Abs(float64(seatSets)-s.SumSets) <= 1e-6
}

// Validate performs comprehensive validation of statistics data
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: total sets %.0f, seat sets do not add up", s.SumSets)
	}

	if s.Games <= 0 {
		return fmt.Errorf("invalid games count: %d", s.Games)
	}

	if len(s.Values) != s.Games {
		return fmt.Errorf("values array length (%d) does not match games count (%d)",
			len(s.Values), s.Games)
	}

	for seat, ss := range s.Seats {
		if ss.Wins > ss.Games {
			return fmt.Errorf("seat %d wins (%d) exceed games (%d)", seat, ss.Wins, ss.Games)
		}
		if ss.Ties > ss.Wins {
			return fmt.Errorf("seat %d ties (%d) exceed wins (%d)", seat, ss.Ties, ss.Wins)
		}
	}

	return nil
}
