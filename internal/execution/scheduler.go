package execution

import "irverify/internal/domain"

// Scheduler distributes test cases across workers
type Scheduler interface {
	Schedule(cases []domain.TestCase, workerCount int) [][]domain.TestCase
}

// RoundRobinScheduler distributes test cases evenly across workers
type RoundRobinScheduler struct{}

// NewRoundRobinScheduler creates a new RoundRobinScheduler
func NewRoundRobinScheduler() *RoundRobinScheduler {
	return &RoundRobinScheduler{}
}

// Schedule distributes test cases evenly across workers using round-robin.
// Cases that share a method land in the same bucket, in their original order, so one
// worker drives each method's compilations.
func (s *RoundRobinScheduler) Schedule(cases []domain.TestCase, workerCount int) [][]domain.TestCase {
	if workerCount <= 0 {
		workerCount = 1
	}

	distribution := make([][]domain.TestCase, workerCount)
	for i := range distribution {
		distribution[i] = make([]domain.TestCase, 0)
	}

	assigned := make(map[string]int)
	next := 0
	for _, tc := range cases {
		workerIndex, ok := assigned[tc.Method]
		if !ok || tc.Method == "" {
			workerIndex = next % workerCount
			next++
			if tc.Method != "" {
				assigned[tc.Method] = workerIndex
			}
		}
		distribution[workerIndex] = append(distribution[workerIndex], tc)
	}

	return distribution
}
