package execution

import (
	"testing"

	"irverify/internal/domain"
)

func TestRoundRobinScheduler_Schedule(t *testing.T) {
	scheduler := NewRoundRobinScheduler()

	cases := make([]domain.TestCase, 7)
	for i := range cases {
		cases[i] = domain.TestCase{Name: string(rune('a' + i))}
	}

	tests := []struct {
		name        string
		workerCount int
		sizes       []int
	}{
		{name: "even split", workerCount: 7, sizes: []int{1, 1, 1, 1, 1, 1, 1}},
		{name: "uneven split", workerCount: 3, sizes: []int{3, 2, 2}},
		{name: "zero workers means one", workerCount: 0, sizes: []int{7}},
		{name: "more workers than cases", workerCount: 9, sizes: []int{1, 1, 1, 1, 1, 1, 1, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			distribution := scheduler.Schedule(cases, tt.workerCount)
			if len(distribution) != len(tt.sizes) {
				t.Fatalf("expected %d buckets, got %d", len(tt.sizes), len(distribution))
			}
			for i, bucket := range distribution {
				if len(bucket) != tt.sizes[i] {
					t.Errorf("bucket %d: expected %d cases, got %d", i, tt.sizes[i], len(bucket))
				}
			}
		})
	}

	t.Run("keeps order within a bucket", func(t *testing.T) {
		distribution := scheduler.Schedule(cases, 3)
		if distribution[0][0].Name != "a" || distribution[0][1].Name != "d" || distribution[0][2].Name != "g" {
			t.Errorf("unexpected first bucket: %v", distribution[0])
		}
	})

	t.Run("cases sharing a method stay on one worker", func(t *testing.T) {
		shared := []domain.TestCase{
			{Name: "a", Method: "div"},
			{Name: "b", Method: "mod"},
			{Name: "c", Method: "div"},
			{Name: "d", Method: "divmod"},
		}
		distribution := scheduler.Schedule(shared, 2)
		if len(distribution[0]) != 3 || distribution[0][1].Name != "c" || distribution[0][2].Name != "d" {
			t.Errorf("unexpected first bucket: %v", distribution[0])
		}
		if len(distribution[1]) != 1 || distribution[1][0].Name != "b" {
			t.Errorf("unexpected second bucket: %v", distribution[1])
		}
	})
}
