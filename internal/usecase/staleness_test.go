package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-matchday/internal/domain/kvstate"
	kvmemory "github.com/riskibarqy/fantasy-matchday/internal/infrastructure/kvstore/memory"
)

func TestIdleStalenessChecker_TimeUntilUpdate(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	tests := []struct {
		name string
		seed map[string]string
		want time.Duration
	}{
		{
			name: "never refreshed",
			seed: nil,
			want: updateNow,
		},
		{
			name: "malformed timestamp",
			seed: map[string]string{
				kvstate.LastUpdateKey(testLeagueType): "yesterday",
			},
			want: updateNow,
		},
		{
			name: "transfer window uses the long limit",
			seed: map[string]string{
				kvstate.LastUpdateKey(testLeagueType):   kvstate.FormatInt(now.Add(-20 * time.Minute).Unix()),
				kvstate.TransferOpenKey(testLeagueType): "true",
			},
			want: 40 * time.Minute,
		},
		{
			name: "matchday goes stale quickly",
			seed: map[string]string{
				kvstate.LastUpdateKey(testLeagueType):   kvstate.FormatInt(now.Add(-3 * time.Minute).Unix()),
				kvstate.TransferOpenKey(testLeagueType): "false",
			},
			want: -time.Minute,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			checker := NewIdleStalenessChecker(kvmemory.NewStore(tc.seed), time.Hour, 2*time.Minute)
			checker.now = func() time.Time { return now }

			got, err := checker.TimeUntilUpdate(context.Background(), testLeagueType)
			if err != nil {
				t.Fatalf("time until update: %v", err)
			}
			if got != tc.want {
				t.Fatalf("unexpected time until update: got=%s want=%s", got, tc.want)
			}
		})
	}
}

func TestIdleStalenessChecker_NeverRefreshedIsStale(t *testing.T) {
	t.Parallel()

	checker := NewIdleStalenessChecker(kvmemory.NewStore(nil), time.Hour, 2*time.Minute)
	left, err := checker.TimeUntilUpdate(context.Background(), testLeagueType)
	if err != nil {
		t.Fatalf("time until update: %v", err)
	}
	if left >= 0 {
		t.Fatalf("a league type without a successful refresh must be stale: got=%s", left)
	}
}
