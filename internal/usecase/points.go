package usecase

import (
	"math"

	"github.com/riskibarqy/fantasy-matchday/internal/domain/league"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/prediction"
	"github.com/riskibarqy/fantasy-matchday/internal/domain/squad"
)

// DefaultStarredMultiplier applies when a league has no stored settings.
const DefaultStarredMultiplier = 1.5

// ScoredSlot is a squad slot with the latest match score of its player.
type ScoredSlot struct {
	Role      squad.Role
	Starred   bool
	LastMatch int
}

type PredictionTier int

const (
	TierNone PredictionTier = iota
	TierWinner
	TierDifference
	TierExact
)

func (t PredictionTier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierDifference:
		return "difference"
	case TierWinner:
		return "winner"
	default:
		return "none"
	}
}

func StarredMultiplier(settings league.Settings, ok bool) float64 {
	if !ok {
		return DefaultStarredMultiplier
	}
	return float64(settings.StarredPercentage) / 100
}

func PredictionWeights(settings league.Settings) prediction.Weights {
	return prediction.Weights{
		Exact:      settings.PredictExact,
		Difference: settings.PredictDifference,
		Winner:     settings.PredictWinner,
	}
}

// FantasyPoints sums the latest scores of starters. Starred starters are summed separately,
// multiplied and rounded up.
func FantasyPoints(slots []ScoredSlot, starredMultiplier float64) int {
	unstarred, starred := 0, 0
	for _, slot := range slots {
		if slot.Role.IsBench() {
			continue
		}
		if slot.Starred {
			starred += slot.LastMatch
			continue
		}
		unstarred += slot.LastMatch
	}
	return unstarred + int(math.Ceil(float64(starred)*starredMultiplier))
}

// ClassifyPrediction returns the single most specific tier the guess reaches.
// A drawn guess against a different draw only earns the winner tier.
func ClassifyPrediction(predHome, predAway, actualHome, actualAway int) PredictionTier {
	switch {
	case predHome == actualHome && predAway == actualAway:
		return TierExact
	case predHome != predAway && predHome-predAway == actualHome-actualAway:
		return TierDifference
	case (predHome > predAway) == (actualHome > actualAway) && (predHome == predAway) == (actualHome == actualAway):
		return TierWinner
	default:
		return TierNone
	}
}

func (w tierWeights) points(tier PredictionTier) int {
	switch tier {
	case TierExact:
		return w.Exact
	case TierDifference:
		return w.Difference
	case TierWinner:
		return w.Winner
	default:
		return 0
	}
}

type tierWeights prediction.Weights

// ScorePredictions matches every complete prediction against every complete result of the same club.
// Pairs with a missing goal on either side are skipped. Duplicate results for a club each score.
func ScorePredictions(predictions []prediction.Prediction, results []prediction.ClubResult, weights prediction.Weights) int {
	w := tierWeights(weights)
	total := 0
	for _, p := range predictions {
		if !p.Complete() {
			continue
		}
		for _, r := range results {
			if !r.Complete() || p.Club != r.Club {
				continue
			}
			total += w.points(ClassifyPrediction(*p.Home, *p.Away, *r.Home, *r.Away))
		}
	}
	return total
}

// CoerceUnset returns copies with missing goals set to 0, so incomplete historical guesses still count.
func CoerceUnset(predictions []prediction.Prediction) []prediction.Prediction {
	out := make([]prediction.Prediction, len(predictions))
	for i, p := range predictions {
		if p.Home == nil {
			p.Home = prediction.IntPtr(0)
		}
		if p.Away == nil {
			p.Away = prediction.IntPtr(0)
		}
		out[i] = p
	}
	return out
}

func CoerceUnsetResults(results []prediction.ClubResult) []prediction.ClubResult {
	out := make([]prediction.ClubResult, len(results))
	for i, r := range results {
		if r.Home == nil {
			r.Home = prediction.IntPtr(0)
		}
		if r.Away == nil {
			r.Away = prediction.IntPtr(0)
		}
		out[i] = r
	}
	return out
}

func countIncomplete(predictions []prediction.Prediction) int {
	n := 0
	for _, p := range predictions {
		if !p.Complete() {
			n++
		}
	}
	return n
}
