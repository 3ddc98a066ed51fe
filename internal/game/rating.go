package game

import (
	"math"

	"github.com/google/uuid"
)

const ratingK = 32

// RatingDeltas computes the pairwise skill-rating change for every player
// from final net scores. For each unordered pair the expected outcome is the
// logistic 1/(1+10^((rb-ra)/400)) and the actual outcome 1, 0.5 or 0 by
// score comparison; each side accumulates floor(K*(actual-expected)/(n-1)).
// The per-pair floor means the deltas need not sum to zero; that rounding
// bias is accepted behavior.
func RatingDeltas(ratings, scores map[uuid.UUID]int) map[uuid.UUID]int {
	players := make([]uuid.UUID, 0, len(ratings))
	for id := range ratings {
		players = append(players, id)
	}

	deltas := make(map[uuid.UUID]int, len(players))
	n := len(players)
	if n < 2 {
		for _, id := range players {
			deltas[id] = 0
		}
		return deltas
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := players[i], players[j]
			expectedA := 1 / (1 + math.Pow(10, float64(ratings[b]-ratings[a])/400))
			expectedB := 1 - expectedA

			var actualA, actualB float64
			switch {
			case scores[a] > scores[b]:
				actualA, actualB = 1, 0
			case scores[a] < scores[b]:
				actualA, actualB = 0, 1
			default:
				actualA, actualB = 0.5, 0.5
			}

			deltas[a] += int(math.Floor(ratingK * (actualA - expectedA) / float64(n-1)))
			deltas[b] += int(math.Floor(ratingK * (actualB - expectedB) / float64(n-1)))
		}
	}
	return deltas
}
