package prediction

import "math"

// Softmax converts raw model scores into a probability distribution. The
// maximum score is subtracted before exponentiating for numerical
// stability. A zero exponential sum falls back to a uniform distribution
// instead of dividing by zero.
func Softmax(scores []float64) []float64 {
	if len(scores) == 0 {
		return nil
	}

	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}

	exps := make([]float64, len(scores))
	sum := 0.0
	for i, s := range scores {
		exps[i] = math.Exp(s - maxScore)
		sum += exps[i]
	}

	if sum == 0 {
		uniform := 1.0 / float64(len(scores))
		for i := range exps {
			exps[i] = uniform
		}
		return exps
	}

	for i := range exps {
		exps[i] /= sum
	}
	return exps
}
