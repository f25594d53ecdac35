package session

import "math"

// Tier buckets a percentage score for feedback
type Tier string

const (
	TierTop    Tier = "top"
	TierMiddle Tier = "middle"
	TierBottom Tier = "bottom"
)

func TierFor(percentage int) Tier {
	switch {
	case percentage >= 80:
		return TierTop
	case percentage >= 60:
		return TierMiddle
	default:
		return TierBottom
	}
}

func (t Tier) Message() string {
	switch t {
	case TierTop:
		return "Excellent work!"
	case TierMiddle:
		return "Good job!"
	default:
		return "Keep practicing!"
	}
}

type Result struct {
	Score              int        `json:"score"`
	Total              int        `json:"total"`
	Percentage         int        `json:"percentage"`
	Tier               Tier       `json:"tier"`
	Message            string     `json:"message"`
	IncorrectQuestions []Question `json:"incorrectQuestions"`
}

// Score grades questions. Unanswered questions count as incorrect.
func Score(questions []Question) Result {
	res := Result{Total: len(questions), IncorrectQuestions: []Question{}}
	for i := range questions {
		if questions[i].IsCorrect() {
			res.Score++
		} else {
			res.IncorrectQuestions = append(res.IncorrectQuestions, questions[i].clone())
		}
	}
	if res.Total > 0 {
		res.Percentage = int(math.Round(100 * float64(res.Score) / float64(res.Total)))
	}
	res.Tier = TierFor(res.Percentage)
	res.Message = res.Tier.Message()
	return res
}
