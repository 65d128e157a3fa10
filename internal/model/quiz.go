package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/stemsi/typequiz-backend/internal/personality"
)

// AnswerItem is one submitted Likert answer. Values outside -2..2 and
// unknown ids are not rejected here; the scorer discards and counts them.
// Value stays raw so a missing, null or non-integer value invalidates only
// its own answer.
type AnswerItem struct {
	QuestionID int             `json:"question_id"`
	Value      json.RawMessage `json:"value"`
}

// invalidLikert lies outside -2..2, so the scorer skips answers carrying it.
const invalidLikert = math.MinInt32

// LikertValue returns the answer value, or an out-of-range value when it is
// missing, null or not a JSON integer.
func (a AnswerItem) LikertValue() int {
	n, err := strconv.Atoi(string(bytes.TrimSpace(a.Value)))
	if err != nil {
		return invalidLikert
	}
	return n
}

// ToAnswers converts answer items into scorer input.
func ToAnswers(items []AnswerItem) []personality.Answer {
	out := make([]personality.Answer, len(items))
	for i, a := range items {
		out[i] = personality.Answer{QuestionID: a.QuestionID, Value: a.LikertValue()}
	}
	return out
}

// SubmitAnswersRequest is the payload for scoring a completed quiz.
type SubmitAnswersRequest struct {
	Answers []AnswerItem `json:"answers" binding:"required,min=1,max=500"`
	// Mode optionally declares which quiz was taken. When empty the expected
	// answer count is inferred from the number of answers.
	Mode string `json:"mode" binding:"omitempty,quizmode"`
}

// ToAnswers converts the request items into scorer input.
func (r *SubmitAnswersRequest) ToAnswers() []personality.Answer {
	return ToAnswers(r.Answers)
}

// QuizPaperQuery selects the quiz variant to serve.
type QuizPaperQuery struct {
	Mode string `form:"mode" binding:"omitempty,quizmode"`
}

// QuizPaper is the question set served for one rotation window.
type QuizPaper struct {
	Mode      personality.Mode         `json:"mode"`
	Rotation  personality.Granularity  `json:"rotation"`
	Window    int64                    `json:"window"`
	Total     int                      `json:"total"`
	Questions []personality.Descriptor `json:"questions"`
}
