package models

// Question is one multiple-choice exam question. Questions are produced at
// build time and loaded read-only at runtime; nothing mutates them after load.
type Question struct {
	ID           int            `json:"id"`
	QuestionText string         `json:"question_text"`
	Options      []string       `json:"options"`
	// CorrectAnswer is a single letter 'a'..'d' indexing into Options.
	CorrectAnswer string         `json:"correct_answer"`
	CorrectIndex  *int           `json:"correct_index,omitempty"`
	Explanation   string         `json:"explanation,omitempty"`
	Difficulty    int            `json:"difficulty"`
	DomainID      int            `json:"domain_id"`
	SubdomainID   int            `json:"subdomain_id,omitempty"`
	QuestionType  string         `json:"question_type,omitempty"`
	Confidence    float64        `json:"confidence,omitempty"`
	Keywords      []string       `json:"keywords,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// CorrectOptionIndex returns the zero-based index of the correct option,
// or -1 when the answer letter is out of range.
func (q Question) CorrectOptionIndex() int {
	if len(q.CorrectAnswer) != 1 {
		return -1
	}
	idx := int(q.CorrectAnswer[0] - 'a')
	if idx < 0 || idx >= len(q.Options) {
		return -1
	}
	return idx
}

// AnswerLetter converts a zero-based option index to its letter form.
func AnswerLetter(index int) string {
	return string(rune('a' + index))
}
