package models

// QuizAttempt is one completed quiz session attributed to a single domain.
// A nil DomainID means the attempt spanned all domains; mixed sessions are
// split into per-domain attempts before they reach the progress store.
type QuizAttempt struct {
	ID                 string `json:"id,omitempty"`
	DomainID           *int   `json:"domain_id"`
	DomainName         string `json:"domain_name,omitempty"`
	QuestionsAttempted int    `json:"questions_attempted"`
	CorrectAnswers     int    `json:"correct_answers"`
	Score              int    `json:"score"`
	TimeSpent          int    `json:"time_spent"`
	Difficulty         []int  `json:"difficulty"`
	Date               string `json:"date"`
}

// DomainStats holds the running aggregates for one CISSP domain.
type DomainStats struct {
	DomainID           int    `json:"domain_id"`
	DomainName         string `json:"domain_name"`
	TotalAttempts      int    `json:"total_attempts"`
	QuestionsAttempted int    `json:"questions_attempted"`
	CorrectAnswers     int    `json:"correct_answers"`
	AverageScore       int    `json:"average_score"`
	BestScore          int    `json:"best_score"`
	AvgTimePerQuestion int    `json:"avg_time_per_question"`
	LastAttemptDate    string `json:"last_attempt_date,omitempty"`
}

// StudyProgress is the aggregate root persisted by the progress store.
type StudyProgress struct {
	TotalQuestions int                 `json:"totalQuestions"`
	CorrectAnswers int                 `json:"correctAnswers"`
	Attempts       []QuizAttempt       `json:"attempts"`
	LastActivity   string              `json:"lastActivity"`
	DomainStats    map[int]DomainStats `json:"domainStats"`
}

// OverallStats summarizes the whole attempt history.
type OverallStats struct {
	TotalAttempts  int `json:"totalAttempts"`
	AverageScore   int `json:"averageScore"`
	TotalStudyTime int `json:"totalStudyTime"`
	BestScore      int `json:"bestScore"`
}

// AnswerRecord pairs a question with the answer the user gave. It is the
// input unit for splitting a mixed quiz into per-domain attempts.
type AnswerRecord struct {
	Question   Question `json:"question"`
	UserAnswer string   `json:"user_answer"`
}

// SeenQuestions is the persisted shape of the seen-question rotation window.
type SeenQuestions struct {
	QuestionIDs    []int `json:"questionIds"`
	LastUpdated    int64 `json:"lastUpdated"`
	TotalQuestions int   `json:"totalQuestions"`
}

// SeenStats reports how much of the corpus the current rotation has covered.
type SeenStats struct {
	SeenCount      int    `json:"seenCount"`
	LastUpdated    *int64 `json:"lastUpdated"`
	PercentageSeen int    `json:"percentageSeen"`
}
