// Package session runs exams, quizzes and mock interviews over a fixed list
// of questions.
//
// A Session moves Idle -> InProgress -> Completed. Answers are only
// accepted while in progress and the result is frozen on Submit. A Session
// is not safe for concurrent use; callers serialize access.
package session

import "fmt"

type Kind string

const (
	KindExam      Kind = "exam"
	KindQuiz      Kind = "quiz"
	KindInterview Kind = "interview"
)

func (k Kind) Valid() bool {
	return k == KindExam || k == KindQuiz || k == KindInterview
}

type State int

const (
	Idle State = iota
	InProgress
	Completed
)

func (s State) String() string {
	switch s {
	case InProgress:
		return "in-progress"
	case Completed:
		return "completed"
	default:
		return "idle"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*s = Idle
	case "in-progress":
		*s = InProgress
	case "completed":
		*s = Completed
	default:
		return fmt.Errorf("unknown session state %q", text)
	}
	return nil
}

type Session struct {
	kind        Kind
	title       string
	description string
	state       State
	questions   []Question
	index       int
	result      *Result
}

func New(kind Kind) *Session {
	if !kind.Valid() {
		kind = KindQuiz
	}
	return &Session{kind: kind}
}

func (s *Session) Kind() Kind          { return s.kind }
func (s *Session) State() State        { return s.state }
func (s *Session) Index() int          { return s.index }
func (s *Session) Title() string       { return s.title }
func (s *Session) Description() string { return s.description }

// Describe sets the heading shown for exams
func (s *Session) Describe(title, description string) {
	s.title = title
	s.description = description
}

// Start validates and copies questions, then begins at the first one.
// Missing ids are numbered from 1. Starting again discards prior answers.
func (s *Session) Start(questions []Question) error {
	if err := Validate(questions); err != nil {
		return err
	}

	qs := make([]Question, len(questions))
	for i, q := range questions {
		q = q.clone()
		if q.ID == 0 {
			q.ID = i + 1
		}
		q.UserAnswer = nil
		qs[i] = q
	}

	s.questions = qs
	s.index = 0
	s.result = nil
	s.state = InProgress
	return nil
}

// Answer records the user's answer for question i, replacing any earlier one
func (s *Session) Answer(i int, a Answer) error {
	if err := s.writable(); err != nil {
		return err
	}
	if i < 0 || i >= len(s.questions) {
		return ErrQuestionOutOfRange
	}
	if !s.questions[i].Accepts(a) {
		return ErrInvalidAnswer
	}
	s.questions[i].UserAnswer = a
	return nil
}

func (s *Session) AnswerCurrent(a Answer) error {
	return s.Answer(s.index, a)
}

// Next advances the cursor, staying on the last question
func (s *Session) Next() (int, error) {
	if err := s.writable(); err != nil {
		return s.index, err
	}
	if s.index < len(s.questions)-1 {
		s.index++
	}
	return s.index, nil
}

// Previous moves the cursor back, staying on the first question
func (s *Session) Previous() (int, error) {
	if err := s.writable(); err != nil {
		return s.index, err
	}
	if s.index > 0 {
		s.index--
	}
	return s.index, nil
}

// Submit grades the session and freezes it
func (s *Session) Submit() (Result, error) {
	if err := s.writable(); err != nil {
		return Result{}, err
	}
	res := Score(s.questions)
	s.result = &res
	s.state = Completed
	return res, nil
}

// Restart keeps the questions but clears answers and the result
func (s *Session) Restart() error {
	if s.state == Idle {
		return ErrNoActiveSession
	}
	for i := range s.questions {
		s.questions[i].UserAnswer = nil
	}
	s.index = 0
	s.result = nil
	s.state = InProgress
	return nil
}

// Reset returns the session to Idle and drops the questions. Kind and
// details are kept so the session can be started again with new questions.
func (s *Session) Reset() {
	s.questions = nil
	s.index = 0
	s.result = nil
	s.state = Idle
}

// Current returns a copy of the question under the cursor
func (s *Session) Current() (Question, bool) {
	if len(s.questions) == 0 {
		return Question{}, false
	}
	return s.questions[s.index].clone(), true
}

// Questions returns a copy of all questions with their recorded answers
func (s *Session) Questions() []Question {
	out := make([]Question, len(s.questions))
	for i := range s.questions {
		out[i] = s.questions[i].clone()
	}
	return out
}

// Result is nil until the session is submitted
func (s *Session) Result() *Result {
	if s.result == nil {
		return nil
	}
	res := *s.result
	res.IncorrectQuestions = append([]Question(nil), s.result.IncorrectQuestions...)
	return &res
}

// Progress returns the number of answered questions and the total
func (s *Session) Progress() (answered, total int) {
	for i := range s.questions {
		if s.questions[i].UserAnswer != nil {
			answered++
		}
	}
	return answered, len(s.questions)
}

func (s *Session) writable() error {
	switch s.state {
	case Idle:
		return ErrNoActiveSession
	case Completed:
		return ErrSessionCompleted
	}
	return nil
}
