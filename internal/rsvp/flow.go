package rsvp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sharath018/invitation-rsvp-backend/internal/invitation"
	"github.com/sharath018/invitation-rsvp-backend/internal/survey"
	"go.uber.org/zap"
)

type State string

const (
	StateIdle           State = "IDLE"
	StateValidating     State = "VALIDATING"
	StateRejected       State = "REJECTED"
	StateSurveyRequired State = "SURVEY_REQUIRED"
	StateSubmitting     State = "SUBMITTING"
	StateSucceeded      State = "SUCCEEDED"
	StateFailed         State = "FAILED"
)

var (
	ErrInvitationClosed = errors.New("this invitation no longer accepts responses")
	ErrAlreadySubmitted = errors.New("response already submitted")
)

// ValidationError is a submission refused before any write
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// PrimaryWriteError means the response itself was not stored
type PrimaryWriteError struct{ Err error }

func (e *PrimaryWriteError) Error() string { return "saving response failed: " + e.Err.Error() }

func (e *PrimaryWriteError) Unwrap() error { return e.Err }

// SecondaryWriteError means the response was stored but its answers were not
type SecondaryWriteError struct {
	ResponseID string
	Err        error
}

func (e *SecondaryWriteError) Error() string {
	return fmt.Sprintf("saving answers of response %s failed: %v", e.ResponseID, e.Err)
}

func (e *SecondaryWriteError) Unwrap() error { return e.Err }

type ResponseWriter interface {
	CreateResponse(ctx context.Context, r *Response) error
}

type AnswerWriter interface {
	CreateAnswers(ctx context.Context, answers []survey.Answer) error
}

// Result is the outcome of a successful submission
type Result struct {
	State        State           `json:"state"`
	Response     *Response       `json:"response"`
	Answers      []survey.Answer `json:"answers,omitempty"`
	AnswersSaved bool            `json:"answers_saved"`
}

// AttendeePolicy returns the headcount stored for a response: zero when
// declining, at least one when accepting.
func AttendeePolicy(accept bool, n *int) int {
	if !accept {
		return 0
	}
	if n == nil || *n < 1 {
		return 1
	}
	return *n
}

// Flow drives one guest's submission for one invitation
type Flow struct {
	inv       *invitation.Invitation
	questions []survey.Question
	responses ResponseWriter
	answers   AnswerWriter

	now          func() time.Time
	newID        func() string
	log          *zap.Logger
	onTransition func(from, to State)

	mu    sync.Mutex
	state State
}

type FlowOption func(*Flow)

func WithClock(now func() time.Time) FlowOption { return func(f *Flow) { f.now = now } }

func WithIDGenerator(gen func() string) FlowOption { return func(f *Flow) { f.newID = gen } }

func WithLogger(l *zap.Logger) FlowOption { return func(f *Flow) { f.log = l } }

// WithTransitionHook is called, under the flow lock, on every state change
func WithTransitionHook(hook func(from, to State)) FlowOption {
	return func(f *Flow) { f.onTransition = hook }
}

func NewFlow(inv *invitation.Invitation, questions []survey.Question, responses ResponseWriter, answers AnswerWriter, opts ...FlowOption) *Flow {
	f := &Flow{
		inv:       inv,
		questions: questions,
		responses: responses,
		answers:   answers,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
		log:       zap.NewNop(),
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Closed reports whether the invitation stopped accepting responses
func (f *Flow) Closed() bool {
	return f.inv.IsClosed(f.now())
}

// Questions returns the survey projection the guest has to answer
func (f *Flow) Questions() []survey.QuestionView {
	return survey.Project(f.questions)
}

func (f *Flow) setState(to State) {
	from := f.state
	f.state = to
	if f.onTransition != nil && from != to {
		f.onTransition(from, to)
	}
}

// Submit validates sub and stores it as one response, followed by its survey
// answers when the guest accepts. A failed answer batch is logged and does not
// undo the response.
func (f *Flow) Submit(ctx context.Context, sub Submission) (*Result, error) {
	f.mu.Lock()
	if f.state == StateSubmitting || f.state == StateSucceeded {
		f.mu.Unlock()
		return nil, ErrAlreadySubmitted
	}
	if f.Closed() {
		f.mu.Unlock()
		return nil, ErrInvitationClosed
	}

	f.setState(StateValidating)
	resp, answers, verr := f.validate(sub)
	if verr != nil {
		if errors.Is(verr, survey.ErrIncomplete) || errors.Is(verr, survey.ErrUnknownChoice) {
			f.setState(StateSurveyRequired)
		} else {
			f.setState(StateRejected)
		}
		f.setState(StateIdle)
		f.mu.Unlock()
		return nil, verr
	}
	f.setState(StateSubmitting)
	f.mu.Unlock()

	if err := f.responses.CreateResponse(ctx, resp); err != nil {
		f.mu.Lock()
		f.setState(StateFailed)
		f.mu.Unlock()
		f.log.Error("response write failed", zap.String("invitation_id", f.inv.ID), zap.Error(err))
		return nil, &PrimaryWriteError{Err: err}
	}

	result := &Result{Response: resp, Answers: answers, AnswersSaved: true}
	if len(answers) > 0 {
		if err := f.answers.CreateAnswers(ctx, answers); err != nil {
			serr := &SecondaryWriteError{ResponseID: resp.ID, Err: err}
			f.log.Warn("survey answers not saved", zap.String("invitation_id", f.inv.ID), zap.Error(serr))
			result.AnswersSaved = false
		}
	}

	f.mu.Lock()
	f.setState(StateSucceeded)
	result.State = f.state
	f.mu.Unlock()
	return result, nil
}

func (f *Flow) validate(sub Submission) (*Response, []survey.Answer, error) {
	name := strings.TrimSpace(sub.Name)
	if name == "" {
		return nil, nil, &ValidationError{Field: "name", Reason: "name is required"}
	}
	if sub.Accept == nil {
		return nil, nil, &ValidationError{Field: "accept", Reason: "choose to accept or decline"}
	}
	if sub.NumAttendees != nil && *sub.NumAttendees < 0 {
		return nil, nil, &ValidationError{Field: "num_attendees", Reason: "must not be negative"}
	}

	resp := &Response{
		ID:           f.newID(),
		InvitationID: f.inv.ID,
		Name:         name,
		Accept:       *sub.Accept,
		NumAttendees: AttendeePolicy(*sub.Accept, sub.NumAttendees),
		CreatedAt:    f.now().UTC(),
	}

	if !resp.Accept || len(f.questions) == 0 {
		return resp, nil, nil
	}
	answers, err := survey.BuildAnswers(resp.ID, f.questions, sub.Selections)
	if err != nil {
		return nil, nil, &ValidationError{Field: "answers", Err: err}
	}
	return resp, answers, nil
}
