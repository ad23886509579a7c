package rsvp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sharath018/invitation-rsvp-backend/internal/invitation"
	"github.com/sharath018/invitation-rsvp-backend/internal/survey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingResponses struct {
	created []*Response
	err     error
}

func (r *recordingResponses) CreateResponse(_ context.Context, resp *Response) error {
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, resp)
	return nil
}

type recordingAnswers struct {
	batches [][]survey.Answer
	err     error
}

func (r *recordingAnswers) CreateAnswers(_ context.Context, answers []survey.Answer) error {
	r.batches = append(r.batches, answers)
	return r.err
}

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func boolPtr(b bool) *bool { return &b }
func intPtr(n int) *int    { return &n }

func openInvitation() *invitation.Invitation {
	closeAt := now.Add(24 * time.Hour)
	return &invitation.Invitation{ID: "inv-1", CloseAt: &closeAt}
}

func mealQuestion() []survey.Question {
	return []survey.Question{{ID: 1, Text: "Meal?", Choices: []survey.Choice{{ID: 11, QuestionID: 1, Text: "Fish"}, {ID: 12, QuestionID: 1, Text: "Veg"}}}}
}

type harness struct {
	flow      *Flow
	responses *recordingResponses
	answers   *recordingAnswers
	trail     []State
}

func newHarness(inv *invitation.Invitation, questions []survey.Question) *harness {
	h := &harness{responses: &recordingResponses{}, answers: &recordingAnswers{}}
	h.flow = NewFlow(inv, questions, h.responses, h.answers,
		WithClock(func() time.Time { return now }),
		WithIDGenerator(func() string { return "resp-1" }),
		WithTransitionHook(func(_, to State) { h.trail = append(h.trail, to) }),
	)
	return h
}

func TestSubmitAcceptWithSurvey(t *testing.T) {
	h := newHarness(openInvitation(), mealQuestion())

	result, err := h.flow.Submit(context.Background(), Submission{
		Name:         "  Sam Carter ",
		Accept:       boolPtr(true),
		NumAttendees: intPtr(3),
		Selections:   []survey.Selection{{QuestionID: 1, ChoiceID: 12}},
	})
	require.NoError(t, err)

	assert.Equal(t, StateSucceeded, result.State)
	assert.True(t, result.AnswersSaved)
	assert.Equal(t, []State{StateValidating, StateSubmitting, StateSucceeded}, h.trail)

	require.Len(t, h.responses.created, 1)
	resp := h.responses.created[0]
	assert.Equal(t, "resp-1", resp.ID)
	assert.Equal(t, "inv-1", resp.InvitationID)
	assert.Equal(t, "Sam Carter", resp.Name)
	assert.Equal(t, 3, resp.NumAttendees)
	assert.Equal(t, now, resp.CreatedAt)

	require.Len(t, h.answers.batches, 1)
	assert.Equal(t, []survey.Answer{{ResponseID: "resp-1", QuestionID: 1, ChoiceID: 12}}, h.answers.batches[0])
}

func TestSubmitDeclineSkipsSurveyAndZeroesAttendees(t *testing.T) {
	h := newHarness(openInvitation(), mealQuestion())

	result, err := h.flow.Submit(context.Background(), Submission{Name: "Ana", Accept: boolPtr(false), NumAttendees: intPtr(4)})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Response.NumAttendees)
	assert.Empty(t, h.answers.batches, "declining guests are not asked the survey")
}

func TestSubmitClosedInvitation(t *testing.T) {
	closeAt := now.Add(-time.Minute)
	h := newHarness(&invitation.Invitation{ID: "inv-1", CloseAt: &closeAt}, nil)

	_, err := h.flow.Submit(context.Background(), Submission{Name: "Ana", Accept: boolPtr(true)})
	assert.ErrorIs(t, err, ErrInvitationClosed)
	assert.Equal(t, StateIdle, h.flow.State())
	assert.Empty(t, h.trail)
	assert.Empty(t, h.responses.created)
}

func TestSubmitOnCloseInstantIsAccepted(t *testing.T) {
	closeAt := now
	h := newHarness(&invitation.Invitation{ID: "inv-1", CloseAt: &closeAt}, nil)

	_, err := h.flow.Submit(context.Background(), Submission{Name: "Ana", Accept: boolPtr(true)})
	assert.NoError(t, err)
}

func TestSubmitValidation(t *testing.T) {
	cases := map[string]struct {
		sub   Submission
		field string
	}{
		"blank name":         {Submission{Name: "   ", Accept: boolPtr(true)}, "name"},
		"no decision":        {Submission{Name: "Ana"}, "accept"},
		"negative attendees": {Submission{Name: "Ana", Accept: boolPtr(true), NumAttendees: intPtr(-1)}, "num_attendees"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHarness(openInvitation(), nil)
			_, err := h.flow.Submit(context.Background(), tc.sub)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Equal(t, []State{StateValidating, StateRejected, StateIdle}, h.trail)
			assert.Empty(t, h.responses.created)
		})
	}
}

func TestSubmitIncompleteSurvey(t *testing.T) {
	h := newHarness(openInvitation(), mealQuestion())

	_, err := h.flow.Submit(context.Background(), Submission{Name: "Ana", Accept: boolPtr(true)})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, survey.ErrIncomplete)
	assert.Equal(t, []State{StateValidating, StateSurveyRequired, StateIdle}, h.trail)
	assert.Empty(t, h.responses.created)

	// the guest fixes the form and tries again
	_, err = h.flow.Submit(context.Background(), Submission{
		Name: "Ana", Accept: boolPtr(true),
		Selections: []survey.Selection{{QuestionID: 1, ChoiceID: 11}},
	})
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, h.flow.State())
}

func TestSubmitPrimaryWriteFailure(t *testing.T) {
	h := newHarness(openInvitation(), mealQuestion())
	h.responses.err = errors.New("connection reset")

	sub := Submission{Name: "Ana", Accept: boolPtr(true), Selections: []survey.Selection{{QuestionID: 1, ChoiceID: 11}}}
	_, err := h.flow.Submit(context.Background(), sub)

	var perr *PrimaryWriteError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, StateFailed, h.flow.State())
	assert.Empty(t, h.answers.batches, "answers are never written without a response")

	// a failed flow may be retried by hand
	h.responses.err = nil
	_, err = h.flow.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Len(t, h.responses.created, 1)
}

func TestSubmitSecondaryWriteFailureStillSucceeds(t *testing.T) {
	h := newHarness(openInvitation(), mealQuestion())
	h.answers.err = errors.New("deadlock")

	result, err := h.flow.Submit(context.Background(), Submission{
		Name: "Ana", Accept: boolPtr(true),
		Selections: []survey.Selection{{QuestionID: 1, ChoiceID: 11}},
	})
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, result.State)
	assert.False(t, result.AnswersSaved)
	assert.Len(t, h.responses.created, 1)
}

func TestSubmitOnlyOnce(t *testing.T) {
	h := newHarness(openInvitation(), nil)
	sub := Submission{Name: "Ana", Accept: boolPtr(true)}

	_, err := h.flow.Submit(context.Background(), sub)
	require.NoError(t, err)
	_, err = h.flow.Submit(context.Background(), sub)
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.Len(t, h.responses.created, 1)
}

func TestAttendeePolicy(t *testing.T) {
	assert.Equal(t, 0, AttendeePolicy(false, intPtr(5)))
	assert.Equal(t, 0, AttendeePolicy(false, nil))
	assert.Equal(t, 1, AttendeePolicy(true, nil))
	assert.Equal(t, 1, AttendeePolicy(true, intPtr(0)))
	assert.Equal(t, 4, AttendeePolicy(true, intPtr(4)))
}
