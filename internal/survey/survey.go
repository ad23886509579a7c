package survey

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownChoice = errors.New("selection does not match a question of this invitation")
	ErrIncomplete    = errors.New("every question needs exactly one answer")
)

// IncompleteError lists the questions left unanswered or answered twice
type IncompleteError struct {
	Missing     []uint
	Conflicting []uint
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("%s (missing %v, conflicting %v)", ErrIncomplete, e.Missing, e.Conflicting)
}

func (e *IncompleteError) Is(target error) bool { return target == ErrIncomplete }

func ordered(questions []Question) []Question {
	out := make([]Question, len(questions))
	copy(out, questions)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Project returns questions with their choices, both ordered by position
func Project(questions []Question) []QuestionView {
	views := make([]QuestionView, 0, len(questions))
	for _, q := range ordered(questions) {
		choices := make([]Choice, len(q.Choices))
		copy(choices, q.Choices)
		sort.SliceStable(choices, func(i, j int) bool {
			if choices[i].Position != choices[j].Position {
				return choices[i].Position < choices[j].Position
			}
			return choices[i].ID < choices[j].ID
		})

		view := QuestionView{ID: q.ID, Text: q.Text, Position: q.Position, Choices: make([]ChoiceView, len(choices))}
		for i, c := range choices {
			view.Choices[i] = ChoiceView{ID: c.ID, Text: c.Text}
		}
		views = append(views, view)
	}
	return views
}

// BuildAnswers checks that selections pick exactly one known choice for every
// question and returns the answers to store for responseID, in question order.
func BuildAnswers(responseID string, questions []Question, selections []Selection) ([]Answer, error) {
	byQuestion := make(map[uint]map[uint]bool, len(questions))
	for _, q := range questions {
		choices := make(map[uint]bool, len(q.Choices))
		for _, c := range q.Choices {
			choices[c.ID] = true
		}
		byQuestion[q.ID] = choices
	}

	picked := make(map[uint]uint, len(selections))
	conflicting := map[uint]bool{}
	for _, sel := range selections {
		choices, ok := byQuestion[sel.QuestionID]
		if !ok || !choices[sel.ChoiceID] {
			return nil, fmt.Errorf("%w: question %d choice %d", ErrUnknownChoice, sel.QuestionID, sel.ChoiceID)
		}
		if prev, seen := picked[sel.QuestionID]; seen && prev != sel.ChoiceID {
			conflicting[sel.QuestionID] = true
		}
		picked[sel.QuestionID] = sel.ChoiceID
	}

	incomplete := &IncompleteError{}
	answers := make([]Answer, 0, len(questions))
	for _, q := range ordered(questions) {
		switch choiceID, ok := picked[q.ID]; {
		case conflicting[q.ID]:
			incomplete.Conflicting = append(incomplete.Conflicting, q.ID)
		case !ok:
			incomplete.Missing = append(incomplete.Missing, q.ID)
		default:
			answers = append(answers, Answer{ResponseID: responseID, QuestionID: q.ID, ChoiceID: choiceID})
		}
	}

	if len(incomplete.Missing) > 0 || len(incomplete.Conflicting) > 0 {
		return nil, incomplete
	}
	return answers, nil
}
