package survey

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuestions() []Question {
	return []Question{
		{ID: 20, Text: "Dessert?", Position: 1, Choices: []Choice{
			{ID: 201, QuestionID: 20, Text: "Cake", Position: 0},
			{ID: 202, QuestionID: 20, Text: "Fruit", Position: 1},
		}},
		{ID: 10, Text: "Main?", Position: 0, Choices: []Choice{
			{ID: 102, QuestionID: 10, Text: "Veg", Position: 1},
			{ID: 101, QuestionID: 10, Text: "Fish", Position: 0},
		}},
	}
}

func TestProjectOrdersByPosition(t *testing.T) {
	views := Project(sampleQuestions())
	require.Len(t, views, 2)
	assert.Equal(t, "Main?", views[0].Text)
	assert.Equal(t, []ChoiceView{{ID: 101, Text: "Fish"}, {ID: 102, Text: "Veg"}}, views[0].Choices)
	assert.Equal(t, "Dessert?", views[1].Text)

	assert.Empty(t, Project(nil))
}

func TestBuildAnswersComplete(t *testing.T) {
	answers, err := BuildAnswers("resp-1", sampleQuestions(), []Selection{
		{QuestionID: 20, ChoiceID: 202},
		{QuestionID: 10, ChoiceID: 101},
	})
	require.NoError(t, err)
	assert.Equal(t, []Answer{
		{ResponseID: "resp-1", QuestionID: 10, ChoiceID: 101},
		{ResponseID: "resp-1", QuestionID: 20, ChoiceID: 202},
	}, answers)
}

func TestBuildAnswersNoQuestions(t *testing.T) {
	answers, err := BuildAnswers("resp-1", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, answers)
}

func TestBuildAnswersMissing(t *testing.T) {
	_, err := BuildAnswers("resp-1", sampleQuestions(), []Selection{{QuestionID: 10, ChoiceID: 102}})
	require.ErrorIs(t, err, ErrIncomplete)

	var incomplete *IncompleteError
	require.True(t, errors.As(err, &incomplete))
	assert.Equal(t, []uint{20}, incomplete.Missing)
	assert.Empty(t, incomplete.Conflicting)
}

func TestBuildAnswersConflicting(t *testing.T) {
	_, err := BuildAnswers("resp-1", sampleQuestions(), []Selection{
		{QuestionID: 10, ChoiceID: 101},
		{QuestionID: 10, ChoiceID: 102},
		{QuestionID: 20, ChoiceID: 201},
	})
	var incomplete *IncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []uint{10}, incomplete.Conflicting)

	// repeating the same pick is not a conflict
	_, err = BuildAnswers("resp-1", sampleQuestions(), []Selection{
		{QuestionID: 10, ChoiceID: 101},
		{QuestionID: 10, ChoiceID: 101},
		{QuestionID: 20, ChoiceID: 201},
	})
	assert.NoError(t, err)
}

func TestBuildAnswersUnknownChoice(t *testing.T) {
	// a choice from another question
	_, err := BuildAnswers("resp-1", sampleQuestions(), []Selection{
		{QuestionID: 10, ChoiceID: 201},
		{QuestionID: 20, ChoiceID: 202},
	})
	assert.ErrorIs(t, err, ErrUnknownChoice)

	_, err = BuildAnswers("resp-1", sampleQuestions(), []Selection{{QuestionID: 99, ChoiceID: 1}})
	assert.ErrorIs(t, err, ErrUnknownChoice)
}
