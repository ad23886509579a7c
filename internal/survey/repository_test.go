package survey

import (
	"context"
	"testing"

	"github.com/sharath018/invitation-rsvp-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryReplaceAndList(t *testing.T) {
	db := testutil.OpenDB(t, &Question{}, &Choice{}, &Answer{})
	repo := NewRepository(db)
	ctx := context.Background()

	first, err := buildQuestions([]QuestionInput{{Text: "Old?", Choices: []string{"a"}}})
	require.NoError(t, err)
	require.NoError(t, repo.ReplaceQuestions(ctx, "inv-1", first))

	second, err := buildQuestions([]QuestionInput{
		{Text: "Main?", Choices: []string{"Fish", "Veg"}},
		{Text: "Dessert?", Choices: []string{"Cake"}},
	})
	require.NoError(t, err)
	require.NoError(t, repo.ReplaceQuestions(ctx, "inv-1", second))

	questions, err := repo.ListQuestions(ctx, "inv-1")
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "Main?", questions[0].Text)
	require.Len(t, questions[0].Choices, 2)
	assert.Equal(t, "Fish", questions[0].Choices[0].Text)

	var choices int64
	db.Model(&Choice{}).Count(&choices)
	assert.Equal(t, int64(3), choices, "choices of the replaced survey are removed")

	other, err := repo.ListQuestions(ctx, "inv-2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestRepositoryAnswers(t *testing.T) {
	db := testutil.OpenDB(t, &Question{}, &Choice{}, &Answer{})
	repo := NewRepository(db)
	ctx := context.Background()

	questions, err := buildQuestions([]QuestionInput{{Text: "Main?", Choices: []string{"Fish", "Veg"}}})
	require.NoError(t, err)
	require.NoError(t, repo.ReplaceQuestions(ctx, "inv-1", questions))

	n, err := repo.CountAnswers(ctx, "inv-1")
	require.NoError(t, err)
	assert.Zero(t, n)

	q := questions[0]
	require.NoError(t, repo.CreateAnswers(ctx, []Answer{
		{ResponseID: "r1", QuestionID: q.ID, ChoiceID: q.Choices[0].ID},
		{ResponseID: "r2", QuestionID: q.ID, ChoiceID: q.Choices[1].ID},
	}))
	require.NoError(t, repo.CreateAnswers(ctx, nil))

	n, err = repo.CountAnswers(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	answers, err := repo.ListAnswers(ctx, []string{"r2"})
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, q.Choices[1].ID, answers[0].ChoiceID)
}
