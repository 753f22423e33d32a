package templates

import (
	"bytes"
	"testing"
	"time"

	"polls-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, name string, data map[string]any) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Must().ExecuteTemplate(&buf, name, data))
	return buf.String()
}

func TestPluralize(t *testing.T) {
	assert.Equal(t, "s", Pluralize(0))
	assert.Equal(t, "", Pluralize(1))
	assert.Equal(t, "s", Pluralize(2))
}

func TestIndexPage(t *testing.T) {
	body := render(t, IndexPage, map[string]any{"title": "Polls", "latest_question_list": []models.Question{}})
	assert.Contains(t, body, "No polls are available.")

	body = render(t, IndexPage, map[string]any{
		"title": "Polls",
		"latest_question_list": []models.Question{
			{ID: 3, QuestionText: "Tea or coffee", PubDate: time.Now().Add(-2 * time.Hour)},
		},
	})
	assert.Contains(t, body, `href="/polls/3/"`)
	assert.Contains(t, body, "Tea or coffee")
	assert.Contains(t, body, "2 hours ago")
	assert.NotContains(t, body, "No polls are available.")
}

func TestDetailPage(t *testing.T) {
	q := &models.Question{ID: 9, QuestionText: "Best editor", Choices: []models.Choice{
		{ID: 1, QuestionID: 9, ChoiceText: "vim"},
		{ID: 2, QuestionID: 9, ChoiceText: "emacs"},
	}}

	body := render(t, DetailPage, map[string]any{"title": q.QuestionText, "question": q})
	assert.Contains(t, body, `action="/polls/9/vote/"`)
	assert.Contains(t, body, `value="2"`)
	assert.Contains(t, body, "emacs")
	assert.NotContains(t, body, "<strong>")

	body = render(t, DetailPage, map[string]any{"title": q.QuestionText, "question": q, "error_message": "Pick one"})
	assert.Contains(t, body, "<strong>Pick one</strong>")
}

func TestResultsPage(t *testing.T) {
	q := &models.Question{ID: 4, QuestionText: "Tabs", Choices: []models.Choice{
		{ID: 1, ChoiceText: "tabs", Votes: 1},
		{ID: 2, ChoiceText: "spaces", Votes: 3},
		{ID: 3, ChoiceText: "both", Votes: 0},
	}}

	body := render(t, ResultsPage, map[string]any{"title": q.QuestionText, "question": q})
	assert.Contains(t, body, "tabs -- 1 vote<")
	assert.Contains(t, body, "spaces -- 3 votes")
	assert.Contains(t, body, "both -- 0 votes")
	assert.Contains(t, body, `href="/polls/4/"`)
}
