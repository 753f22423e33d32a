package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWasPublishedRecently(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		pubDate time.Time
		want    bool
	}{
		{"future question", now.Add(30 * 24 * time.Hour), false},
		{"one second in the future", now.Add(time.Second), false},
		{"old question", now.Add(-(24*time.Hour + time.Second)), false},
		{"exactly one day old", now.Add(-24 * time.Hour), false},
		{"recent question", now.Add(-(23*time.Hour + 59*time.Minute + 59*time.Second)), true},
		{"published now", now, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := Question{PubDate: tc.pubDate}
			assert.Equal(t, tc.want, q.WasPublishedRecently(now))
		})
	}
}

func TestIsPublished(t *testing.T) {
	now := time.Now()
	assert.True(t, (&Question{PubDate: now.Add(-time.Hour)}).IsPublished(now))
	assert.True(t, (&Question{PubDate: now}).IsPublished(now))
	assert.False(t, (&Question{PubDate: now.Add(time.Minute)}).IsPublished(now))
}

func TestQuestionString(t *testing.T) {
	pub := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	q := Question{QuestionText: "Sample Question", PubDate: pub}
	assert.Equal(t, "Sample Question (2024-03-01 09:30:00+00:00)", q.String())
}

func TestChoiceString(t *testing.T) {
	c := Choice{ChoiceText: "Sample Choice"}
	assert.Equal(t, "choice: Sample Choice", c.String())
}

func TestTotalVotesAndHasChoice(t *testing.T) {
	q := Question{Choices: []Choice{{ID: 1, Votes: 2}, {ID: 4, Votes: 3}}}
	assert.Equal(t, int64(5), q.TotalVotes())
	assert.True(t, q.HasChoice(4))
	assert.False(t, q.HasChoice(2))
}
