package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// VoteEvent 表示一次成功投票后的通知
type VoteEvent struct {
	ID         string    `json:"id"`
	QuestionID uint      `json:"question_id"`
	ChoiceID   uint      `json:"choice_id"`
	Votes      int64     `json:"votes"`
	VotedAt    time.Time `json:"voted_at"`
}

// NewVoteEvent stamps a fresh event id.
func NewVoteEvent(questionID, choiceID uint, votes int64, at time.Time) VoteEvent {
	return VoteEvent{
		ID:         uuid.NewString(),
		QuestionID: questionID,
		ChoiceID:   choiceID,
		Votes:      votes,
		VotedAt:    at,
	}
}

// Encode serializes the event for the wire.
func (e VoteEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeVoteEvent parses an event produced by Encode.
func DecodeVoteEvent(data []byte) (VoteEvent, error) {
	var e VoteEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return VoteEvent{}, fmt.Errorf("decode vote event: %w", err)
	}
	return e, nil
}

// Publisher delivers vote events somewhere.
type Publisher interface {
	Publish(ctx context.Context, event VoteEvent) error
	Close() error
}

// Fanout publishes every event to all of its publishers.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event VoteEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) Close() error {
	var errs []error
	for _, p := range f {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, VoteEvent) error { return nil }
func (Nop) Close() error                             { return nil }
