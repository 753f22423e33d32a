package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"polls-backend/events"
	"polls-backend/models"
	"polls-backend/repository"
)

var (
	// 业务错误定义
	ErrQuestionNotFound     = errors.New("question not found")
	ErrInvalidVoteSelection = errors.New("you didn't select a choice")
)

// InvalidVoteError carries the question so the detail page can be shown again.
type InvalidVoteError struct {
	Question *models.Question
}

func (e *InvalidVoteError) Error() string {
	return fmt.Sprintf("question %d: %s", e.Question.ID, ErrInvalidVoteSelection)
}

func (e *InvalidVoteError) Unwrap() error { return ErrInvalidVoteSelection }

// DefaultIndexLimit 首页默认展示的问题数量
const DefaultIndexLimit = 5

// PollService 投票服务接口
type PollService interface {
	Index(ctx context.Context) ([]models.Question, error)
	Detail(ctx context.Context, id uint) (*models.Question, error)
	Vote(ctx context.Context, questionID uint, rawChoice string) (*models.Choice, error)
	Results(ctx context.Context, id uint) (*models.Question, error)

	CreateQuestion(ctx context.Context, text string, pubDate time.Time) (*models.Question, error)
	AddChoice(ctx context.Context, questionID uint, text string) (*models.Choice, error)
	UpdateQuestionText(ctx context.Context, id uint, text string) (*models.Question, error)
}

// Option configures a PollServiceImpl.
type Option func(*PollServiceImpl)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *PollServiceImpl) { s.now = now }
}

// WithIndexLimit sets how many questions the index shows; <= 0 shows all.
func WithIndexLimit(limit int) Option {
	return func(s *PollServiceImpl) { s.indexLimit = limit }
}

// PollServiceImpl 投票服务实现
type PollServiceImpl struct {
	repo       repository.QuestionRepository
	publisher  events.Publisher
	now        func() time.Time
	indexLimit int
}

// NewPollService 创建投票服务
func NewPollService(repo repository.QuestionRepository, publisher events.Publisher, opts ...Option) *PollServiceImpl {
	if publisher == nil {
		publisher = events.Nop{}
	}
	s := &PollServiceImpl{
		repo:       repo,
		publisher:  publisher,
		now:        time.Now,
		indexLimit: DefaultIndexLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Index returns the latest published questions, newest first.
func (s *PollServiceImpl) Index(ctx context.Context) ([]models.Question, error) {
	questions, err := s.repo.ListRecentQuestions(ctx, s.now(), s.indexLimit)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

// Detail returns a published question with its choices. Future questions are reported as missing.
func (s *PollServiceImpl) Detail(ctx context.Context, id uint) (*models.Question, error) {
	question, err := s.getQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	if !question.IsPublished(s.now()) {
		return nil, ErrQuestionNotFound
	}
	return question, nil
}

// Vote 为问题的某个选项投一票
func (s *PollServiceImpl) Vote(ctx context.Context, questionID uint, rawChoice string) (*models.Choice, error) {
	question, err := s.getQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}

	choiceID, err := strconv.ParseUint(strings.TrimSpace(rawChoice), 10, 0)
	if err != nil || !question.HasChoice(uint(choiceID)) {
		return nil, &InvalidVoteError{Question: question}
	}

	choice, err := s.repo.IncrementVote(ctx, uint(choiceID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// deleted between the lookup and the update
			return nil, &InvalidVoteError{Question: question}
		}
		return nil, fmt.Errorf("increment vote: %w", err)
	}

	event := events.NewVoteEvent(question.ID, choice.ID, choice.Votes, s.now())
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("Failed to publish vote event %s: %v", event.ID, err)
	}
	return choice, nil
}

// Results returns a question with its vote counts.
func (s *PollServiceImpl) Results(ctx context.Context, id uint) (*models.Question, error) {
	return s.getQuestion(ctx, id)
}

func (s *PollServiceImpl) CreateQuestion(ctx context.Context, text string, pubDate time.Time) (*models.Question, error) {
	return s.repo.CreateQuestion(ctx, text, pubDate)
}

func (s *PollServiceImpl) AddChoice(ctx context.Context, questionID uint, text string) (*models.Choice, error) {
	choice, err := s.repo.AddChoice(ctx, questionID, text)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrQuestionNotFound
	}
	return choice, err
}

// UpdateQuestionText changes the text of an existing question and returns it reloaded.
func (s *PollServiceImpl) UpdateQuestionText(ctx context.Context, id uint, text string) (*models.Question, error) {
	question, err := s.getQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	question.QuestionText = text
	if err := s.repo.UpdateQuestion(ctx, question); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("update question %d: %w", id, err)
	}
	return s.getQuestion(ctx, id)
}

func (s *PollServiceImpl) getQuestion(ctx context.Context, id uint) (*models.Question, error) {
	question, err := s.repo.GetQuestion(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("get question %d: %w", id, err)
	}
	return question, nil
}
