package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"polls-backend/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a question or choice does not exist.
var ErrNotFound = errors.New("record not found")

// QuestionRepository 定义问题与选项的数据访问接口
type QuestionRepository interface {
	CreateQuestion(ctx context.Context, text string, pubDate time.Time) (*models.Question, error)
	GetQuestion(ctx context.Context, id uint) (*models.Question, error)
	ListRecentQuestions(ctx context.Context, now time.Time, limit int) ([]models.Question, error)
	UpdateQuestion(ctx context.Context, question *models.Question) error
	CountQuestions(ctx context.Context) (int64, error)
	DeleteQuestion(ctx context.Context, id uint) error

	AddChoice(ctx context.Context, questionID uint, text string) (*models.Choice, error)
	GetChoice(ctx context.Context, questionID, choiceID uint) (*models.Choice, error)
	IncrementVote(ctx context.Context, choiceID uint) (*models.Choice, error)
}

// GormQuestionRepository implements QuestionRepository on top of GORM.
type GormQuestionRepository struct {
	db *gorm.DB
}

// NewGormQuestionRepository 创建基于GORM的数据仓库
func NewGormQuestionRepository(db *gorm.DB) *GormQuestionRepository {
	return &GormQuestionRepository{db: db}
}

func (r *GormQuestionRepository) CreateQuestion(ctx context.Context, text string, pubDate time.Time) (*models.Question, error) {
	q := &models.Question{QuestionText: text, PubDate: pubDate}
	if err := r.db.WithContext(ctx).Create(q).Error; err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return q, nil
}

// GetQuestion loads a question with its choices ordered by id.
func (r *GormQuestionRepository) GetQuestion(ctx context.Context, id uint) (*models.Question, error) {
	var q models.Question
	err := r.db.WithContext(ctx).
		Preload("Choices", func(db *gorm.DB) *gorm.DB { return db.Order("choices.id") }).
		First(&q, id).Error
	if err != nil {
		return nil, notFound(err, "get question %d", id)
	}
	return &q, nil
}

// ListRecentQuestions returns published questions, newest first. Questions
// sharing a pub_date come out most recently created first. limit <= 0 means no limit.
func (r *GormQuestionRepository) ListRecentQuestions(ctx context.Context, now time.Time, limit int) ([]models.Question, error) {
	questions := []models.Question{}
	tx := r.db.WithContext(ctx).
		Where("pub_date <= ?", now.UTC()).
		Order("pub_date desc").
		Order("id desc")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if err := tx.Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("list recent questions: %w", err)
	}
	return questions, nil
}

// UpdateQuestion persists the text and publication date of an existing question.
func (r *GormQuestionRepository) UpdateQuestion(ctx context.Context, question *models.Question) error {
	result := r.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("id = ?", question.ID).
		Updates(map[string]interface{}{
			"question_text": question.QuestionText,
			"pub_date":      question.PubDate.UTC(),
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("update question %d: %w", question.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update question %d: %w", question.ID, ErrNotFound)
	}
	return nil
}

func (r *GormQuestionRepository) CountQuestions(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Question{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return count, nil
}

// DeleteQuestion removes a question together with its choices.
func (r *GormQuestionRepository) DeleteQuestion(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&models.Choice{}).Error; err != nil {
			return fmt.Errorf("delete choices of question %d: %w", id, err)
		}
		result := tx.Delete(&models.Question{}, id)
		if result.Error != nil {
			return fmt.Errorf("delete question %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("delete question %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

func (r *GormQuestionRepository) AddChoice(ctx context.Context, questionID uint, text string) (*models.Choice, error) {
	var exists int64
	if err := r.db.WithContext(ctx).Model(&models.Question{}).Where("id = ?", questionID).Count(&exists).Error; err != nil {
		return nil, fmt.Errorf("check question %d: %w", questionID, err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("add choice to question %d: %w", questionID, ErrNotFound)
	}

	c := &models.Choice{QuestionID: questionID, ChoiceText: text}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, fmt.Errorf("create choice: %w", err)
	}
	return c, nil
}

// GetChoice finds a choice only if it belongs to the given question.
func (r *GormQuestionRepository) GetChoice(ctx context.Context, questionID, choiceID uint) (*models.Choice, error) {
	var c models.Choice
	err := r.db.WithContext(ctx).
		Where("id = ? AND question_id = ?", choiceID, questionID).
		First(&c).Error
	if err != nil {
		return nil, notFound(err, "get choice %d of question %d", choiceID, questionID)
	}
	return &c, nil
}

// IncrementVote adds one vote in a single UPDATE so concurrent votes are never lost.
func (r *GormQuestionRepository) IncrementVote(ctx context.Context, choiceID uint) (*models.Choice, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Choice{}).
		Where("id = ?", choiceID).
		UpdateColumn("votes", gorm.Expr("votes + ?", 1))
	if result.Error != nil {
		return nil, fmt.Errorf("increment votes of choice %d: %w", choiceID, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("increment votes of choice %d: %w", choiceID, ErrNotFound)
	}

	var c models.Choice
	if err := r.db.WithContext(ctx).First(&c, choiceID).Error; err != nil {
		return nil, notFound(err, "reload choice %d", choiceID)
	}
	return &c, nil
}

func notFound(err error, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", msg, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
