package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"polls-backend/database"
	"polls-backend/models"
	"polls-backend/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a private in-memory sqlite database with the schema migrated.
// The database is closed when the test ends.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// one connection keeps the shared-cache database alive and serializes writers
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// CreateQuestion inserts a question published the given number of days
// from now (negative for the past, positive for the future).
func CreateQuestion(t *testing.T, db *gorm.DB, text string, days int) *models.Question {
	t.Helper()

	q := &models.Question{
		QuestionText: text,
		PubDate:      time.Now().Add(time.Duration(days) * 24 * time.Hour),
	}
	if err := db.Create(q).Error; err != nil {
		t.Fatalf("failed to create question: %v", err)
	}
	return q
}

// CreateQuestionWithChoices inserts a question and one zero-vote choice per text.
func CreateQuestionWithChoices(t *testing.T, db *gorm.DB, text string, days int, choices ...string) *models.Question {
	t.Helper()

	q := CreateQuestion(t, db, text, days)
	for _, c := range choices {
		choice := models.Choice{QuestionID: q.ID, ChoiceText: c}
		if err := db.Create(&choice).Error; err != nil {
			t.Fatalf("failed to create choice: %v", err)
		}
		q.Choices = append(q.Choices, choice)
	}
	return q
}

// NewRepository wires a GORM repository over a fresh test database.
func NewRepository(t *testing.T) (repository.QuestionRepository, *gorm.DB) {
	t.Helper()

	db := NewTestDB(t)
	return repository.NewGormQuestionRepository(db), db
}
