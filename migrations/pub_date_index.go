package migrations

import (
	"log"

	"gorm.io/gorm"
)

const pubDateIndex = "idx_questions_pub_date_id"

// EnsurePubDateIndex adds the composite index backing the index page query
// (pub_date DESC, id DESC). Tables created before the index existed get it here.
func EnsurePubDateIndex(db *gorm.DB) error {
	if db.Migrator().HasIndex(&question{}, pubDateIndex) {
		return nil
	}

	log.Printf("migration: creating index %s", pubDateIndex)
	if err := db.Exec("CREATE INDEX " + pubDateIndex + " ON questions (pub_date, id)").Error; err != nil {
		log.Printf("migration failed: %v", err)
		return err
	}
	return nil
}

// question is the minimal shape needed to resolve the table name.
type question struct {
	ID uint
}

func (question) TableName() string {
	return "questions"
}
