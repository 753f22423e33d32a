package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"polls-backend/config"
	"polls-backend/migrations"
	"polls-backend/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open 根据配置打开数据库连接
func Open(cfg config.Config) (*gorm.DB, error) {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  cfg.IsDevelopment(),
		},
	)

	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverMySQL:
		log.Println("using MySQL database")
		dialector = mysql.Open(cfg.MySQLDSN())
	default:
		log.Printf("using SQLite database %s", cfg.DBPath)
		// foreign keys are off by default in sqlite
		dialector = sqlite.Open(cfg.DBPath + "?_foreign_keys=on")
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: newLogger})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// Migrate creates or updates the questions and choices tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Question{}, &models.Choice{}); err != nil {
		return fmt.Errorf("migrate models: %w", err)
	}
	if err := migrations.EnsurePubDateIndex(db); err != nil {
		return err
	}
	return nil
}

// SeedSampleData inserts a couple of questions when the database is empty.
func SeedSampleData(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Question{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count questions: %w", err)
	}
	if count > 0 {
		log.Println("database already has questions, skipping sample data")
		return nil
	}

	now := time.Now()
	samples := []models.Question{
		{
			QuestionText: "What's up?",
			PubDate:      now.Add(-2 * time.Hour),
			Choices: []models.Choice{
				{ChoiceText: "Not much"},
				{ChoiceText: "The sky"},
				{ChoiceText: "Just hacking again"},
			},
		},
		{
			QuestionText: "Which Go feature do you use the most?",
			PubDate:      now.Add(-3 * 24 * time.Hour),
			Choices: []models.Choice{
				{ChoiceText: "Goroutines"},
				{ChoiceText: "Interfaces"},
				{ChoiceText: "Generics"},
			},
		},
	}

	if err := db.WithContext(ctx).Create(&samples).Error; err != nil {
		return fmt.Errorf("create sample questions: %w", err)
	}
	log.Printf("created %d sample questions", len(samples))
	return nil
}

// Close 关闭数据库连接
func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("get database handle failed: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("close database failed: %v", err)
		return
	}
	log.Println("database connection closed")
}

// Ping checks that the database answers.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
