// Command seed creates, renames and deletes poll questions from the command line.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"polls-backend/config"
	"polls-backend/database"
	"polls-backend/events"
	"polls-backend/repository"
	"polls-backend/service"
)

func main() {
	var (
		sample   = flag.Bool("sample", false, "insert the sample questions if the database is empty")
		question = flag.String("question", "", "text of a question to create")
		days     = flag.Int("days", 0, "publication offset in days from now, negative for the past")
		choices  = flag.String("choices", "", "comma separated choices for -question")
		renameID = flag.Uint("rename", 0, "id of a question to rename to -question")
		deleteID = flag.Uint("delete", 0, "id of a question to delete with its choices")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("无法加载配置: %v", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("无法初始化数据库: %v", err)
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := repository.NewGormQuestionRepository(db)
	svc := service.NewPollService(repo, events.Nop{})

	switch {
	case *sample:
		err = database.SeedSampleData(ctx, db)
	case *deleteID != 0:
		err = repo.DeleteQuestion(ctx, *deleteID)
		if err == nil {
			log.Printf("deleted question %d", *deleteID)
		}
	case *renameID != 0 && *question != "":
		err = renameQuestion(ctx, svc, *renameID, *question)
	case *question != "":
		err = createQuestion(ctx, svc, *question, *days, *choices)
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func createQuestion(ctx context.Context, svc service.PollService, text string, days int, choices string) error {
	pubDate := time.Now().AddDate(0, 0, days)
	q, err := svc.CreateQuestion(ctx, text, pubDate)
	if err != nil {
		return err
	}

	for _, c := range strings.Split(choices, ",") {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, err := svc.AddChoice(ctx, q.ID, c); err != nil {
			return fmt.Errorf("add choice %q: %w", c, err)
		}
	}

	log.Printf("created question %d: %s", q.ID, q)
	return nil
}

func renameQuestion(ctx context.Context, svc service.PollService, id uint, text string) error {
	q, err := svc.UpdateQuestionText(ctx, id, text)
	if err != nil {
		return err
	}
	log.Printf("renamed question %d: %s", id, q)
	return nil
}
