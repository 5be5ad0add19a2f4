package services

import (
	"fmt"
	"testing"

	"github.com/mglush/krug/backend/internal/models"
	"github.com/mglush/krug/backend/internal/repositories"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory SQLite database with the same error
// translation the production Postgres connection uses, so unique
// constraint violations surface as gorm.ErrDuplicatedKey in both.
// MaxOpenConns(1) keeps every connection on the same in-memory DB.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("Failed to auto migrate models: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: "hashed-password",
	}
	if err := repositories.NewPostgresUserRepository(db).CreateUser(user); err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

func createTestPost(t *testing.T, db *gorm.DB, authorID uint, content string) *models.Post {
	t.Helper()
	post, err := NewContentService(db).CreatePost(authorID, content)
	if err != nil {
		t.Fatalf("Failed to create post: %v", err)
	}
	return post
}

func inbox(t *testing.T, db *gorm.DB, recipientID uint) []models.Notification {
	t.Helper()
	notifications, err := repositories.NewPostgresNotificationRepository(db).GetByRecipientID(recipientID)
	if err != nil {
		t.Fatalf("Failed to fetch notifications: %v", err)
	}
	return notifications
}
