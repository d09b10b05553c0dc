package services

import (
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/aurasflow/backend/internal/auth"
	"github.com/aurasflow/backend/internal/config"
	"github.com/aurasflow/backend/internal/logger"
	"github.com/aurasflow/backend/internal/models"
	"github.com/aurasflow/backend/internal/session"
)

func TestMain(m *testing.M) {
	logger.Init(logger.Config{Level: "error", Output: io.Discard})
	os.Exit(m.Run())
}

var testDBCounter int

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testDBCounter++
	dsn := fmt.Sprintf("file:servicetest%d?mode=memory&cache=shared", testDBCounter)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.SocialLink{},
		&models.MarketingPlan{},
		&models.PlanItem{},
		&models.CreditTransaction{},
		&auth.RefreshToken{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestContainer(t *testing.T) *Container {
	t.Helper()
	return NewContainer(&config.Config{}, newTestDB(t), nil, nil, session.NewMemoryStore(0))
}

func createTestUser(t *testing.T, db *gorm.DB, username string, credits int) *models.User {
	t.Helper()

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Credits:      credits,
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func createTestProject(t *testing.T, c *Container, userID uuid.UUID, name string) *models.Project {
	t.Helper()

	project, err := c.Project.Create(userID, &CreateProjectRequest{
		Name:           name,
		Type:           "saas",
		TargetAudience: "founders",
	})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return project
}
