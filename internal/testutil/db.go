// Package testutil provides a migrated sqlite database for service and handler tests.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"mentorship-service/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a file backed sqlite database in a temp dir and migrates every model.
// The pool holds a single connection so transactions run one at a time.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	for _, stmt := range model.Indexes {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

// CreateUser inserts a user with password "password123"
func CreateUser(t testing.TB, db *gorm.DB, name string, role model.Role) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.User{
		Name:     name,
		Email:    name + "@example.com",
		Password: string(hash),
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateMentorship inserts a mentorship in the given status
func CreateMentorship(t testing.TB, db *gorm.DB, mentor, mentee *model.User, status model.MentorshipStatus) *model.Mentorship {
	t.Helper()

	m := &model.Mentorship{
		MentorID:    mentor.ID,
		MenteeID:    mentee.ID,
		Status:      status,
		PackageTier: model.PackageStandard,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}
