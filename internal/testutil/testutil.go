// Package testutil provides shared fixtures for backend tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"socialhub/internal/config"
	"socialhub/internal/database"
	"socialhub/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var emailSeq atomic.Uint64

// NewSQLiteDB opens a private, migrated in-memory database for one test.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Connect(&config.Config{
		Env:        "test",
		DBDriver:   "sqlite",
		SQLitePath: ":memory:",
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// FakeUser returns an unsaved user with random identity fields. The email is
// unique within the test binary.
func FakeUser() *models.User {
	genders := []models.Gender{models.GenderMale, models.GenderFemale, models.GenderOthers}
	birth := gofakeit.DateRange(
		time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2005, 12, 31, 0, 0, 0, 0, time.UTC),
	)
	return &models.User{
		FirstName: truncate(gofakeit.FirstName(), 30),
		Surname:   truncate(gofakeit.LastName(), 50),
		Email:     fmt.Sprintf("user%d.%s", emailSeq.Add(1), strings.ToLower(gofakeit.Email())),
		Gender:    genders[gofakeit.Number(0, len(genders)-1)],
		Birthdate: time.Date(birth.Year(), birth.Month(), birth.Day(), 0, 0, 0, 0, time.UTC),
	}
}

// CreateUser inserts a user whose bcrypt password is password.
func CreateUser(t testing.TB, db *gorm.DB, password string, verified bool) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := FakeUser()
	u.Password = string(hash)
	u.Verified = verified
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// CreatePost inserts a post owned by ownerID.
func CreatePost(t testing.TB, db *gorm.DB, ownerID uint) *models.Post {
	t.Helper()

	p := &models.Post{
		OwnerID:  ownerID,
		Caption:  gofakeit.Sentence(6),
		Image:    models.Image{PublicID: models.StubImagePublicID, URL: models.StubImageURL},
		Comments: []models.Comment{},
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
