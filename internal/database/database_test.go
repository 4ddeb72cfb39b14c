package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"socialhub/internal/config"
	"socialhub/internal/middleware"
	"socialhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func sqliteConfig() *config.Config {
	return &config.Config{
		Env:        "test",
		DBDriver:   "sqlite",
		SQLitePath: ":memory:",
	}
}

func TestConnect_SQLiteMigratesSchema(t *testing.T) {
	db, err := Connect(sqliteConfig())
	require.NoError(t, err)

	for _, table := range []string{"users", "follows", "posts", "post_likes"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
	assert.True(t, db.Migrator().HasColumn(&models.User{}, "avatar_url"))
	assert.True(t, db.Migrator().HasColumn(&models.Post{}, "image_public_id"))
	assert.True(t, db.Migrator().HasIndex(&models.User{}, "idx_users_email"))

	require.NoError(t, Ping(context.Background(), db))
}

func TestConnect_CommentsRoundTripAsJSON(t *testing.T) {
	db, err := Connect(sqliteConfig())
	require.NoError(t, err)

	post := models.Post{
		OwnerID: 1,
		Caption: "hello",
		Comments: []models.Comment{
			{ID: "c1", UserID: 2, Text: "first"},
			{ID: "c2", UserID: 3, Text: "second"},
		},
	}
	require.NoError(t, db.Create(&post).Error)

	var loaded models.Post
	require.NoError(t, db.First(&loaded, post.ID).Error)
	require.Len(t, loaded.Comments, 2)
	assert.Equal(t, "c1", loaded.Comments[0].ID)
	assert.Equal(t, "second", loaded.Comments[1].Text)
}

func TestDialector(t *testing.T) {
	assert.Equal(t, "sqlite", Dialector(sqliteConfig()).Name())
	assert.Equal(t, "postgres", Dialector(&config.Config{DBDriver: "postgres"}).Name())
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := middleware.Logger
	middleware.Logger = zap.New(core)
	t.Cleanup(func() { middleware.Logger = prev })

	l := NewGormLogger()
	sql := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len(), "record-not-found must be ignored")

	l.Trace(context.Background(), time.Now(), sql, errors.New("syntax error"))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "gorm query error", logs.All()[0].Message)

	l.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "gorm slow query", logs.All()[1].Message)

	l.Trace(context.Background(), time.Now(), sql, nil)
	assert.Equal(t, 2, logs.Len(), "fast queries are not logged at warn level")

	l.LogMode(logger.Info).Trace(context.Background(), time.Now(), sql, nil)
	assert.Equal(t, 3, logs.Len())
}
