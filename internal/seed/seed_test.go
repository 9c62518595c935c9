package seed

import (
	"context"
	"testing"

	"inkwell/internal/auth"
	"inkwell/internal/database"
	"inkwell/internal/models"
	"inkwell/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

func TestSeeder_Run(t *testing.T) {
	db := setupTestDB(t)
	s := NewSeeder(db, 42)
	ctx := context.Background()

	res, err := s.Run(ctx, Options{Users: 3, PostsPerUser: 2})
	require.NoError(t, err)
	assert.Len(t, res.Users, 4)
	assert.Equal(t, 8, res.Posts)

	var userCount, postCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&postCount).Error)
	assert.Equal(t, int64(4), userCount)
	assert.Equal(t, int64(8), postCount)

	var oauthUser models.User
	require.NoError(t, db.Where("email = ?", OAuthDemoEmail).First(&oauthUser).Error)
	assert.False(t, oauthUser.HasPassword())

	var credUser models.User
	require.NoError(t, db.Where("email <> ?", OAuthDemoEmail).First(&credUser).Error)
	require.True(t, credUser.HasPassword())
	assert.NoError(t, auth.ComparePassword(*credUser.Password, DemoPassword))

	// Running again with Clean replaces everything.
	res, err = NewSeeder(db, 7).Run(ctx, Options{Users: 1, PostsPerUser: 1, Clean: true})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	assert.Equal(t, int64(2), userCount)
	assert.Equal(t, 2, res.Posts)
}

func TestSeeder_BuildPostIsValid(t *testing.T) {
	s := NewSeeder(nil, 1)
	for i := 0; i < 20; i++ {
		post := s.BuildPost(1)
		fields, err := validation.Struct(&validation.PostRequest{Title: post.Title, Content: post.Content})
		require.NoError(t, err)
		assert.Empty(t, fields, "title=%q content=%q", post.Title, post.Content)
	}
}
