// Package seed creates demo users and posts. It is intended for development
// and testing only.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"inkwell/internal/auth"
	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// DemoPassword is the password of every seeded credential account.
const DemoPassword = "password123"

// OAuthDemoEmail is the seeded account that can only sign in with Google.
const OAuthDemoEmail = "google.demo@inkwell.local"

// Options controls the amount of generated data.
type Options struct {
	Users        int
	PostsPerUser int
	Clean        bool
	// Seed makes generated data reproducible when non-zero.
	Seed int64
}

// Result reports what was created.
type Result struct {
	Users []models.User
	Posts int
}

// Seeder writes demo data through a GORM handle.
type Seeder struct {
	db    *gorm.DB
	faker *gofakeit.Faker
}

// NewSeeder creates a Seeder. A zero seed uses the current time.
func NewSeeder(db *gorm.DB, seed int64) *Seeder {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Seeder{db: db, faker: gofakeit.New(seed)}
}

// ClearAll removes every post and user.
func (s *Seeder) ClearAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Post{}).Error; err != nil {
			return fmt.Errorf("clear posts: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.User{}).Error; err != nil {
			return fmt.Errorf("clear users: %w", err)
		}
		return nil
	})
}

// Run seeds opts.Users credential accounts plus one Google-only account, each
// with opts.PostsPerUser posts.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Clean {
		if err := s.ClearAll(ctx); err != nil {
			return nil, err
		}
	}

	hashed, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}

	users := make([]models.User, 0, opts.Users+1)
	for i := 0; i < opts.Users; i++ {
		pw := hashed
		users = append(users, models.User{
			Name:     s.faker.Name(),
			Email:    fmt.Sprintf("%s.%d@inkwell.local", strings.ToLower(s.faker.Username()), i+1),
			Password: &pw,
		})
	}
	users = append(users, models.User{
		Name:  "Google Demo",
		Email: OAuthDemoEmail,
	})

	result := &Result{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&users).Error; err != nil {
			return fmt.Errorf("create users: %w", err)
		}

		var posts []models.Post
		for _, u := range users {
			for j := 0; j < opts.PostsPerUser; j++ {
				posts = append(posts, s.BuildPost(u.ID))
			}
		}
		if len(posts) > 0 {
			if err := tx.CreateInBatches(&posts, 100).Error; err != nil {
				return fmt.Errorf("create posts: %w", err)
			}
		}
		result.Posts = len(posts)
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Users = users
	return result, nil
}

// BuildPost returns an unsaved post whose title and content satisfy the post schema.
func (s *Seeder) BuildPost(userID uint) models.Post {
	title := s.faker.Sentence(5)
	if len(title) > 300 {
		title = title[:300]
	}
	return models.Post{
		Title:   title,
		Content: s.faker.Paragraph(1, 3, 8, "\n"),
		UserID:  userID,
	}
}
