package repository

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations. Every
// mutation is scoped to the owning user in a single statement.
type PostRepository interface {
	ListByUser(ctx context.Context, userID uint) ([]models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	UpdateOwned(ctx context.Context, id, userID uint, title, content string) (*models.Post, error)
	DeleteOwned(ctx context.Context, id, userID uint) error
}

const postsTable = "posts"

type postRepository struct {
	db    *gorm.DB
	trace *observability.TraceLayer
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, trace: observability.NewTraceLayer(nil)}
}

// ListByUser returns the user's posts newest first. The result is never nil.
func (r *postRepository) ListByUser(ctx context.Context, userID uint) (_ []models.Post, err error) {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "ListByUser", postsTable)
	defer func() { observability.EndSpan(span, err) }()
	span.SetAttributes(attribute.Int64("user.id", int64(userID)))

	posts := make([]models.Post, 0)
	err = r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (err error) {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "Create", postsTable)
	defer func() { observability.EndSpan(span, err) }()
	span.SetAttributes(attribute.Int64("user.id", int64(post.UserID)))

	return r.db.WithContext(ctx).Create(post).Error
}

// UpdateOwned runs UPDATE ... WHERE id = ? AND user_id = ? RETURNING *.
// A post owned by someone else is reported exactly like a missing one.
func (r *postRepository) UpdateOwned(ctx context.Context, id, userID uint, title, content string) (_ *models.Post, err error) {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "UpdateOwned", postsTable)
	defer func() { observability.EndSpan(span, err, ErrNotFound) }()
	span.SetAttributes(attribute.Int64("post.id", int64(id)), attribute.Int64("user.id", int64(userID)))

	var post models.Post
	res := r.db.WithContext(ctx).
		Model(&post).
		Clauses(clause.Returning{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{
			"title":   title,
			"content": content,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", res.RowsAffected))
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &post, nil
}

// DeleteOwned runs DELETE ... WHERE id = ? AND user_id = ?.
func (r *postRepository) DeleteOwned(ctx context.Context, id, userID uint) (err error) {
	ctx, span := r.trace.TraceRepositoryMethod(ctx, "DeleteOwned", postsTable)
	defer func() { observability.EndSpan(span, err, ErrNotFound) }()
	span.SetAttributes(attribute.Int64("post.id", int64(id)), attribute.Int64("user.id", int64(userID)))

	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Post{})
	if res.Error != nil {
		return res.Error
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", res.RowsAffected))
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
