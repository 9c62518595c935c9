package service

import (
	"context"
	"errors"

	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
)

// MsgPostNotFound covers both a missing post and one owned by someone else.
const MsgPostNotFound = "Post not found or unauthorized"

type PostService struct {
	postRepo repository.PostRepository
}

type CreatePostInput struct {
	UserID  uint
	Title   string
	Content string
}

type UpdatePostInput struct {
	UserID  uint
	PostID  uint
	Title   string
	Content string
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

// ListPosts returns the caller's posts, newest first.
func (s *PostService) ListPosts(ctx context.Context, userID uint) ([]models.Post, error) {
	posts, err := s.postRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, models.NewUpstreamError(err)
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	post := &models.Post{
		Title:   in.Title,
		Content: in.Content,
		UserID:  in.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		observability.RecordPostMutation("create", "error")
		return nil, models.NewUpstreamError(err)
	}
	observability.RecordPostMutation("create", "success")
	return post, nil
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.UpdateOwned(ctx, in.PostID, in.UserID, in.Title, in.Content)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			observability.RecordPostMutation("update", "not_found")
			return nil, models.NewNotFoundError(MsgPostNotFound)
		}
		observability.RecordPostMutation("update", "error")
		return nil, models.NewUpstreamError(err)
	}
	observability.RecordPostMutation("update", "success")
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	if err := s.postRepo.DeleteOwned(ctx, in.PostID, in.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			observability.RecordPostMutation("delete", "not_found")
			return models.NewNotFoundError(MsgPostNotFound)
		}
		observability.RecordPostMutation("delete", "error")
		return models.NewUpstreamError(err)
	}
	observability.RecordPostMutation("delete", "success")
	return nil
}
