package service

import (
	"context"
	"errors"

	"inkwell/internal/models"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn    func(context.Context, uint) (*models.User, error)
	getByEmailFn func(context.Context, string) (*models.User, error)
	createFn     func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	listByUserFn  func(context.Context, uint) ([]models.Post, error)
	createFn      func(context.Context, *models.Post) error
	updateOwnedFn func(context.Context, uint, uint, string, string) (*models.Post, error)
	deleteOwnedFn func(context.Context, uint, uint) error
}

func (s *postRepoStub) ListByUser(ctx context.Context, userID uint) ([]models.Post, error) {
	return s.listByUserFn(ctx, userID)
}
func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) UpdateOwned(ctx context.Context, id, userID uint, title, content string) (*models.Post, error) {
	return s.updateOwnedFn(ctx, id, userID, title, content)
}
func (s *postRepoStub) DeleteOwned(ctx context.Context, id, userID uint) error {
	return s.deleteOwnedFn(ctx, id, userID)
}

type tokenStub struct {
	err error
}

func (s tokenStub) Issue(userID uint, email string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "token-for-" + email, nil
}

var errDB = errors.New("db down")

func asAppError(err error) *models.AppError {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
