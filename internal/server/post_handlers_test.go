package server

import (
	"errors"
	"net/http"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestListPosts(t *testing.T) {
	t.Run("Empty list is an array", func(t *testing.T) {
		postRepo := new(MockPostRepository)
		postRepo.On("ListByUser", mock.Anything, uint(5)).Return([]models.Post{}, nil)
		s := newMockServer(new(MockUserRepository), postRepo)

		resp, body := doJSON(t, newRoutedApp(s), http.MethodGet, "/posts", bearer(t, s, 5, "a@b.com"), nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, []any{}, body["posts"])
	})

	t.Run("Upstream error carries the database message", func(t *testing.T) {
		postRepo := new(MockPostRepository)
		postRepo.On("ListByUser", mock.Anything, uint(5)).Return(nil, errors.New(`relation "posts" does not exist`))
		s := newMockServer(new(MockUserRepository), postRepo)

		resp, body := doJSON(t, newRoutedApp(s), http.MethodGet, "/posts", bearer(t, s, 5, "a@b.com"), nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, `relation "posts" does not exist`, body["error"])
		assert.Equal(t, models.CodeUpstream, body["code"])
	})
}

func TestCreatePost(t *testing.T) {
	postRepo := new(MockPostRepository)
	postRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Post) bool {
		return p.UserID == 5 && p.Title == "Hello" && p.Content == "Hello world!"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Post).ID = 21
	}).Return(nil)
	s := newMockServer(new(MockUserRepository), postRepo)
	app := newRoutedApp(s)

	resp, body := doJSON(t, app, http.MethodPost, "/posts", bearer(t, s, 5, "a@b.com"),
		map[string]any{"title": "Hello", "content": "Hello world!", "user_id": 99})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	post := body["post"].(map[string]any)
	assert.Equal(t, float64(21), post["id"])
	assert.Equal(t, float64(5), post["user_id"])
	postRepo.AssertExpectations(t)

	resp, body = doJSON(t, app, http.MethodPost, "/posts", bearer(t, s, 5, "a@b.com"),
		map[string]any{"title": "Hi"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Validation failed", body["error"])
	assert.Len(t, body["fields"], 2)
}

func TestUpdatePost(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		mockSetup      func(*MockPostRepository)
		expectedStatus int
		expectedError  string
	}{
		{
			name: "Owner",
			path: "/posts/1",
			mockSetup: func(m *MockPostRepository) {
				m.On("UpdateOwned", mock.Anything, uint(1), uint(5), "New title", "New content here").
					Return(&models.Post{ID: 1, UserID: 5, Title: "New title", Content: "New content here"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Not owned or missing",
			path: "/posts/2",
			mockSetup: func(m *MockPostRepository) {
				m.On("UpdateOwned", mock.Anything, uint(2), uint(5), "New title", "New content here").
					Return(nil, repository.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedError:  "Post not found or unauthorized",
		},
		{
			name:           "Non-numeric id",
			path:           "/posts/abc",
			mockSetup:      func(*MockPostRepository) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid ID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			postRepo := new(MockPostRepository)
			tt.mockSetup(postRepo)
			s := newMockServer(new(MockUserRepository), postRepo)

			resp, body := doJSON(t, newRoutedApp(s), http.MethodPut, tt.path, bearer(t, s, 5, "a@b.com"),
				map[string]string{"title": "New title", "content": "New content here"})
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, body["error"])
			} else {
				require.Contains(t, body, "post")
				assert.Equal(t, "New title", body["post"].(map[string]any)["title"])
			}
			postRepo.AssertExpectations(t)
		})
	}
}

func TestDeletePost(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		mockSetup      func(*MockPostRepository)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "Owner",
			path: "/posts/1",
			mockSetup: func(m *MockPostRepository) {
				m.On("DeleteOwned", mock.Anything, uint(1), uint(5)).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "Post deleted successfully",
		},
		{
			name: "Not owned or missing",
			path: "/posts/1",
			mockSetup: func(m *MockPostRepository) {
				m.On("DeleteOwned", mock.Anything, uint(1), uint(5)).Return(repository.ErrNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   "Post not found or unauthorized",
		},
		{
			name:           "Zero id",
			path:           "/posts/0",
			mockSetup:      func(*MockPostRepository) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Invalid ID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			postRepo := new(MockPostRepository)
			tt.mockSetup(postRepo)
			s := newMockServer(new(MockUserRepository), postRepo)

			resp, body := doJSON(t, newRoutedApp(s), http.MethodDelete, tt.path, bearer(t, s, 5, "a@b.com"), nil)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, tt.expectedBody, body["message"])
			} else {
				assert.Equal(t, tt.expectedBody, body["error"])
			}
			postRepo.AssertExpectations(t)
		})
	}
}
