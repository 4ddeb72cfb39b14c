package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"socialhub/internal/models"
	"socialhub/internal/repository"
	"socialhub/internal/service"
	"socialhub/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockPostRepository is a mock of the PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) ListByOwner(ctx context.Context, ownerID uint) ([]*models.Post, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) ListByOwners(ctx context.Context, ownerIDs []uint) ([]*models.Post, error) {
	args := m.Called(ctx, ownerIDs)
	return args.Get(0).([]*models.Post), args.Error(1)
}

func (m *MockPostRepository) Mutate(ctx context.Context, id uint, fn func(post *models.Post) error) (*models.Post, error) {
	args := m.Called(ctx, id, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	post := args.Get(0).(*models.Post)
	if err := fn(post); err != nil {
		return nil, err
	}
	return post, args.Error(1)
}

func (m *MockPostRepository) DeleteOwned(ctx context.Context, id, ownerID uint) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

func (m *MockPostRepository) ToggleLike(ctx context.Context, postID, userID uint) (bool, error) {
	args := m.Called(ctx, postID, userID)
	return args.Bool(0), args.Error(1)
}

func newPostTestApp(repo *MockPostRepository) *fiber.App {
	s := &Server{
		config:         testConfig("test"),
		postService:    service.NewPostService(repo, nil),
		commentService: service.NewCommentService(repo),
	}
	app := fiber.New(fiber.Config{ErrorHandler: s.ErrorHandler})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(localUserID, uint(1))
		return c.Next()
	})
	app.Post("/posts/create", s.CreatePost)
	app.Patch("/posts/update/:postId", s.UpdatePost)
	app.Get("/posts/my-posts", s.GetMyPosts)
	app.Patch("/posts/like-unlike/:postId", s.LikeUnlikePost)
	app.Delete("/posts/delete/:postId", s.DeletePost)
	return app
}

func sendJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, models.ErrorResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var out models.ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&out)
	_ = resp.Body.Close()
	return resp, out
}

func TestCreatePost(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func(m *MockPostRepository)
		expectedStatus int
	}{
		{
			name: "Success",
			body: map[string]string{"caption": "hello"},
			mockSetup: func(m *MockPostRepository) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Post) bool {
					return p.OwnerID == 1 && p.Caption == "hello" && p.Image.URL == models.StubImageURL
				})).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Caption Too Long",
			body:           map[string]string{"caption": strings.Repeat("x", validation.MaxCaptionLength+1)},
			mockSetup:      func(m *MockPostRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Store Failure",
			body: map[string]string{"caption": "hello"},
			mockSetup: func(m *MockPostRepository) {
				m.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockPostRepository)
			tt.mockSetup(repo)
			app := newPostTestApp(repo)

			resp, body := sendJSON(t, app, http.MethodPost, "/posts/create", tt.body)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.expectedStatus == http.StatusInternalServerError {
				assert.Equal(t, "Internal server error", body.Message)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestUpdatePost_NotOwner(t *testing.T) {
	repo := new(MockPostRepository)
	repo.On("Mutate", mock.Anything, uint(5), mock.Anything).Return(&models.Post{ID: 5, OwnerID: 2}, nil)
	app := newPostTestApp(repo)

	resp, body := sendJSON(t, app, http.MethodPatch, "/posts/update/5", map[string]string{"caption": "mine now"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "User not authorized.", body.Message)
}

func TestUpdatePost_InvalidID(t *testing.T) {
	app := newPostTestApp(new(MockPostRepository))

	resp, body := sendJSON(t, app, http.MethodPatch, "/posts/update/zero", map[string]string{"caption": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid post ID", body.Message)
}

func TestGetMyPosts_Empty(t *testing.T) {
	repo := new(MockPostRepository)
	repo.On("ListByOwner", mock.Anything, uint(1)).Return([]*models.Post{}, nil)
	app := newPostTestApp(repo)

	resp, body := sendJSON(t, app, http.MethodGet, "/posts/my-posts", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "No posts found.", body.Message)
}

func TestLikeUnlikePost(t *testing.T) {
	repo := new(MockPostRepository)
	repo.On("ToggleLike", mock.Anything, uint(3), uint(1)).Return(true, nil).Once()
	repo.On("ToggleLike", mock.Anything, uint(3), uint(1)).Return(false, nil).Once()
	repo.On("ToggleLike", mock.Anything, uint(4), uint(1)).Return(false, repository.ErrNotFound)
	app := newPostTestApp(repo)

	_, body := sendJSON(t, app, http.MethodPatch, "/posts/like-unlike/3", nil)
	assert.Equal(t, "Post liked.", body.Message)
	_, body = sendJSON(t, app, http.MethodPatch, "/posts/like-unlike/3", nil)
	assert.Equal(t, "Post unliked.", body.Message)

	resp, body := sendJSON(t, app, http.MethodPatch, "/posts/like-unlike/4", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Post not found.", body.Message)
	repo.AssertExpectations(t)
}

func TestDeletePost_NotOwned(t *testing.T) {
	repo := new(MockPostRepository)
	repo.On("DeleteOwned", mock.Anything, uint(9), uint(1)).Return(repository.ErrNotFound)
	app := newPostTestApp(repo)

	resp, body := sendJSON(t, app, http.MethodDelete, "/posts/delete/9", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Post not found or unauthorized user.", body.Message)
}
