package service

import (
	"context"
	"sync"
	"time"

	"socialhub/internal/mail"
	"socialhub/internal/models"
	"socialhub/internal/repository"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn         func(context.Context, uint) (*models.User, error)
	getCredentialsFn  func(context.Context, uint) (*models.User, error)
	getByEmailFn      func(context.Context, string) (*models.User, error)
	getByResetTokenFn func(context.Context, string, time.Time) (*models.User, error)
	getProfileFn      func(context.Context, uint) (*models.User, error)
	followingIDsFn    func(context.Context, uint) ([]uint, error)
	createFn          func(context.Context, *models.User) error
	updateFn          func(context.Context, *models.User) error
	toggleFollowFn    func(context.Context, uint, uint) (bool, error)
	deleteCascadeFn   func(context.Context, uint) error
}

var _ repository.UserRepository = (*userRepoStub)(nil)

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetCredentials(ctx context.Context, id uint) (*models.User, error) {
	return s.getCredentialsFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByResetToken(ctx context.Context, hash string, now time.Time) (*models.User, error) {
	return s.getByResetTokenFn(ctx, hash, now)
}
func (s *userRepoStub) GetProfile(ctx context.Context, id uint) (*models.User, error) {
	return s.getProfileFn(ctx, id)
}
func (s *userRepoStub) FollowingIDs(ctx context.Context, id uint) ([]uint, error) {
	return s.followingIDsFn(ctx, id)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) ToggleFollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.toggleFollowFn(ctx, followerID, followingID)
}
func (s *userRepoStub) DeleteCascade(ctx context.Context, id uint) error {
	return s.deleteCascadeFn(ctx, id)
}

func noopUserRepo() *userRepoStub {
	none := func(context.Context, uint) (*models.User, error) { return nil, nil }
	return &userRepoStub{
		getByIDFn:         none,
		getCredentialsFn:  none,
		getByEmailFn:      func(context.Context, string) (*models.User, error) { return nil, nil },
		getByResetTokenFn: func(context.Context, string, time.Time) (*models.User, error) { return nil, nil },
		getProfileFn:      none,
		followingIDsFn:    func(context.Context, uint) ([]uint, error) { return []uint{}, nil },
		createFn:          func(context.Context, *models.User) error { return nil },
		updateFn:          func(context.Context, *models.User) error { return nil },
		toggleFollowFn:    func(context.Context, uint, uint) (bool, error) { return true, nil },
		deleteCascadeFn:   func(context.Context, uint) error { return nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn       func(context.Context, *models.Post) error
	getByIDFn      func(context.Context, uint) (*models.Post, error)
	listByOwnerFn  func(context.Context, uint) ([]*models.Post, error)
	listByOwnersFn func(context.Context, []uint) ([]*models.Post, error)
	mutateFn       func(context.Context, uint, func(*models.Post) error) (*models.Post, error)
	deleteOwnedFn  func(context.Context, uint, uint) error
	toggleLikeFn   func(context.Context, uint, uint) (bool, error)
}

var _ repository.PostRepository = (*postRepoStub)(nil)

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) ListByOwner(ctx context.Context, ownerID uint) ([]*models.Post, error) {
	return s.listByOwnerFn(ctx, ownerID)
}
func (s *postRepoStub) ListByOwners(ctx context.Context, ownerIDs []uint) ([]*models.Post, error) {
	return s.listByOwnersFn(ctx, ownerIDs)
}
func (s *postRepoStub) Mutate(ctx context.Context, id uint, fn func(*models.Post) error) (*models.Post, error) {
	return s.mutateFn(ctx, id, fn)
}
func (s *postRepoStub) DeleteOwned(ctx context.Context, id, ownerID uint) error {
	return s.deleteOwnedFn(ctx, id, ownerID)
}
func (s *postRepoStub) ToggleLike(ctx context.Context, postID, userID uint) (bool, error) {
	return s.toggleLikeFn(ctx, postID, userID)
}

// singlePostRepo serves one in-memory post. Mutate applies fn to a copy and
// keeps it only when fn succeeds.
func singlePostRepo(post *models.Post) *postRepoStub {
	return &postRepoStub{
		createFn: func(context.Context, *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			if id != post.ID {
				return nil, nil
			}
			return post, nil
		},
		listByOwnerFn:  func(context.Context, uint) ([]*models.Post, error) { return []*models.Post{}, nil },
		listByOwnersFn: func(context.Context, []uint) ([]*models.Post, error) { return []*models.Post{}, nil },
		mutateFn: func(_ context.Context, id uint, fn func(*models.Post) error) (*models.Post, error) {
			if id != post.ID {
				return nil, repository.ErrNotFound
			}
			cp := *post
			cp.Comments = append([]models.Comment(nil), post.Comments...)
			if err := fn(&cp); err != nil {
				return nil, err
			}
			*post = cp
			return post, nil
		},
		deleteOwnedFn: func(context.Context, uint, uint) error { return nil },
		toggleLikeFn:  func(context.Context, uint, uint) (bool, error) { return true, nil },
	}
}

type capturedMail struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (c *capturedMail) Dispatch(msg mail.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
}

func (c *capturedMail) last() (mail.Message, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sent) == 0 {
		return mail.Message{}, false
	}
	return c.sent[len(c.sent)-1], true
}

func statusOf(err error) int {
	return models.StatusOf(err)
}

func messageOf(err error) string {
	if appErr, ok := err.(*models.AppError); ok {
		return appErr.Message
	}
	return ""
}
