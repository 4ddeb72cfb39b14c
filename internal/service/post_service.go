package service

import (
	"context"
	"errors"

	"socialhub/internal/models"
	"socialhub/internal/observability"
	"socialhub/internal/repository"
	"socialhub/internal/validation"
)

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
}

type CreatePostInput struct {
	OwnerID uint
	Caption string
}

type UpdatePostInput struct {
	UserID  uint
	PostID  uint
	Caption string
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{postRepo: postRepo, userRepo: userRepo}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validation.ValidateCaption(in.Caption); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	post := &models.Post{
		OwnerID: in.OwnerID,
		Caption: in.Caption,
		Image:   models.Image{PublicID: models.StubImagePublicID, URL: models.StubImageURL},
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// UpdatePost changes the caption. Only the owner may do so.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	if err := validation.ValidateCaption(in.Caption); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	post, err := s.postRepo.Mutate(ctx, in.PostID, func(p *models.Post) error {
		if p.OwnerID != in.UserID {
			return models.NewUnauthorizedError("User not authorized.")
		}
		p.Caption = in.Caption
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.NewNotFoundError("Post not found.")
	}
	return post, err
}

// ListMyPosts returns the user's posts, newest first. No posts is a 404.
func (s *PostService) ListMyPosts(ctx context.Context, userID uint) ([]*models.Post, error) {
	posts, err := s.postRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, models.NewNotFoundError("No posts found.")
	}
	return posts, nil
}

// ListFollowingPosts returns posts by everyone the user follows.
func (s *PostService) ListFollowingPosts(ctx context.Context, userID uint) ([]*models.Post, error) {
	following, err := s.userRepo.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.ListByOwners(ctx, following)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, models.NewNotFoundError("No posts found.")
	}
	return posts, nil
}

// ToggleLike reports whether the post is liked by userID afterwards.
func (s *PostService) ToggleLike(ctx context.Context, userID, postID uint) (bool, error) {
	liked, err := s.postRepo.ToggleLike(ctx, postID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, models.NewNotFoundError("Post not found.")
		}
		return false, err
	}
	if liked {
		observability.SocialActions.WithLabelValues("like").Inc()
	} else {
		observability.SocialActions.WithLabelValues("unlike").Inc()
	}
	return liked, nil
}

func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	if err := s.postRepo.DeleteOwned(ctx, postID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.NewNotFoundError("Post not found or unauthorized user.")
		}
		return err
	}
	return nil
}
