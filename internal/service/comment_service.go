package service

import (
	"context"
	"errors"
	"time"

	"socialhub/internal/models"
	"socialhub/internal/observability"
	"socialhub/internal/repository"
	"socialhub/internal/validation"

	"github.com/google/uuid"
)

const commentDenied = "Comment not found or unauthorized user."

type CommentService struct {
	postRepo repository.PostRepository
	now      func() time.Time
}

type CreateCommentInput struct {
	UserID uint
	PostID uint
	Text   string
}

type UpdateCommentInput struct {
	UserID    uint
	PostID    uint
	CommentID string
	Text      string
}

type DeleteCommentInput struct {
	UserID    uint
	PostID    uint
	CommentID string
}

func NewCommentService(postRepo repository.PostRepository) *CommentService {
	return &CommentService{postRepo: postRepo, now: time.Now}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	text, err := validation.NormalizeCommentText(in.Text)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	now := s.now().UTC()
	comment := models.Comment{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err = s.postRepo.Mutate(ctx, in.PostID, func(p *models.Post) error {
		p.Comments = append(p.Comments, comment)
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.NewNotFoundError("Post does not exist.")
		}
		return nil, err
	}
	observability.SocialActions.WithLabelValues("comment").Inc()
	return &comment, nil
}

// UpdateComment edits a comment's text. A missing comment and a comment by
// someone else fail identically.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) error {
	text, err := validation.NormalizeCommentText(in.Text)
	if err != nil {
		return models.NewValidationError(err.Error())
	}
	_, err = s.postRepo.Mutate(ctx, in.PostID, func(p *models.Post) error {
		i := p.FindComment(in.CommentID)
		if i < 0 || p.Comments[i].UserID != in.UserID {
			return models.NewNotFoundError(commentDenied)
		}
		p.Comments[i].Text = text
		p.Comments[i].UpdatedAt = s.now().UTC()
		return nil
	})
	return postNotFound(err)
}

func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) error {
	_, err := s.postRepo.Mutate(ctx, in.PostID, func(p *models.Post) error {
		i := p.FindComment(in.CommentID)
		if i < 0 || p.Comments[i].UserID != in.UserID {
			return models.NewNotFoundError(commentDenied)
		}
		p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
		return nil
	})
	return postNotFound(err)
}

func postNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return models.NewNotFoundError("Post not found.")
	}
	return err
}
