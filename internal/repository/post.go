package repository

import (
	"context"
	"errors"

	"socialhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines persistence operations for posts, likes and comments.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]*models.Post, error)
	ListByOwners(ctx context.Context, ownerIDs []uint) ([]*models.Post, error)
	// Mutate loads the post under a row lock, applies fn and saves the result.
	// An error from fn aborts without writing.
	Mutate(ctx context.Context, id uint, fn func(post *models.Post) error) (*models.Post, error)
	DeleteOwned(ctx context.Context, id, ownerID uint) error
	ToggleLike(ctx context.Context, postID, userID uint) (bool, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	post.Likes = []uint{}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	if err := loadLikes(r.db.WithContext(ctx), &post); err != nil {
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) ListByOwner(ctx context.Context, ownerID uint) ([]*models.Post, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("owner_id = ?", ownerID))
}

func (r *postRepository) ListByOwners(ctx context.Context, ownerIDs []uint) ([]*models.Post, error) {
	if len(ownerIDs) == 0 {
		return []*models.Post{}, nil
	}
	return r.list(ctx, r.db.WithContext(ctx).Where("owner_id IN ?", ownerIDs))
}

func (r *postRepository) list(ctx context.Context, q *gorm.DB) ([]*models.Post, error) {
	posts := []*models.Post{}
	if err := q.Order("created_at DESC, id DESC").Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := loadLikes(r.db.WithContext(ctx), posts...); err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Mutate(ctx context.Context, id uint, fn func(post *models.Post) error) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if post.Comments == nil {
			post.Comments = []models.Comment{}
		}
		if err := fn(&post); err != nil {
			return err
		}
		if err := tx.Save(&post).Error; err != nil {
			return err
		}
		return loadLikes(tx, &post)
	})
	if err != nil {
		var appErr *models.AppError
		if errors.Is(err, ErrNotFound) || errors.As(err, &appErr) {
			return nil, err
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// DeleteOwned removes the post and its likes when ownerID owns it. It
// returns ErrNotFound when no such post belongs to ownerID.
func (r *postRepository) DeleteOwned(ctx context.Context, id, ownerID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("post_id = ?", id).Delete(&models.PostLike{}).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return models.NewInternalError(err)
	}
	return nil
}

// ToggleLike flips userID's like on postID and reports whether the post is
// liked afterwards. It returns ErrNotFound for an unknown post.
func (r *postRepository) ToggleLike(ctx context.Context, postID, userID uint) (bool, error) {
	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}

		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.PostLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			liked = false
			return nil
		}
		liked = true
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.PostLike{PostID: postID, UserID: userID}).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, err
		}
		return false, models.NewInternalError(err)
	}
	return liked, nil
}

// loadLikes fills Likes on each post in the order the likes were given.
func loadLikes(db *gorm.DB, posts ...*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(posts))
	byID := make(map[uint]*models.Post, len(posts))
	for _, p := range posts {
		p.Likes = []uint{}
		if p.Comments == nil {
			p.Comments = []models.Comment{}
		}
		ids = append(ids, p.ID)
		byID[p.ID] = p
	}

	var likes []models.PostLike
	if err := db.Where("post_id IN ?", ids).Order("created_at, user_id").Find(&likes).Error; err != nil {
		return err
	}
	for _, l := range likes {
		if p, ok := byID[l.PostID]; ok {
			p.Likes = append(p.Likes, l.UserID)
		}
	}
	return nil
}
