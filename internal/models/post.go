package models

import "time"

// Placeholder image metadata attached to every new post until uploads exist.
const (
	StubImagePublicID = "image-publicId"
	StubImageURL      = "image-url"
)

// Post is a piece of user content with its likes and comments.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   uint      `gorm:"not null;index" json:"owner"`
	Caption   string    `gorm:"type:text" json:"caption"`
	Image     Image     `gorm:"embedded;embeddedPrefix:image_" json:"image"`
	Comments  []Comment `gorm:"type:text;serializer:json" json:"comments"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Likes lists the ids of users who liked the post, filled from post_likes.
	Likes []uint `gorm:"-" json:"likes"`
}

// Comment is an entry in a post's ordered comment list. ID is stable across
// edits so the author can address it later.
type Comment struct {
	ID        string    `json:"id"`
	UserID    uint      `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FindComment returns the index of the comment with the given id, or -1.
func (p *Post) FindComment(commentID string) int {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			return i
		}
	}
	return -1
}

// HasLike reports whether userID is in the post's like list.
func (p *Post) HasLike(userID uint) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// PostLike records that UserID liked PostID. The composite key keeps a user
// from liking the same post twice.
type PostLike struct {
	PostID    uint      `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// All returns every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Follow{},
		&Post{},
		&PostLike{},
	}
}
