// Package seed populates a development database with verified users, a follow
// graph and posts carrying likes and comments.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"socialhub/internal/middleware"
	"socialhub/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	// FollowRatio is the chance that any one user follows any other.
	FollowRatio float64
	// Seed fixes the random source; zero picks one from the clock.
	Seed int64
}

// Result summarizes what a run created.
type Result struct {
	Users    int
	Follows  int
	Posts    int
	Likes    int
	Comments int
}

// Seeder writes fixture data through a gorm handle.
type Seeder struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewSeeder returns a Seeder bound to db.
func NewSeeder(db *gorm.DB, seed int64) *Seeder {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)
	//nolint:gosec // Weak random number generator is fine for seeding
	return &Seeder{db: db, rng: rand.New(rand.NewSource(seed))}
}

// Run executes a full seeding pass described by opts.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	log := middleware.Logger
	if opts.ShouldClean {
		if err := s.ClearAll(ctx); err != nil {
			return nil, err
		}
		log.Info("existing data cleared")
	}

	res := &Result{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users, err := s.createUsers(tx, opts.NumUsers)
		if err != nil {
			return fmt.Errorf("create users: %w", err)
		}
		res.Users = len(users)

		res.Follows, err = s.createFollows(tx, users, opts.FollowRatio)
		if err != nil {
			return fmt.Errorf("create follows: %w", err)
		}

		res.Posts, res.Likes, res.Comments, err = s.createPosts(tx, users, opts.NumPosts)
		if err != nil {
			return fmt.Errorf("create posts: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("database seeded",
		zap.Int("users", res.Users),
		zap.Int("follows", res.Follows),
		zap.Int("posts", res.Posts),
		zap.Int("likes", res.Likes),
		zap.Int("comments", res.Comments),
	)
	return res, nil
}

// ClearAll removes every row the service owns, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, m := range []interface{}{&models.PostLike{}, &models.Post{}, &models.Follow{}, &models.User{}} {
			if err := all.Delete(m).Error; err != nil {
				return fmt.Errorf("clear %T: %w", m, err)
			}
		}
		return nil
	})
}

func (s *Seeder) createUsers(tx *gorm.DB, n int) ([]*models.User, error) {
	if n <= 0 {
		return nil, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	genders := []models.Gender{models.GenderMale, models.GenderFemale, models.GenderOthers}
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		birth := gofakeit.DateRange(
			time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2006, 1, 1, 0, 0, 0, 0, time.UTC),
		)
		users = append(users, &models.User{
			FirstName: clip(gofakeit.FirstName(), 30),
			Surname:   clip(gofakeit.LastName(), 50),
			Email:     fmt.Sprintf("seed%d.%s@example.com", i+1, gofakeit.Username()),
			Password:  string(hash),
			Gender:    genders[s.rng.Intn(len(genders))],
			Birthdate: time.Date(birth.Year(), birth.Month(), birth.Day(), 0, 0, 0, 0, time.UTC),
			Verified:  true,
		})
	}
	if err := tx.CreateInBatches(users, 100).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Seeder) createFollows(tx *gorm.DB, users []*models.User, ratio float64) (int, error) {
	if ratio <= 0 {
		ratio = 0.2
	}
	var follows []models.Follow
	for _, a := range users {
		for _, b := range users {
			if a.ID != b.ID && s.rng.Float64() < ratio {
				follows = append(follows, models.Follow{FollowerID: a.ID, FollowingID: b.ID})
			}
		}
	}
	if len(follows) == 0 {
		return 0, nil
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(follows, 500).Error; err != nil {
		return 0, err
	}
	return len(follows), nil
}

func (s *Seeder) createPosts(tx *gorm.DB, users []*models.User, n int) (posts, likes, comments int, err error) {
	if len(users) == 0 || n <= 0 {
		return 0, 0, 0, nil
	}

	batch := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		owner := users[s.rng.Intn(len(users))]
		created := time.Now().Add(-time.Duration(s.rng.Intn(90*24*60)) * time.Minute)
		p := &models.Post{
			OwnerID:   owner.ID,
			Caption:   gofakeit.Sentence(8 + s.rng.Intn(12)),
			Image:     models.Image{PublicID: models.StubImagePublicID, URL: models.StubImageURL},
			CreatedAt: created,
			UpdatedAt: created,
		}
		for c := s.rng.Intn(4); c > 0; c-- {
			author := users[s.rng.Intn(len(users))]
			p.Comments = append(p.Comments, models.Comment{
				ID:        uuid.NewString(),
				UserID:    author.ID,
				Text:      gofakeit.Sentence(4 + s.rng.Intn(8)),
				CreatedAt: created,
				UpdatedAt: created,
			})
		}
		if p.Comments == nil {
			p.Comments = []models.Comment{}
		}
		comments += len(p.Comments)
		batch = append(batch, p)
	}
	if err := tx.CreateInBatches(batch, 100).Error; err != nil {
		return 0, 0, 0, err
	}

	var postLikes []models.PostLike
	for _, p := range batch {
		for _, u := range users {
			if s.rng.Float64() < 0.15 {
				postLikes = append(postLikes, models.PostLike{PostID: p.ID, UserID: u.ID})
			}
		}
	}
	if len(postLikes) > 0 {
		if err := tx.CreateInBatches(postLikes, 500).Error; err != nil {
			return 0, 0, 0, err
		}
	}
	return len(batch), len(postLikes), comments, nil
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
