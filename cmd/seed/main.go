// Command main runs the database seeder for SocialHub.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"socialhub/internal/config"
	"socialhub/internal/database"
	"socialhub/internal/middleware"
	"socialhub/internal/seed"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	numUsers := pflag.IntP("users", "u", 50, "Number of users to create")
	numPosts := pflag.IntP("posts", "p", 200, "Number of posts to create")
	followRatio := pflag.Float64("follow-ratio", 0.2, "Chance that one user follows another")
	shouldClean := pflag.Bool("clean", true, "Clean database before seeding")
	randSeed := pflag.Int64("seed", 0, "Random seed (0 picks one from the clock)")
	pflag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		fmt.Fprintln(os.Stderr, "refusing to seed a production database")
		os.Exit(1)
	}

	logger, err := middleware.InitLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	res, err := seed.NewSeeder(db, *randSeed).Run(context.Background(), seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		ShouldClean: *shouldClean,
		FollowRatio: *followRatio,
	})
	if err != nil {
		logger.Fatal("seeding failed", zap.Error(err))
	}

	fmt.Printf("Seeded %d users, %d follows, %d posts, %d likes, %d comments.\n",
		res.Users, res.Follows, res.Posts, res.Likes, res.Comments)
	fmt.Printf("All seeded users have the password: %s\n", seed.DefaultPassword)
}
