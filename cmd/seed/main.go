// Command seed fills a development database with fake channels, videos and engagement.
package main

import (
	"context"
	"flag"
	"log"

	"vidtube/internal/bootstrap"
	"vidtube/internal/config"
	"vidtube/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	numUsers := flag.Int("users", defaults.Users, "Number of users to create")
	videosPerUser := flag.Int("videos", defaults.VideosPerUser, "Videos uploaded by each user")
	commentsPerUser := flag.Int("comments", defaults.CommentsPerUser, "Comments written by each user")
	tweetsPerUser := flag.Int("tweets", defaults.TweetsPerUser, "Tweets posted by each user")
	maxDays := flag.Int("days", defaults.MaxDays, "Spread createdAt over this many days")
	randSeed := flag.Int64("rand-seed", 0, "Fixed random seed for reproducible data (0 = clock)")
	fast := flag.Bool("fast", false, "Store plaintext passwords instead of bcrypt hashes")
	clean := flag.Bool("clean", defaults.Clean, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, rdb, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	log.Printf("Seeding %d users (%d videos, %d comments, %d tweets each), clean=%v",
		*numUsers, *videosPerUser, *commentsPerUser, *tweetsPerUser, *clean)

	ctx := context.Background()
	summary, err := seed.NewSeeder(db, seed.Options{
		Users:           *numUsers,
		VideosPerUser:   *videosPerUser,
		CommentsPerUser: *commentsPerUser,
		TweetsPerUser:   *tweetsPerUser,
		MaxDays:         *maxDays,
		RandSeed:        *randSeed,
		SkipBcrypt:      *fast,
		Clean:           *clean,
	}).Run(ctx)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	if err := bootstrap.EnsureDemoUser(cfg, db); err != nil {
		log.Fatalf("Failed to create demo user: %v", err)
	}

	// Cached channel profiles describe the data that was just replaced.
	if rdb != nil && *clean {
		if err := rdb.FlushDB(ctx).Err(); err != nil {
			log.Printf("Failed to flush cache: %v", err)
		}
	}

	log.Printf("Created %d users, %d videos, %d comments, %d likes, %d subscriptions, %d playlists, %d tweets",
		summary.Users, summary.Videos, summary.Comments, summary.Likes,
		summary.Subscriptions, summary.Playlists, summary.Tweets)
	if *fast {
		log.Println("Passwords are stored unhashed; these accounts cannot log in.")
	} else {
		log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
	}
}
