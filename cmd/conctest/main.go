// Command conctest hammers one event with concurrent like toggles and checks
// that every toggle landed and the counter still matches the liker list.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayushbhandari/event-tickets/internal/db"
	"github.com/ayushbhandari/event-tickets/internal/events"
	"github.com/ayushbhandari/event-tickets/internal/logger"
)

type toggler interface {
	ToggleLike(ctx context.Context, eventID, userID string) (*events.Event, error)
}

// simulateConcurrentLikes has totalUsers distinct users like the event at
// once, then has the first half unlike it again. Returns the number of
// failed toggles.
func simulateConcurrentLikes(ctx context.Context, repo toggler, eventID string, totalUsers int) int64 {
	users := make([]string, totalUsers)
	for i := range users {
		users[i] = primitive.NewObjectID().Hex()
	}

	var failed int64
	run := func(batch []string, verb string) {
		var wg sync.WaitGroup
		for i, userID := range batch {
			wg.Add(1)
			go func(n int, userID string) {
				defer wg.Done()
				if _, err := repo.ToggleLike(ctx, eventID, userID); err != nil {
					atomic.AddInt64(&failed, 1)
					fmt.Printf("  goroutine %02d  FAILED %-6s (%v)\n", n+1, verb, err)
				}
			}(i, userID)
		}
		wg.Wait()
	}

	run(users, "like")
	run(users[:totalUsers/2], "unlike")
	return failed
}

func main() {
	users := flag.Int("users", 50, "number of concurrent users")
	flag.Parse()

	logger.Init(os.Getenv("LOG_LEVEL"), "console")

	uri := os.Getenv("EVENT_API_MONGO_URI")
	if uri == "" {
		uri = "mongodb://127.0.0.1:27017"
	}

	ctx := context.Background()

	client, err := db.OpenMongo(ctx, uri, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("OpenMongo")
	}
	defer func() { _ = client.Disconnect(ctx) }()

	testDB := client.Database("conctest")
	defer func() { _ = testDB.Drop(ctx) }()
	repo := events.NewRepository(testDB)

	ev, err := repo.CreateEvent(ctx, &events.Event{
		Title:       "Like Toggle Stress Test",
		Description: "Concurrent likes from distinct users",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("CreateEvent")
	}

	fmt.Println("═══════════════════════════════════════════")
	fmt.Println("  Like Toggle — Concurrency Stress Test")
	fmt.Println("═══════════════════════════════════════════")
	fmt.Printf("Event ID : %s\n", ev.ID.Hex())
	fmt.Printf("Users    : %d\n\n", *users)

	start := time.Now()
	failed := simulateConcurrentLikes(ctx, repo, ev.ID.Hex(), *users)
	duration := time.Since(start)

	final, err := repo.GetEvent(ctx, ev.ID.Hex())
	if err != nil || final == nil {
		log.Fatal().Err(err).Msg("GetEvent")
	}

	want := *users - *users/2
	fmt.Println("Failed Toggles:", failed)
	fmt.Println("Time Taken:    ", duration)
	fmt.Printf("\nMongoDB final state  →  likes=%d  likedBy=%d  (expected %d)\n",
		final.Likes, len(final.LikedBy), want)

	if failed == 0 && final.Likes == want && len(final.LikedBy) == want {
		fmt.Println("\nPASS — every toggle applied, likes == len(likedBy)")
		return
	}
	fmt.Println("\nFAIL — lost or corrupted toggles")
	_ = testDB.Drop(ctx)
	_ = client.Disconnect(ctx)
	os.Exit(1)
}
