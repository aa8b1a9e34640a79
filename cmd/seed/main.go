// Command seed fills a SQL entity store with demo data or a YAML fixture.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"collabnexus/internal/cache"
	"collabnexus/internal/config"
	"collabnexus/internal/database"
	"collabnexus/internal/repository"
	"collabnexus/internal/seed"
)

func main() {
	numUsers := flag.Int("users", seed.DefaultOptions.Users, "Number of users to create")
	numProjects := flag.Int("projects", seed.DefaultOptions.Projects, "Number of projects to create")
	numTasks := flag.Int("tasks", seed.DefaultOptions.TasksPerProject, "Tasks per project")
	randSeed := flag.Int64("seed", time.Now().UnixNano(), "Random seed for generated data")
	fixture := flag.String("fixture", "", "YAML fixture to load instead of generated data")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.StoreDriver == config.DriverMemory {
		log.Fatalf("STORE_DRIVER is %q; seeding an in-memory store from a separate process has no effect. Use SEED_DEMO_DATA or SEED_FILE on the server instead.", cfg.StoreDriver)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	store := repository.NewGormStore(db, cache.Connect(ctx, cfg.RedisURL))
	defer func() { _ = store.Close() }()

	var sum *seed.Summary
	if *fixture != "" {
		log.Printf("Loading fixture %s", *fixture)
		sum, err = seed.LoadFile(ctx, store, *fixture)
	} else {
		log.Printf("Target: %d users, %d projects, %d tasks per project", *numUsers, *numProjects, *numTasks)
		sum, err = seed.Demo(ctx, store, seed.Options{
			Users:           *numUsers,
			Projects:        *numProjects,
			TasksPerProject: *numTasks,
			Seed:            *randSeed,
		})
	}
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(sum)
}
