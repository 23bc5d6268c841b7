package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"shipment-risk-service/internal/adapters/cache"
	"shipment-risk-service/internal/adapters/repositories"
	"shipment-risk-service/internal/adapters/weather"
	"shipment-risk-service/internal/api"
	"shipment-risk-service/internal/config"
	"shipment-risk-service/internal/ports"
	"shipment-risk-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (SQLite, OpenWeatherMap, the result cache)
// behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	dbPath := config.Get("DB_PATH", "data/risk.db")
	seedPath := config.Get("SEED_PATH", "data/seeds/packages.json")
	port := config.Get("PORT", "8080")

	db, err := openDB(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	// Initialize schema and seed reference + demo data on startup for local runs.
	if err := initAndSeed(db, seedPath); err != nil {
		log.Fatal(err)
	}

	store := repositories.NewSqliteHistoricalStore(db)
	repo := repositories.NewSqliteShipmentRepository(db)

	provider := newWeatherProvider()
	assessmentCache := newAssessmentCache()

	engine := services.NewEngine(store, provider, assessmentCache)
	router := api.NewRouter(repo, store, engine)

	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// newWeatherProvider selects the live OpenWeatherMap provider when an
// API key is configured, the fixed demo provider otherwise.
func newWeatherProvider() ports.WeatherProvider {
	apiKey := strings.TrimSpace(os.Getenv("OPENWEATHER_API_KEY"))
	if apiKey == "" {
		log.Println("OPENWEATHER_API_KEY not set, using demo weather data")
		return weather.NewMockWeatherProvider(weather.DemoWeatherRisks())
	}

	provider, err := weather.NewOWMWeatherProvider(apiKey)
	if err != nil {
		log.Fatal(err)
	}
	return provider
}

// newAssessmentCache uses Redis when REDIS_ADDR is configured so
// multiple instances share memoized assessments; single-instance runs
// keep the in-process cache.
func newAssessmentCache() ports.AssessmentCache {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return cache.NewMemoryAssessmentCache(cache.DefaultTTL, cache.DefaultMaxEntries)
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	log.Printf("Using redis assessment cache addr=%s", addr)
	return cache.NewRedisAssessmentCache(client, cache.DefaultTTL)
}

func openDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return db, nil
}

func initAndSeed(db *sql.DB, seedPath string) error {
	if err := repositories.InitSchema(db); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if err := repositories.SeedReferenceData(db); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if err := repositories.SeedShipmentsFromJSON(db, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}
