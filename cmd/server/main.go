package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ignite/attribution-engine/internal/api"
	engine "github.com/ignite/attribution-engine/internal/attribution"
	"github.com/ignite/attribution-engine/internal/config"
	"github.com/ignite/attribution-engine/internal/repository/postgres"
	"github.com/ignite/attribution-engine/internal/service/attribution"
	"github.com/ignite/attribution-engine/internal/storage"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale/stub processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func extractHost(dsn string) string {
	at := strings.Index(dsn, "@")
	if at < 0 {
		return "(unknown)"
	}
	rest := dsn[at+1:]
	slash := strings.Index(rest, "/")
	if slash >= 0 {
		rest = rest[:slash]
	}
	return rest
}

func main() {
	log.Println("╔════════════════════════════════════════════════════════════╗")
	log.Println("║  Attribution Engine API Server                             ║")
	log.Println("║  B2B multi-factor attribution with channel analytics       ║")
	log.Println("╚════════════════════════════════════════════════════════════╝")

	// Load configuration
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	// Pre-flight check: verify the target port is available
	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", port)

	// Connect to PostgreSQL
	if cfg.Database.URL == "" {
		log.Fatal("No database configured: set database.url or DATABASE_URL")
	}
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime())

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		pingCancel()
		log.Fatalf("Database unreachable at %s: %v", extractHost(cfg.Database.URL), err)
	}
	pingCancel()
	log.Printf("Connected to PostgreSQL at %s", extractHost(cfg.Database.URL))

	// Optional Redis for rate limiting
	var redisClient *redis.Client
	var limiter *api.RateLimiter
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("[redis] ping failed (%v), rate limiting will fail open", err)
		} else {
			log.Printf("[redis] connected to %s", cfg.Redis.Addr)
		}
		cancel()
		limiter = api.NewRateLimiter(redisClient, cfg.Redis.RateLimit, cfg.Redis.RateWindow())
		log.Printf("Rate limiting enabled: %d requests per %s", cfg.Redis.RateLimit, cfg.Redis.RateWindow())
	} else {
		log.Println("Rate limiting disabled (no Redis configured)")
	}

	// Result sinks: Postgres always, S3 archive when configured
	sinks := []attribution.ResultWriter{postgres.NewResultRepo(db)}
	if cfg.Storage.S3Enabled {
		archiveCtx, archiveCancel := context.WithTimeout(context.Background(), 10*time.Second)
		archive, err := storage.NewS3ResultArchive(archiveCtx, cfg.Storage.S3Bucket,
			cfg.Storage.S3Region, cfg.Storage.AWSProfile)
		archiveCancel()
		if err != nil {
			log.Printf("[storage] S3 archive disabled: %v", err)
		} else {
			sinks = append(sinks, archive)
			log.Printf("[storage] archiving results to s3://%s", cfg.Storage.S3Bucket)
		}
	}
	writer := storage.NewFanoutWriter(sinks...)

	// Attribution engine and service
	eng := engine.NewEngine(cfg.Attribution.BuildTables())
	svc := attribution.NewService(postgres.NewAttributionRepo(db), writer, eng)

	handlers := api.NewHandlers(svc, api.NewHealthChecker(db, redisClient))
	server := api.NewServer(cfg.Server, handlers, limiter)

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Println("All services initialized — server is ready")

	<-done
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
