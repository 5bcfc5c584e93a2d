// Command unid runs the uni game server: PostgreSQL-backed game store,
// redis snapshot fanout and the HTTP/websocket API in front of them.
package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ryym/uni/internal/cache"
	"github.com/ryym/uni/internal/database"
	"github.com/ryym/uni/internal/server"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("loading .env file")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	redisAddr := envOr("REDIS_ADDR", "localhost:6379")
	listenAddr := envOr("LISTEN_ADDR", ":8080")

	ctx := context.Background()

	pool, err := database.Connect(ctx, dsn)
	if err != nil {
		log.WithError(err).Fatal("connecting to database")
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.WithError(err).Fatal("preparing database schema")
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.WithError(err).Fatal("connecting to redis")
	}
	defer rdb.Close()

	entry := logrus.NewEntry(log)
	srv := server.New(
		entry,
		database.NewGameStore(pool),
		cache.NewChannel(rdb, entry),
		[]byte(secret),
	)

	log.WithField("addr", listenAddr).Info("unid listening")
	if err := http.ListenAndServe(listenAddr, srv.Routes()); err != nil {
		log.WithError(err).Fatal("http server stopped")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
