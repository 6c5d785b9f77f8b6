package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/pliu/huntlink/internal/auth"
	"github.com/pliu/huntlink/internal/handlers"
	"github.com/pliu/huntlink/internal/metrics"
	"github.com/pliu/huntlink/internal/middleware"
	"github.com/pliu/huntlink/internal/store/sqlstore"
	"github.com/pliu/huntlink/internal/ws"
)

var (
	addr       = flag.String("addr", ":8080", "http service address")
	dbDriver   = flag.String("db-driver", "sqlite3", "database driver (sqlite3 or postgres)")
	dsn        = flag.String("dsn", "huntlink.db", "database connection string")
	sessionTTL = flag.Duration("session-ttl", 5*time.Minute, "demote sessions not pinged within this window")
	tokenTTL   = flag.Duration("token-ttl", 7*24*time.Hour, "lifetime of issued auth tokens")
)

var startTime = time.Now()

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	store, err := sqlstore.New(*dbDriver, *dsn)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize store")
	}
	defer store.Close()
	log.WithFields(logrus.Fields{"driver": *dbDriver, "dsn": *dsn}).Info("store initialized")

	tokens := auth.NewManager(getEnv("JWT_SECRET", "change-me-in-production"), *tokenTTL)

	hub := ws.NewHub(store, log)
	go hub.Run()

	// Periodic sweep: demote sessions whose last_ping has gone stale, so a
	// connection that vanished without a leave does not stay "active" forever.
	sweeper := cron.New()
	sweeper.AddFunc("@every 1m", func() {
		n, err := store.SweepStaleSessions(*sessionTTL)
		if err != nil {
			log.WithError(err).Error("stale session sweep failed")
			return
		}
		if n > 0 {
			metrics.StaleSessionsSwept.Add(float64(n))
			log.WithField("count", n).Info("swept stale sessions")
		}
	})
	sweeper.Start()
	defer sweeper.Stop()

	authHandler := &handlers.AuthHandler{Store: store, Tokens: tokens}
	groupHandler := &handlers.GroupHandler{Store: store}
	requireAuth := middleware.Auth(tokens)

	r := mux.NewRouter()
	r.Use(loggingMiddleware(log))

	// API endpoints
	r.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.Handle("/api/auth/profile", requireAuth(http.HandlerFunc(authHandler.Profile))).Methods("GET")
	r.Handle("/api/groups", requireAuth(http.HandlerFunc(groupHandler.CreateGroup))).Methods("POST")
	r.Handle("/api/groups", requireAuth(http.HandlerFunc(groupHandler.GetGroups))).Methods("GET")
	r.Handle("/api/groups/{id}/members", requireAuth(http.HandlerFunc(groupHandler.AddMember))).Methods("POST")
	r.Handle("/api/groups/{id}/members", requireAuth(http.HandlerFunc(groupHandler.LeaveGroup))).Methods("DELETE")
	r.Handle("/api/groups/{id}/members", requireAuth(http.HandlerFunc(groupHandler.GetGroupMembers))).Methods("GET")
	r.Handle("/api/groups/{id}/messages", requireAuth(http.HandlerFunc(groupHandler.GetGroupMessages))).Methods("GET")

	// WebSocket endpoint. The token is verified once at upgrade; the user id
	// it yields is the identity trusted for the life of the connection.
	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		claims, err := tokens.Verify(token)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ws.ServeWs(hub, w, r, claims.UserID)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "OK",
			"timestamp": time.Now().UTC(),
			"uptime":    time.Since(startTime).String(),
		})
	})

	log.WithField("addr", *addr).Info("starting server")
	log.Fatal(http.ListenAndServe(*addr, r))
}

func loggingMiddleware(log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start).String(),
			}).Debug("request")
		})
	}
}
