// Package server exposes the store and the snapshot channel over HTTP: an
// initialization RPC, attributed state writes, scoped card reveals, game
// cancellation and a websocket snapshot feed.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ryym/uni/engine"
	"github.com/ryym/uni/internal/cache"
	"github.com/ryym/uni/internal/store"
)

// SnapshotChannel is the fanout the server publishes to and feeds
// websocket subscribers from. cache.Channel implements it.
type SnapshotChannel interface {
	PublishSnapshot(ctx context.Context, roomID string, snap store.Snapshot) error
	PublishRemoval(ctx context.Context, roomID string) error
	Subscribe(ctx context.Context, roomID string) (<-chan cache.Event, func(), error)
}

// Server wires the room endpoints together.
type Server struct {
	log     *logrus.Entry
	store   store.Store
	channel SnapshotChannel
	secret  []byte
	rand    engine.RandInt
}

func New(log *logrus.Entry, st store.Store, ch SnapshotChannel, secret []byte) *Server {
	return &Server{
		log:     log,
		store:   st,
		channel: ch,
		secret:  secret,
		rand:    rand.IntN,
	}
}

// Routes builds the HTTP mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("POST /rooms/{room}/game", s.authed(s.handleInitGame))
	mux.HandleFunc("GET /rooms/{room}/game", s.authed(s.handleLoadGame))
	mux.HandleFunc("PUT /rooms/{room}/state", s.authed(s.handleWriteState))
	mux.HandleFunc("POST /rooms/{room}/reveal", s.authed(s.handleReveal))
	mux.HandleFunc("DELETE /rooms/{room}/game", s.authed(s.handleCancelGame))
	mux.HandleFunc("GET /rooms/{room}/feed", s.authed(s.handleFeed))
	return mux
}

// authed wraps a handler with bearer-token authentication and passes the
// authenticated player id through.
func (s *Server) authed(next func(w http.ResponseWriter, r *http.Request, player string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := requestToken(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		player, err := VerifyToken(s.secret, token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r, player)
	}
}

// handleCreateSession issues an identity token for a player id. There is
// no account system; the token only pins which player later writes are
// attributed to.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerUID string `json:"playerUid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlayerUID == "" {
		writeError(w, http.StatusBadRequest, "playerUid required")
		return
	}
	token, err := IssueToken(s.secret, req.PlayerUID)
	if err != nil {
		s.log.WithError(err).Error("issuing token")
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// storeErrorStatus maps store sentinel errors to HTTP statuses.
func storeErrorStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNoGame):
		return http.StatusNotFound
	case errors.Is(err, store.ErrGameExists):
		return http.StatusConflict
	case errors.Is(err, store.ErrNotCurrentPlayer), errors.Is(err, store.ErrForeignToken):
		return http.StatusForbidden
	case errors.Is(err, store.ErrRevealBatchTooLarge):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
