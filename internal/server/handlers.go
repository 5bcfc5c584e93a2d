package server

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ryym/uni/engine"
	"github.com/ryym/uni/internal/store"
)

const defaultHandSize = 7

type gameResponse struct {
	Config *engine.Config `json:"config"`
	State  *engine.State  `json:"state"`
}

// handleInitGame shuffles a fresh deck, deals the game and stores it
// atomically. The caller must be one of the seated players.
func (s *Server) handleInitGame(w http.ResponseWriter, r *http.Request, player string) {
	roomID := r.PathValue("room")
	var req struct {
		PlayerUIDs []string `json:"playerUids"`
		HandSize   int      `json:"handSize"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.HandSize == 0 {
		req.HandSize = defaultHandSize
	}
	seated := false
	for _, id := range req.PlayerUIDs {
		if id == player {
			seated = true
			break
		}
	}
	if !seated {
		writeError(w, http.StatusForbidden, "caller is not one of the players")
		return
	}

	salt := engine.NewSalt()
	deck := engine.BuildDeck()
	engine.ShuffleDeck(deck, s.rand)
	cfg, st, err := engine.NewGame(deck, engine.InitOptions{
		PlayerIDs: req.PlayerUIDs,
		HandSize:  req.HandSize,
		Salt:      salt,
		Rand:      s.rand,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	obf, err := engine.NewObfuscator(salt)
	if err != nil {
		// NewGame already verified the salt, so this cannot happen.
		s.log.WithError(err).Error("rebuilding obfuscator")
		writeError(w, http.StatusInternalServerError, "failed to initialize game")
		return
	}

	if err := s.store.CreateGame(r.Context(), roomID, cfg, st, obf.RevealTable()); err != nil {
		writeError(w, storeErrorStatus(err), err.Error())
		return
	}
	if err := s.channel.PublishSnapshot(r.Context(), roomID, store.Snapshot{State: st}); err != nil {
		s.log.WithField("room", roomID).WithError(err).Error("publishing initial snapshot")
	}
	s.log.WithFields(logrus.Fields{"room": roomID, "players": len(req.PlayerUIDs)}).
		Info("game initialized")
	writeJSON(w, http.StatusCreated, gameResponse{Config: cfg, State: st})
}

func (s *Server) handleLoadGame(w http.ResponseWriter, r *http.Request, player string) {
	roomID := r.PathValue("room")
	cfg, st, err := s.store.LoadGame(r.Context(), roomID)
	if err != nil {
		writeError(w, storeErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, gameResponse{Config: cfg, State: st})
}

// handleWriteState accepts a client-computed next state. The store only
// commits it when the authenticated player is the current player of the
// state being replaced; other clients verify it by replay on their side.
func (s *Server) handleWriteState(w http.ResponseWriter, r *http.Request, player string) {
	roomID := r.PathValue("room")
	var st engine.State
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		writeError(w, http.StatusBadRequest, "invalid state body")
		return
	}

	if err := s.store.WriteState(r.Context(), roomID, player, &st); err != nil {
		writeError(w, storeErrorStatus(err), err.Error())
		return
	}
	if err := s.channel.PublishSnapshot(r.Context(), roomID, store.Snapshot{State: &st}); err != nil {
		s.log.WithField("room", roomID).WithError(err).Error("publishing snapshot")
	}
	s.log.WithFields(logrus.Fields{"room": roomID, "player": player, "turn": st.Turn}).
		Info("state written")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request, player string) {
	roomID := r.PathValue("room")
	var req struct {
		Tokens []string `json:"tokens"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cards, err := s.store.Reveal(r.Context(), roomID, player, req.Tokens)
	if err != nil {
		writeError(w, storeErrorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cards": cards})
}

func (s *Server) handleCancelGame(w http.ResponseWriter, r *http.Request, player string) {
	roomID := r.PathValue("room")
	if err := s.store.CancelGame(r.Context(), roomID); err != nil {
		writeError(w, storeErrorStatus(err), err.Error())
		return
	}
	if err := s.channel.PublishRemoval(r.Context(), roomID); err != nil {
		s.log.WithField("room", roomID).WithError(err).Error("publishing removal")
	}
	s.log.WithFields(logrus.Fields{"room": roomID, "player": player}).Info("game cancelled")
	w.WriteHeader(http.StatusNoContent)
}
