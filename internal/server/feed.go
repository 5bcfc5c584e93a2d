package server

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus"
)

// handleFeed streams the room's snapshot events over a websocket. The
// client feeds each message into its reconciliation session.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request, player string) {
	roomID := r.PathValue("room")
	log := s.log.WithFields(logrus.Fields{"room": roomID, "player": player})

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket accept failed")
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	events, stop, err := s.channel.Subscribe(ctx, roomID)
	if err != nil {
		log.WithError(err).Error("subscribing to snapshot channel")
		conn.Close(websocket.StatusInternalError, "subscription failed")
		return
	}
	defer stop()

	log.Info("snapshot feed opened")
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}
			if err := wsjson.Write(ctx, conn, ev); err != nil {
				log.WithError(err).Debug("feed write failed, closing")
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
