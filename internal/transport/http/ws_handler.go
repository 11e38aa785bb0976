package http

import (
	"net/http"

	"exam-scoring-service/internal/app"
	"exam-scoring-service/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WSHandler streams live cohort results of an exam.
type WSHandler struct {
	service  *app.ExamService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.ExamService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades the request and pushes a "results" message every time the
// leaderboard changes. Clients only read; anything they send is ignored.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	examID := r.PathValue("examID")
	if examID == "" {
		http.Error(w, "missing examID", http.StatusBadRequest)
		return
	}

	updates, cancel, err := h.service.SubscribeResults(r.Context(), examID)
	if err != nil {
		writeError(w, err)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(outboundMessage[string]{Type: "subscribed", Payload: examID}); err != nil {
		return
	}
	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(outboundMessage[domain.CohortResults]{Type: "results", Payload: update}); err != nil {
				log.Warn().Err(err).Str("exam_id", examID).Msg("ws write error")
				return
			}
		case <-closed:
			return
		}
	}
}
