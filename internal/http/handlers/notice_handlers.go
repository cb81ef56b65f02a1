package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	defaultNoticeLimit = 20
	streamBuffer       = 16
)

// GetNoticesHandler godoc
// @Summary Recent notices
// @Description Newest first.
// @Tags notices
// @Produce json
// @Param limit query int false "Maximum number of notices (default 20)"
// @Success 200 {array} notice.Notice
// @Failure 400 {string} string "Invalid limit"
// @Failure 503 {string} string "Notice log not configured"
// @Router /notices [get]
func GetNoticesHandler(w http.ResponseWriter, r *http.Request) {
	if noticeLog == nil {
		http.Error(w, "notice log not configured", http.StatusServiceUnavailable)
		return
	}

	limit := defaultNoticeLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	list, err := noticeLog.Recent(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to read notices")
		http.Error(w, "failed to read notices", http.StatusInternalServerError)
		return
	}
	respond(w, http.StatusOK, list)
}

// StreamNoticesHandler godoc
// @Summary Live notices
// @Description Server-sent events, one "notice" event per notice.
// @Tags notices
// @Produce text/event-stream
// @Success 200 {string} string "Event stream"
// @Failure 503 {string} string "Streaming not available"
// @Router /notices/stream [get]
func StreamNoticesHandler(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if noticeHub == nil || !ok {
		http.Error(w, "streaming not available", http.StatusServiceUnavailable)
		return
	}

	sub := noticeHub.Subscribe(uuid.NewString(), streamBuffer)
	defer noticeHub.Unsubscribe(sub.ID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case n, open := <-sub.Notices:
			if !open {
				return
			}
			data, err := json.Marshal(n)
			if err != nil {
				log.Error().Err(err).Msg("failed to encode notice")
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %s\nevent: notice\ndata: %s\n\n", n.ID, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
