package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

type askRequest struct {
	Question string `json:"question"`
}

type statusEvent struct {
	Message string `json:"message"`
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	s.writeText(w, http.StatusOK, "ok\n")
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.Resolver.Available() {
		s.log.Debug("readyz: store not available")
		s.writeText(w, http.StatusServiceUnavailable, "store not available\n")
		return
	}
	s.writeText(w, http.StatusOK, "ok\n")
}

func (s *Server) clearCache(w http.ResponseWriter, r *http.Request) {
	s.cfg.Resolver.ClearCache()
	s.log.Info("server: analytics cache cleared")
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "Cache cleared."})
}

func (s *Server) ask(w http.ResponseWriter, r *http.Request) {
	question, err := s.decodeQuestion(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeJSON(w, http.StatusOK, s.answer(r.Context(), question, func(string) {}))
}

// askStream answers over server-sent events: status events for each stage, one message event
// with the answer, then a done event.
func (s *Server) askStream(w http.ResponseWriter, r *http.Request) {
	question, err := s.decodeQuestion(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	sendEvent := func(eventType string, data any) {
		jsonData, err := json.Marshal(data)
		if err != nil {
			s.log.Error("server: failed to marshal SSE event data", "eventType", eventType, "error", err)
			return
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, jsonData)
		flusher.Flush()
	}

	answer := s.answer(r.Context(), question, func(msg string) {
		sendEvent("status", statusEvent{Message: msg})
	})
	sendEvent("message", answer)
	sendEvent("done", struct{}{})
}

func (s *Server) decodeQuestion(w http.ResponseWriter, r *http.Request) (string, error) {
	var req askRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		return "", errors.New("invalid request body")
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return "", errors.New("question is required")
	}
	if utf8.RuneCountInString(question) > s.cfg.MaxQuestionLength {
		return "", fmt.Errorf("question is longer than %d characters", s.cfg.MaxQuestionLength)
	}
	return question, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("server: failed to write response", "error", err)
	}
}

func (s *Server) writeText(w http.ResponseWriter, status int, body string) {
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		s.log.Error("server: failed to write response", "error", err)
	}
}
