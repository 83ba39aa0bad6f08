package api

import (
	"net/http"

	"github.com/xraph/scribe"
	"github.com/xraph/scribe/event"
	"github.com/xraph/scribe/processor"
)

// ProcessorInfo describes a registered processor.
type ProcessorInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MatchResponse is the dry-run result for an envelope.
type MatchResponse struct {
	EventID    string          `json:"eventId"`
	EventType  string          `json:"eventType"`
	ObjectType string          `json:"objectType"`
	Matched    []ProcessorInfo `json:"matched"`
}

// HealthResponse reports service health.
type HealthResponse struct {
	Status     string `json:"status"`
	Processors int    `json:"processors"`
	Error      string `json:"error,omitempty"`
}

func listProcessors(s *scribe.Scribe) []ProcessorInfo {
	out := make([]ProcessorInfo, 0, s.Registry().Len())
	s.Registry().Each(func(p processor.Processor) bool {
		out = append(out, ProcessorInfo{ID: p.ID, Name: p.Name})
		return true
	})
	return out
}

func matchEvent(s *scribe.Scribe, evt *event.Envelope) MatchResponse {
	resp := MatchResponse{
		EventID:    evt.ID,
		EventType:  string(evt.Type),
		ObjectType: string(evt.Entity.Kind),
		Matched:    []ProcessorInfo{},
	}
	for _, p := range s.Match(evt) {
		resp.Matched = append(resp.Matched, ProcessorInfo{ID: p.ID, Name: p.Name})
	}
	return resp
}

func (h *Handler) listProcessors(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, listProcessors(h.scribe))
}

func (h *Handler) matchEvent(w http.ResponseWriter, r *http.Request) {
	evt, err := h.decodeEnvelope(r)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, matchEvent(h.scribe, evt))
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Processors: h.scribe.Registry().Len()}
	if err := h.scribe.Ping(r.Context()); err != nil {
		resp.Status = "degraded"
		resp.Error = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
