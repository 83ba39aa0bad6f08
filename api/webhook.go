package api

import (
	"net/http"
)

// VerificationResponse answers the subscription handshake.
type VerificationResponse struct {
	VerificationTokenReceived bool `json:"verification_token_received"`
}

// IgnoredResponse answers an event whose type is not recognized.
type IgnoredResponse struct {
	Ignored bool   `json:"ignored"`
	Type    string `json:"type,omitempty"`
}

func (h *Handler) receiveWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r, h.maxBody)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	rec, err := h.scribe.Receive(r.Context(), body, signatureHeader(r))
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.ErrorContext(r.Context(), "webhook failed", "error", err)
		} else {
			h.logger.WarnContext(r.Context(), "webhook rejected", "status", status, "error", err)
		}
		writeError(w, status, err.Error())
		return
	}

	switch {
	case rec.Verification:
		writeJSON(w, http.StatusOK, VerificationResponse{VerificationTokenReceived: true})
	case rec.Ignored:
		writeJSON(w, http.StatusAccepted, IgnoredResponse{Ignored: true, Type: rec.EventType})
	default:
		writeJSON(w, http.StatusOK, rec.Result)
	}
}
