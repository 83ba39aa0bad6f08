package api

// ListProcessorsForgeRequest is empty. GET /processors has no parameters.
type ListProcessorsForgeRequest struct{}

// ListProcessorsForgeResponse unwraps to the bare processor list, matching
// the net/http handler.
type ListProcessorsForgeResponse struct {
	Processors []ProcessorInfo `json:"processors" body:""`
}

// HealthForgeRequest is empty. GET /healthz has no parameters.
type HealthForgeRequest struct{}
