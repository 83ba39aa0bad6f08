package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/xraph/forge"

	"github.com/xraph/scribe"
	"github.com/xraph/scribe/event"
)

// ForgeAPI registers the Scribe admin routes on a Forge router.
type ForgeAPI struct {
	scribe   *scribe.Scribe
	basePath string
	log      forge.Logger
}

// NewForgeAPI creates a ForgeAPI for s with routes under basePath.
func NewForgeAPI(s *scribe.Scribe, basePath string, log forge.Logger) *ForgeAPI {
	if basePath == "" {
		basePath = DefaultBasePath
	}
	return &ForgeAPI{scribe: s, basePath: "/" + strings.Trim(basePath, "/"), log: log}
}

// Handler returns a standalone http.Handler with the admin routes.
func (a *ForgeAPI) Handler() http.Handler {
	router := forge.NewRouter()
	a.RegisterRoutes(router)
	return router.Handler()
}

// RegisterRoutes registers all admin routes into the given Forge router with
// full OpenAPI metadata. The webhook route is served by Handler because
// signature verification needs the unmodified request body.
func (a *ForgeAPI) RegisterRoutes(router forge.Router) {
	a.registerProcessorRoutes(router)
	a.registerHealthRoutes(router)
}

// ---------------------------------------------------------------------------
// Processor routes
// ---------------------------------------------------------------------------

func (a *ForgeAPI) registerProcessorRoutes(router forge.Router) {
	g := router.Group(a.basePath, forge.WithGroupTags("processors"))

	if err := g.GET("/processors", a.listProcessors,
		forge.WithSummary("List processors"),
		forge.WithDescription("Returns the registered processors in registry order."),
		forge.WithOperationID("listProcessors"),
		forge.WithRequestSchema(ListProcessorsForgeRequest{}),
		forge.WithListResponse(ProcessorInfo{}, http.StatusOK),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register listProcessors route", forge.Error(err))
	}

	if err := g.POST("/match", a.matchEvent,
		forge.WithSummary("Dry-run match"),
		forge.WithDescription("Decodes an event envelope and returns the processors that would run, without running them."),
		forge.WithOperationID("matchEvent"),
		forge.WithResponseSchema(http.StatusOK, "Matched processors", MatchResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register matchEvent route", forge.Error(err))
	}
}

func (a *ForgeAPI) listProcessors(_ forge.Context, _ *ListProcessorsForgeRequest) (*ListProcessorsForgeResponse, error) {
	return &ListProcessorsForgeResponse{Processors: listProcessors(a.scribe)}, nil
}

func (a *ForgeAPI) matchEvent(ctx forge.Context) error {
	var raw json.RawMessage
	if err := ctx.Bind(&raw); err != nil {
		return mapError(scribe.ErrInvalidPayload)
	}

	evt, err := event.Decode(raw)
	if err != nil {
		return mapError(err)
	}
	return ctx.JSON(http.StatusOK, matchEvent(a.scribe, evt))
}

// ---------------------------------------------------------------------------
// Health routes
// ---------------------------------------------------------------------------

func (a *ForgeAPI) registerHealthRoutes(router forge.Router) {
	g := router.Group(a.basePath, forge.WithGroupTags("health"))

	if err := g.GET("/healthz", a.health,
		forge.WithSummary("Health check"),
		forge.WithDescription("Reports registry size and replay guard connectivity."),
		forge.WithOperationID("health"),
		forge.WithResponseSchema(http.StatusOK, "Service health", HealthResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		a.log.Error("Failed to register health route", forge.Error(err))
	}
}

func (a *ForgeAPI) health(ctx forge.Context, _ *HealthForgeRequest) (*HealthResponse, error) {
	if err := a.scribe.Ping(ctx.Context()); err != nil {
		return nil, forge.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	return &HealthResponse{Status: "ok", Processors: a.scribe.Registry().Len()}, nil
}
