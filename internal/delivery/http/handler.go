package http

import (
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/Conte777/MemberFlow/config"
	"github.com/Conte777/MemberFlow/internal/domain"
	"github.com/Conte777/MemberFlow/internal/participants"
	pkgerrors "github.com/Conte777/MemberFlow/pkg/errors"
	"github.com/Conte777/MemberFlow/pkg/httputil"
)

// memberDTO is the JSON shape of one enumerated member
type memberDTO struct {
	ID          int64  `json:"id"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name"`
	Bot         bool   `json:"bot,omitempty"`
	Role        string `json:"role,omitempty"`
	Rank        string `json:"rank,omitempty"`
}

// participantsResponse is the JSON body for a participant listing
type participantsResponse struct {
	EntityRef string      `json:"entity_ref"`
	Total     int         `json:"total"`
	Collected int         `json:"collected"`
	Members   []memberDTO `json:"members"`
}

// snapshotDTO is the JSON shape of one stored census snapshot
type snapshotDTO struct {
	ID         string    `json:"id"`
	EntityRef  string    `json:"entity_ref"`
	EntityKind string    `json:"entity_kind"`
	Total      int       `json:"total"`
	Collected  int       `json:"collected"`
	Aggressive bool      `json:"aggressive"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// ParticipantHandler handles participant listing and census HTTP requests
type ParticipantHandler struct {
	usecase         domain.CensusUseCase
	mapper          *pkgerrors.Mapper
	snapshotHistory int
	logger          zerolog.Logger
}

// NewParticipantHandler creates a participant handler
func NewParticipantHandler(usecase domain.CensusUseCase, censusCfg *config.CensusConfig, logger zerolog.Logger) *ParticipantHandler {
	history := 20
	if censusCfg != nil && censusCfg.SnapshotHistory > 0 {
		history = censusCfg.SnapshotHistory
	}
	return &ParticipantHandler{
		usecase:         usecase,
		mapper:          pkgerrors.NewMapper(logger),
		snapshotHistory: history,
		logger:          logger.With().Str("component", "participant_handler").Logger(),
	}
}

// ListParticipants handles GET /api/v1/entities/{ref}/participants
//
// Query parameters:
//   - limit: maximum members to return (default: all)
//   - search: name or username substring filter
//   - filter: structural filter kind (recent, admins, bots, banned, kicked, contacts)
//   - aggressive: enable letter sharding for very large channels
func (h *ParticipantHandler) ListParticipants(ctx *fasthttp.RequestCtx) {
	ref, ok := entityRef(ctx)
	if !ok {
		httputil.WriteErrorResponse(ctx, "entity reference is required", fasthttp.StatusBadRequest)
		return
	}

	opts, err := parseOptions(ctx)
	if err != nil {
		status, msg := h.mapper.MapErrorToHTTP(err)
		httputil.WriteErrorResponse(ctx, msg, status)
		return
	}

	list, err := h.usecase.ListParticipants(ctx, ref, opts)
	if err != nil {
		status, msg := h.mapper.MapErrorToHTTP(err)
		httputil.WriteErrorResponse(ctx, msg, status)
		return
	}

	httputil.WriteResponse(ctx, toParticipantsResponse(ref, list))
}

// RunCensus handles POST /api/v1/entities/{ref}/census
//
// Runs a full enumeration, stores a snapshot and publishes a completion
// event. Accepts the same query parameters as the listing endpoint.
func (h *ParticipantHandler) RunCensus(ctx *fasthttp.RequestCtx) {
	ref, ok := entityRef(ctx)
	if !ok {
		httputil.WriteErrorResponse(ctx, "entity reference is required", fasthttp.StatusBadRequest)
		return
	}

	opts, err := parseOptions(ctx)
	if err != nil {
		status, msg := h.mapper.MapErrorToHTTP(err)
		httputil.WriteErrorResponse(ctx, msg, status)
		return
	}

	result, err := h.usecase.RunCensus(ctx, ref, opts)
	if err != nil {
		status, msg := h.mapper.MapErrorToHTTP(err)
		httputil.WriteErrorResponse(ctx, msg, status)
		return
	}

	httputil.WriteResponseWithStatus(ctx, toSnapshotDTO(result.Snapshot), fasthttp.StatusCreated)
}

// ListSnapshots handles GET /api/v1/entities/{ref}/snapshots
func (h *ParticipantHandler) ListSnapshots(ctx *fasthttp.RequestCtx) {
	ref, ok := entityRef(ctx)
	if !ok {
		httputil.WriteErrorResponse(ctx, "entity reference is required", fasthttp.StatusBadRequest)
		return
	}

	limit := h.snapshotHistory
	if arg := string(ctx.QueryArgs().Peek("limit")); arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			httputil.WriteErrorResponse(ctx, "limit must be a non-negative integer", fasthttp.StatusBadRequest)
			return
		}
		if n > 0 && n < limit {
			limit = n
		}
	}

	snapshots, err := h.usecase.ListSnapshots(ctx, ref, limit)
	if err != nil {
		status, msg := h.mapper.MapErrorToHTTP(err)
		httputil.WriteErrorResponse(ctx, msg, status)
		return
	}

	dtos := make([]snapshotDTO, 0, len(snapshots))
	for _, s := range snapshots {
		dtos = append(dtos, toSnapshotDTO(s))
	}
	httputil.WriteResponse(ctx, dtos)
}

// entityRef extracts the path parameter
func entityRef(ctx *fasthttp.RequestCtx) (string, bool) {
	ref, ok := ctx.UserValue("ref").(string)
	if !ok || ref == "" {
		return "", false
	}
	return ref, true
}

// parseOptions builds enumeration options from query parameters
func parseOptions(ctx *fasthttp.RequestCtx) (participants.Options, error) {
	opts := participants.Options{
		Limit:  participants.NoLimit,
		Search: string(ctx.QueryArgs().Peek("search")),
	}

	if arg := string(ctx.QueryArgs().Peek("limit")); arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			return opts, pkgerrors.NewValidationError("limit must be a non-negative integer")
		}
		opts.Limit = n
	}

	if arg := string(ctx.QueryArgs().Peek("filter")); arg != "" {
		kind, err := participants.ParseFilterKind(arg)
		if err != nil {
			return opts, err
		}
		opts.FilterKind = kind
	}

	if arg := string(ctx.QueryArgs().Peek("aggressive")); arg != "" {
		b, err := strconv.ParseBool(arg)
		if err != nil {
			return opts, pkgerrors.NewValidationError("aggressive must be a boolean")
		}
		opts.Aggressive = b
	}

	return opts, nil
}

func toParticipantsResponse(ref string, list *participants.MemberList) participantsResponse {
	members := make([]memberDTO, 0, len(list.Members))
	for _, m := range list.Members {
		dto := memberDTO{
			ID:          m.UserID(),
			Username:    m.Username(),
			DisplayName: m.DisplayName(),
			Role:        m.Role(),
			Rank:        m.Rank(),
		}
		if m.User != nil {
			dto.Bot = m.User.Bot
		}
		members = append(members, dto)
	}
	return participantsResponse{
		EntityRef: ref,
		Total:     list.Total,
		Collected: len(members),
		Members:   members,
	}
}

func toSnapshotDTO(s domain.MemberSnapshot) snapshotDTO {
	return snapshotDTO{
		ID:         s.ID,
		EntityRef:  s.EntityRef,
		EntityKind: s.EntityKind,
		Total:      s.Total,
		Collected:  s.Collected,
		Aggressive: s.Aggressive,
		DurationMS: s.DurationMS,
		CreatedAt:  s.CreatedAt,
	}
}
