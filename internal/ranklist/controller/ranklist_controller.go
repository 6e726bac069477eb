package controller

import (
	"strconv"
	"strings"

	"rankview/internal/ranklist/model"
	"rankview/internal/ranklist/service"
	appErr "rankview/pkg/errors"
	"rankview/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

// RanklistController handles ranklist HTTP endpoints.
type RanklistController struct {
	ranklistService *service.RanklistService
	liveUpdater     *service.LiveUpdater
}

// NewRanklistController creates a new RanklistController. liveUpdater may be
// nil when the live pipeline is disabled.
func NewRanklistController(ranklistService *service.RanklistService, liveUpdater *service.LiveUpdater) *RanklistController {
	return &RanklistController{
		ranklistService: ranklistService,
		liveUpdater:     liveUpdater,
	}
}

// RegisterRoutes mounts the ranklist endpoints on a router group.
func (h *RanklistController) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/ranklists", h.List)
	group.GET("/ranklists/:key", h.Get)
	group.GET("/ranklists/:key/playback", h.GetPlayback)
	group.GET("/ranklists/:key/log", h.GetSolutionLog)
	group.GET("/ranklists/:key/live", h.GetLive)
}

// List handles snapshot listing.
func (h *RanklistController) List(c *gin.Context) {
	infos, err := h.ranklistService.ListSnapshots(c.Request.Context(), c.Query("prefix"))
	if err != nil {
		response.Error(c, err)
		return
	}
	items := make([]SnapshotItem, 0, len(infos))
	for _, info := range infos {
		items = append(items, SnapshotItem{Key: info.Key, SizeBytes: info.SizeBytes})
	}
	response.Success(c, ListSnapshotsResponse{Snapshots: items})
}

// Get handles static ranklist rendering.
func (h *RanklistController) Get(c *gin.Context) {
	static, err := h.ranklistService.GetStatic(c.Request.Context(), c.Param("key"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, static)
}

// GetPlayback handles playback rendering at a cutoff time. The cutoff comes
// in the "at" query parameter as "value,unit" (e.g. "90,min").
func (h *RanklistController) GetPlayback(c *gin.Context) {
	cutoff, err := parseCutoff(c.Query("at"))
	if err != nil {
		response.Error(c, err)
		return
	}
	static, err := h.ranklistService.GetPlayback(c.Request.Context(), c.Param("key"), cutoff)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, static)
}

// GetSolutionLog handles solution log queries.
func (h *RanklistController) GetSolutionLog(c *gin.Context) {
	events, err := h.ranklistService.GetSolutionLog(c.Request.Context(), c.Param("key"))
	if err != nil {
		response.Error(c, err)
		return
	}
	items := make([]SolutionLogItem, 0, len(events))
	for _, event := range events {
		items = append(items, SolutionLogItem{
			UserKey:      event.UserKey,
			ProblemIndex: event.ProblemIndex,
			Result:       event.Result,
			Time:         event.Time,
		})
	}
	response.Success(c, SolutionLogResponse{Events: items})
}

// GetLive handles live state queries.
func (h *RanklistController) GetLive(c *gin.Context) {
	if h.liveUpdater == nil {
		response.ErrorWithCode(c, appErr.LiveUpdateDisabled, "")
		return
	}
	static, err := h.liveUpdater.GetCurrent(c.Request.Context(), c.Param("key"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, static)
}

// parseCutoff parses a "value,unit" cutoff expression.
func parseCutoff(raw string) (model.TimeDuration, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return model.TimeDuration{}, appErr.New(appErr.InvalidCutoff).WithDetail("at", raw)
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || value < 0 {
		return model.TimeDuration{}, appErr.New(appErr.InvalidCutoff).WithDetail("at", raw)
	}
	unit := model.TimeUnit(strings.TrimSpace(parts[1]))
	if !unit.Valid() {
		return model.TimeDuration{}, appErr.New(appErr.InvalidCutoff).WithDetail("at", raw)
	}
	return model.TimeDuration{Value: value, Unit: unit}, nil
}

// SnapshotItem is one entry of a snapshot listing response.
type SnapshotItem struct {
	Key       string `json:"key"`
	SizeBytes int64  `json:"size_bytes"`
}

// ListSnapshotsResponse defines the snapshot listing payload.
type ListSnapshotsResponse struct {
	Snapshots []SnapshotItem `json:"snapshots"`
}

// SolutionLogItem is one solution log entry in wire form.
type SolutionLogItem struct {
	UserKey      string               `json:"userKey"`
	ProblemIndex int                  `json:"problemIndex"`
	Result       model.SolutionResult `json:"result"`
	Time         model.TimeDuration   `json:"time"`
}

// SolutionLogResponse defines the solution log payload.
type SolutionLogResponse struct {
	Events []SolutionLogItem `json:"events"`
}
