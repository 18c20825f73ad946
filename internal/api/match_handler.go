package api

import (
	"net/http"
	"strconv"

	"PenaltyHub/internal/model"
	"PenaltyHub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// MatchHandler 比赛接口
type MatchHandler struct {
	matchService *service.MatchService
	logger       *logrus.Logger
}

// NewMatchHandler 创建 MatchHandler
func NewMatchHandler(matchService *service.MatchService, logger *logrus.Logger) *MatchHandler {
	return &MatchHandler{matchService: matchService, logger: logger}
}

// CreateMatch 创建比赛
// POST /matches
func (h *MatchHandler) CreateMatch(c *gin.Context) {
	var req service.CreateMatchRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.matchService.CreateMatch(c.Request.Context(), &req)
	if err != nil {
		writeError(c, h.logger, "CreateMatch", err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// GetMatch 比赛详情
// GET /matches/:match_id
func (h *MatchHandler) GetMatch(c *gin.Context) {
	m, err := h.matchService.GetMatch(c.Request.Context(), c.Param("match_id"))
	if err != nil {
		writeError(c, h.logger, "GetMatch", err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// ListMatches 比赛列表
// GET /matches?status=live&limit=20
func (h *MatchHandler) ListMatches(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	seq, err := h.matchService.ListMatches(c.Request.Context(), model.MatchStatus(c.Query("status")), limit)
	if err != nil {
		writeError(c, h.logger, "ListMatches", err)
		return
	}
	matches := make([]*model.Match, 0)
	for m, err := range seq {
		if err != nil {
			writeError(c, h.logger, "ListMatches", err)
			return
		}
		matches = append(matches, m)
	}
	c.JSON(http.StatusOK, matches)
}

// UpdateScore 更新比分，可选更新状态与结束时间
// PUT /matches/:match_id/score
func (h *MatchHandler) UpdateScore(c *gin.Context) {
	var req service.UpdateScoreRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.matchService.UpdateScoreAndStatus(c.Request.Context(), c.Param("match_id"), &req)
	if err != nil {
		writeError(c, h.logger, "UpdateScoreAndStatus", err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// GetStats 比赛统计
// GET /matches/:match_id/stats
func (h *MatchHandler) GetStats(c *gin.Context) {
	st, err := h.matchService.GetMatchStats(c.Request.Context(), c.Param("match_id"))
	if err != nil {
		writeError(c, h.logger, "GetMatchStats", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// UpdateStats 更新聚合统计
// PUT /matches/:match_id/stats
func (h *MatchHandler) UpdateStats(c *gin.Context) {
	var req service.UpdateMatchStatsRequest
	if !bindJSON(c, &req) {
		return
	}
	st, err := h.matchService.UpdateMatchStats(c.Request.Context(), c.Param("match_id"), &req)
	if err != nil {
		writeError(c, h.logger, "UpdateMatchStats", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// AppendEvent 追加比赛事件，请求体为任意 JSON 对象
// POST /matches/:match_id/events
func (h *MatchHandler) AppendEvent(c *gin.Context) {
	var event model.MatchEvent
	if !bindJSON(c, &event) {
		return
	}
	st, err := h.matchService.AppendMatchEvent(c.Request.Context(), c.Param("match_id"), event)
	if err != nil {
		writeError(c, h.logger, "AppendMatchEvent", err)
		return
	}
	c.JSON(http.StatusOK, st)
}
