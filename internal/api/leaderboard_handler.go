package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/serious-game/internal/middleware"
	"github.com/wfunc/serious-game/internal/service"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// LeaderboardHandler 排行榜与碳足迹排行
type LeaderboardHandler struct {
	leaderboard service.LeaderboardService
	footprints  service.FootprintService
}

// NewLeaderboardHandler 创建排行榜处理器
func NewLeaderboardHandler(leaderboard service.LeaderboardService, footprints service.FootprintService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard, footprints: footprints}
}

// Leaderboard 平均综合分排行
// @Summary 排行榜
// @Tags Leaderboard
// @Produce json
// @Success 200 {array} scoring.Ranking
// @Router /api/v1/leaderboard [get]
func (h *LeaderboardHandler) Leaderboard(c *gin.Context) {
	rankings, err := h.leaderboard.Leaderboard(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	ok(c, rankings)
}

// Chart 排行榜柱状图
// @Summary 排行榜图表
// @Tags Leaderboard
// @Produce image/png
// @Router /api/v1/leaderboard/chart.png [get]
func (h *LeaderboardHandler) Chart(c *gin.Context) {
	png, err := h.leaderboard.Chart(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

// Export 导出 xlsx
// @Summary 导出排行榜
// @Tags Leaderboard
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router /api/v1/leaderboard/export.xlsx [get]
func (h *LeaderboardHandler) Export(c *gin.Context) {
	data, err := h.leaderboard.Workbook(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="leaderboard.xlsx"`)
	c.Data(http.StatusOK, mimeXLSX, data)
}

// Footprints 碳足迹升序排行
// @Summary 碳足迹排行
// @Tags Footprint
// @Produce json
// @Param order query string false "total 或 per_participant"
// @Success 200 {array} carbon.Entry
// @Router /api/v1/footprints [get]
func (h *LeaderboardHandler) Footprints(c *gin.Context) {
	order := service.FootprintOrder(c.DefaultQuery("order", string(service.OrderByTotal)))
	entries, err := h.footprints.Ranking(c.Request.Context(), order)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	ok(c, entries)
}
