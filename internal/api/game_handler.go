package api

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/serious-game/internal/carbon"
	apperrors "github.com/wfunc/serious-game/internal/errors"
	"github.com/wfunc/serious-game/internal/middleware"
	"github.com/wfunc/serious-game/internal/models"
	"github.com/wfunc/serious-game/internal/service"
	"go.uber.org/zap"
)

// GameHandler 游戏相关接口
type GameHandler struct {
	games         service.GameService
	footprints    service.FootprintService
	maxUploadSize int64
	log           *zap.Logger
}

// NewGameHandler 创建游戏处理器
func NewGameHandler(games service.GameService, footprints service.FootprintService, maxUploadSize int64, log *zap.Logger) *GameHandler {
	return &GameHandler{
		games:         games,
		footprints:    footprints,
		maxUploadSize: maxUploadSize,
		log:           log,
	}
}

// createGameJSON 不带附件时可直接提交 JSON
type createGameJSON struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// scoreRequest 五项评分，每项 1-5
type scoreRequest struct {
	Substance    int `json:"substance"`
	Originality  int `json:"originality"`
	TeamCohesion int `json:"team_cohesion"`
	Aesthetics   int `json:"aesthetics"`
	Fun          int `json:"fun"`
}

// List 游戏列表
// @Summary 游戏列表
// @Tags Games
// @Produce json
// @Success 200 {array} models.Game
// @Router /api/v1/games [get]
func (h *GameHandler) List(c *gin.Context) {
	games, err := h.games.List(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	ok(c, games)
}

// Create 登记游戏，multipart 表单字段 name、description，可选文件 guide(pdf)、poster(jpg/png)
// @Summary 登记游戏
// @Tags Games
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "名称"
// @Param description formData string true "描述"
// @Param guide formData file false "玩法指南 PDF"
// @Param poster formData file false "海报图片"
// @Success 201 {object} models.Game
// @Failure 400 {object} apperrors.ErrorResponse
// @Router /api/v1/games [post]
func (h *GameHandler) Create(c *gin.Context) {
	if c.ContentType() == gin.MIMEJSON {
		var body createGameJSON
		if err := c.ShouldBindJSON(&body); err != nil {
			middleware.AbortWithError(c, apperrors.Validation("请求参数错误: %v", err))
			return
		}
		h.create(c, &service.CreateGameRequest{Name: body.Name, Description: body.Description})
		return
	}

	if h.maxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)
	}
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.AbortWithError(c, apperrors.Validation("上传文件超过 %d 字节", h.maxUploadSize))
			return
		}
		middleware.AbortWithError(c, apperrors.Validation("表单解析失败: %v", err))
		return
	}
	defer form.RemoveAll()

	req := &service.CreateGameRequest{
		Name:        firstValue(form, "name"),
		Description: firstValue(form, "description"),
	}

	var opened []multipart.File
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	for field, target := range map[string]**service.Upload{"guide": &req.Guide, "poster": &req.Poster} {
		headers := form.File[field]
		if len(headers) == 0 {
			continue
		}
		fh := headers[0]
		f, err := fh.Open()
		if err != nil {
			middleware.AbortWithError(c, apperrors.Wrap(err, apperrors.ErrFileRead, "读取上传文件失败"))
			return
		}
		opened = append(opened, f)
		*target = &service.Upload{Filename: fh.Filename, Size: fh.Size, Reader: f}
	}

	h.create(c, req)
}

func (h *GameHandler) create(c *gin.Context, req *service.CreateGameRequest) {
	game, err := h.games.Create(c.Request.Context(), req)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	created(c, game)
}

func firstValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

// Get 游戏详情，包含评分明细与平均分
// @Summary 游戏详情
// @Tags Games
// @Produce json
// @Param id path string true "游戏ID"
// @Success 200 {object} service.GameDetail
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /api/v1/games/{id} [get]
func (h *GameHandler) Get(c *gin.Context) {
	detail, err := h.games.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	ok(c, detail)
}

// Lookup 按名称查找，重名返回 409
// @Summary 按名称查找游戏
// @Tags Games
// @Produce json
// @Param name query string true "游戏名称"
// @Success 200 {object} models.Game
// @Failure 404 {object} apperrors.ErrorResponse
// @Failure 409 {object} apperrors.ErrorResponse
// @Router /api/v1/games/lookup [get]
func (h *GameHandler) Lookup(c *gin.Context) {
	game, err := h.games.ResolveName(c.Request.Context(), c.Query("name"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	ok(c, game)
}

// Delete 删除游戏（管理员）
// @Summary 删除游戏
// @Tags Games
// @Security Bearer
// @Param id path string true "游戏ID"
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /api/v1/games/{id} [delete]
func (h *GameHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.games.Delete(c.Request.Context(), id); err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	username, _ := middleware.GetUsername(c)
	h.log.Info("游戏已删除", zap.String("id", id), zap.String("admin", username))
	message(c, "游戏已删除")
}

// Guide 下载玩法指南
// @Summary 下载玩法指南
// @Tags Games
// @Produce application/pdf
// @Param id path string true "游戏ID"
// @Router /api/v1/games/{id}/guide [get]
func (h *GameHandler) Guide(c *gin.Context) {
	h.serveAsset(c, service.AssetGuide)
}

// Poster 下载海报
// @Summary 下载海报
// @Tags Games
// @Produce image/png
// @Param id path string true "游戏ID"
// @Router /api/v1/games/{id}/poster [get]
func (h *GameHandler) Poster(c *gin.Context) {
	h.serveAsset(c, service.AssetPoster)
}

func (h *GameHandler) serveAsset(c *gin.Context, kind service.AssetKind) {
	asset, err := h.games.OpenAsset(c.Request.Context(), c.Param("id"), kind)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	defer asset.Body.Close()

	c.DataFromReader(http.StatusOK, asset.Size, asset.ContentType, asset.Body, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", asset.Name),
	})
}

// SubmitScore 提交一条评分
// @Summary 提交评分
// @Tags Scores
// @Accept json
// @Produce json
// @Param id path string true "游戏ID"
// @Param request body scoreRequest true "五项评分"
// @Success 201 {object} SuccessResponse
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 429 {object} apperrors.ErrorResponse
// @Router /api/v1/games/{id}/scores [post]
func (h *GameHandler) SubmitScore(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, apperrors.Validation("请求参数错误: %v", err))
		return
	}

	entry := models.ScoreEntry{
		Substance:    req.Substance,
		Originality:  req.Originality,
		TeamCohesion: req.TeamCohesion,
		Aesthetics:   req.Aesthetics,
		Fun:          req.Fun,
	}
	if err := h.games.AppendScore(c.Request.Context(), c.Param("id"), entry); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, SuccessResponse{Success: true, Message: "评分已记录"})
}

// ComputeFootprint 计算并保存碳足迹
// @Summary 计算碳足迹
// @Tags Footprint
// @Accept json
// @Produce json
// @Param id path string true "游戏ID"
// @Param request body carbon.Input true "能耗、材料、运输与参与人数"
// @Success 200 {object} models.Footprint
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /api/v1/games/{id}/footprint [post]
func (h *GameHandler) ComputeFootprint(c *gin.Context) {
	var in carbon.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		middleware.AbortWithError(c, apperrors.Validation("请求参数错误: %v", err))
		return
	}

	fp, err := h.footprints.Compute(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	ok(c, fp)
}
