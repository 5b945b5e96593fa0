package service

import (
	"context"
	"path"
	"strings"

	apperrors "github.com/wfunc/serious-game/internal/errors"
	"github.com/wfunc/serious-game/internal/logger"
	"github.com/wfunc/serious-game/internal/metrics"
	"github.com/wfunc/serious-game/internal/models"
	"github.com/wfunc/serious-game/internal/repository"
	"github.com/wfunc/serious-game/internal/scoring"
	"github.com/wfunc/serious-game/internal/storage"
	ws "github.com/wfunc/serious-game/internal/websocket"
	"go.uber.org/zap"
)

// gameService 游戏服务实现
type gameService struct {
	repo        repository.GameRepository
	files       storage.FileStore
	leaderboard LeaderboardService
	publisher   Publisher
	metrics     *metrics.Metrics
	log         *zap.Logger
}

// NewGameService 创建游戏服务
func NewGameService(
	repo repository.GameRepository,
	files storage.FileStore,
	leaderboard LeaderboardService,
	publisher Publisher,
	m *metrics.Metrics,
	log *zap.Logger,
) GameService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &gameService{
		repo:        repo,
		files:       files,
		leaderboard: leaderboard,
		publisher:   publisher,
		metrics:     m,
		log:         log,
	}
}

// Create 先保存上传文件，再写入游戏记录
// 写库失败时尽力删除已保存的文件
func (s *gameService) Create(ctx context.Context, req *CreateGameRequest) (*models.Game, error) {
	name := strings.TrimSpace(req.Name)
	description := strings.TrimSpace(req.Description)
	if name == "" {
		return nil, apperrors.Validation("游戏名称不能为空")
	}
	if description == "" {
		return nil, apperrors.Validation("游戏描述不能为空")
	}
	if req.Guide != nil {
		if err := storage.CheckExtension(storage.CategoryGuide, req.Guide.Filename); err != nil {
			return nil, err
		}
	}
	if req.Poster != nil {
		if err := storage.CheckExtension(storage.CategoryPoster, req.Poster.Filename); err != nil {
			return nil, err
		}
	}

	game := &models.Game{Name: name, Description: description}
	var stored []string

	if req.Guide != nil {
		ref, err := s.store(ctx, req.Guide, storage.CategoryGuide)
		if err != nil {
			return nil, err
		}
		game.GuidePath = ref
		stored = append(stored, ref)
	}
	if req.Poster != nil {
		ref, err := s.store(ctx, req.Poster, storage.CategoryPoster)
		if err != nil {
			s.cleanup(ctx, stored)
			return nil, err
		}
		game.PosterPath = ref
		stored = append(stored, ref)
	}

	if err := s.repo.Create(ctx, game); err != nil {
		s.log.Error("创建游戏失败", zap.Error(err), zap.String("name", name))
		s.cleanup(ctx, stored)
		return nil, apperrors.Storage(err)
	}

	s.metrics.GameCreated()
	logger.LogGameEvent("created", game.ID, map[string]interface{}{"name": game.Name})
	s.publisher.Publish(ws.MessageTypeGameCreated, game)
	return game, nil
}

func (s *gameService) store(ctx context.Context, up *Upload, category storage.Category) (string, error) {
	if s.files == nil {
		return "", apperrors.New(apperrors.ErrStorage, "未配置文件存储")
	}
	ref, err := s.files.Store(ctx, up.Reader, up.Filename, category)
	if err != nil {
		s.log.Error("保存上传文件失败",
			zap.Error(err),
			zap.String("filename", up.Filename),
			zap.String("category", string(category)))
		return "", err
	}
	s.metrics.Uploaded(string(category), up.Size)
	return ref, nil
}

func (s *gameService) cleanup(ctx context.Context, refs []string) {
	for _, ref := range refs {
		if err := s.files.Delete(context.WithoutCancel(ctx), ref); err != nil {
			s.log.Warn("清理上传文件失败", zap.String("ref", ref), zap.Error(err))
		}
	}
}

// List 列出全部游戏
func (s *gameService) List(ctx context.Context) ([]*models.Game, error) {
	games, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error("查询游戏列表失败", zap.Error(err))
		return nil, apperrors.Storage(err)
	}
	return games, nil
}

// Get 获取游戏
func (s *gameService) Get(ctx context.Context, id string) (*models.Game, error) {
	game, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			s.log.Error("查询游戏失败", zap.Error(err), zap.String("id", id))
		}
		return nil, apperrors.Storage(err)
	}
	return game, nil
}

// Detail 游戏详情与得分
func (s *gameService) Detail(ctx context.Context, id string) (*GameDetail, error) {
	game, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &GameDetail{Game: game}
	if avg, err := scoring.AverageComposite(game); err == nil {
		mean := avg * models.MaxRating
		detail.Average = &avg
		detail.MeanRating = &mean
	}
	if breakdown, err := scoring.CriterionAverages(game); err == nil {
		detail.Breakdown = &breakdown
	}
	return detail, nil
}

// FindByName 按名称查找全部匹配
func (s *gameService) FindByName(ctx context.Context, name string) ([]*models.Game, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Validation("名称不能为空")
	}
	games, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return games, nil
}

// ResolveName 名称解析为唯一游戏，重名时返回 ErrAmbiguous
func (s *gameService) ResolveName(ctx context.Context, name string) (*models.Game, error) {
	games, err := s.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	switch len(games) {
	case 0:
		return nil, apperrors.NotFound("没有名为 %q 的游戏", name)
	case 1:
		return games[0], nil
	default:
		ids := make([]string, 0, len(games))
		for _, g := range games {
			ids = append(ids, g.ID)
		}
		return nil, apperrors.Newf(apperrors.ErrAmbiguous, "名称 %q 对应多个游戏: %s", name, strings.Join(ids, ", "))
	}
}

// AppendScore 校验后追加评分
func (s *gameService) AppendScore(ctx context.Context, id string, entry models.ScoreEntry) error {
	if err := scoring.ValidateEntry(&entry); err != nil {
		s.metrics.ScoreSubmitted("rejected")
		return err
	}

	if err := s.repo.AppendScore(ctx, id, &entry); err != nil {
		s.metrics.ScoreSubmitted("rejected")
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			s.log.Error("追加评分失败", zap.Error(err), zap.String("id", id))
		}
		return apperrors.Storage(err)
	}

	s.metrics.ScoreSubmitted("accepted")
	logger.LogGameEvent("scored", id, map[string]interface{}{"sum": entry.Sum()})
	s.publishLeaderboard(ctx)
	return nil
}

// publishLeaderboard 推送最新排行榜，失败只记录日志
func (s *gameService) publishLeaderboard(ctx context.Context) {
	if s.leaderboard == nil {
		return
	}
	rankings, err := s.leaderboard.Leaderboard(ctx)
	if err != nil {
		s.log.Warn("刷新排行榜失败", zap.Error(err))
		return
	}
	s.publisher.Publish(ws.MessageTypeLeaderboardUpdate, rankings)
}

// Delete 删除游戏，附件尽力删除
func (s *gameService) Delete(ctx context.Context, id string) error {
	game, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			s.log.Error("删除游戏失败", zap.Error(err), zap.String("id", id))
		}
		return apperrors.Storage(err)
	}

	if s.files != nil {
		s.cleanup(ctx, nonEmpty(game.GuidePath, game.PosterPath))
	}

	s.metrics.GameDeleted()
	logger.LogGameEvent("deleted", id, map[string]interface{}{"name": game.Name})
	s.publisher.Publish(ws.MessageTypeGameDeleted, map[string]string{"id": id})
	s.publishLeaderboard(ctx)
	return nil
}

// OpenAsset 打开游戏的指南或海报
func (s *gameService) OpenAsset(ctx context.Context, id string, kind AssetKind) (*Asset, error) {
	game, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ref := game.GuidePath
	if kind == AssetPoster {
		ref = game.PosterPath
	}
	if ref == "" {
		return nil, apperrors.NotFound("游戏 %s 没有%s文件", id, kind)
	}
	if s.files == nil {
		return nil, apperrors.New(apperrors.ErrStorage, "未配置文件存储")
	}

	r, err := s.files.Open(ctx, ref)
	if err != nil {
		return nil, err
	}
	return &Asset{
		Name:        displayName(ref),
		ContentType: r.ContentType(),
		Size:        r.Size(),
		Body:        r,
	}, nil
}

// displayName 去掉存储键中的目录与 uuid 前缀
func displayName(ref string) string {
	base := path.Base(ref)
	if i := strings.IndexByte(base, '_'); i > 0 {
		return base[i+1:]
	}
	return base
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
