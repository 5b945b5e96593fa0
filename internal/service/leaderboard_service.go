package service

import (
	"context"

	"github.com/wfunc/serious-game/internal/carbon"
	apperrors "github.com/wfunc/serious-game/internal/errors"
	"github.com/wfunc/serious-game/internal/report"
	"github.com/wfunc/serious-game/internal/repository"
	"github.com/wfunc/serious-game/internal/scoring"
	"go.uber.org/zap"
)

type leaderboardService struct {
	repo repository.GameRepository
	log  *zap.Logger
}

// NewLeaderboardService 创建排行榜服务
func NewLeaderboardService(repo repository.GameRepository, log *zap.Logger) LeaderboardService {
	return &leaderboardService{repo: repo, log: log}
}

// Leaderboard 按平均综合分降序，未评分的游戏不上榜
func (s *leaderboardService) Leaderboard(ctx context.Context) ([]scoring.Ranking, error) {
	games, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error("加载排行榜失败", zap.Error(err))
		return nil, apperrors.Storage(err)
	}
	return scoring.Rank(games), nil
}

// Chart 排行榜柱状图 PNG
func (s *leaderboardService) Chart(ctx context.Context) ([]byte, error) {
	rankings, err := s.Leaderboard(ctx)
	if err != nil {
		return nil, err
	}
	png, err := report.LeaderboardChart(rankings)
	if err != nil {
		s.log.Error("渲染排行榜图表失败", zap.Error(err))
		return nil, apperrors.Wrap(err, apperrors.ErrUnknown, "渲染图表失败")
	}
	return png, nil
}

// Workbook 排行榜与碳足迹导出为 xlsx
func (s *leaderboardService) Workbook(ctx context.Context) ([]byte, error) {
	games, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error("加载导出数据失败", zap.Error(err))
		return nil, apperrors.Storage(err)
	}

	data, err := report.LeaderboardWorkbook(scoring.Rank(games), carbon.RankByTotal(games))
	if err != nil {
		s.log.Error("生成导出文件失败", zap.Error(err))
		return nil, apperrors.Wrap(err, apperrors.ErrUnknown, "生成导出文件失败")
	}
	return data, nil
}
