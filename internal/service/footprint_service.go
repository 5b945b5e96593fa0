package service

import (
	"context"

	"github.com/wfunc/serious-game/internal/carbon"
	apperrors "github.com/wfunc/serious-game/internal/errors"
	"github.com/wfunc/serious-game/internal/logger"
	"github.com/wfunc/serious-game/internal/metrics"
	"github.com/wfunc/serious-game/internal/models"
	"github.com/wfunc/serious-game/internal/repository"
	ws "github.com/wfunc/serious-game/internal/websocket"
	"go.uber.org/zap"
)

type footprintService struct {
	repo      repository.GameRepository
	publisher Publisher
	metrics   *metrics.Metrics
	log       *zap.Logger
}

// NewFootprintService 创建碳足迹服务
func NewFootprintService(repo repository.GameRepository, publisher Publisher, m *metrics.Metrics, log *zap.Logger) FootprintService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &footprintService{repo: repo, publisher: publisher, metrics: m, log: log}
}

// Compute 估算碳足迹并覆盖游戏上的旧值
func (s *footprintService) Compute(ctx context.Context, id string, in carbon.Input) (*models.Footprint, error) {
	fp, err := carbon.Estimate(in)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetFootprint(ctx, id, fp.Total, fp.ParticipantCount, fp.PerParticipant); err != nil {
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			s.log.Error("保存碳足迹失败", zap.Error(err), zap.String("id", id))
		}
		return nil, apperrors.Storage(err)
	}

	s.metrics.FootprintComputed()
	logger.LogGameEvent("footprint", id, map[string]interface{}{
		"total":           fp.Total,
		"per_participant": fp.PerParticipant,
	})
	s.publisher.Publish(ws.MessageTypeFootprintUpdated, map[string]interface{}{
		"id":        id,
		"footprint": fp,
	})
	return &fp, nil
}

// Ranking 已计算碳足迹的游戏按升序排列
func (s *footprintService) Ranking(ctx context.Context, order FootprintOrder) ([]carbon.Entry, error) {
	games, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error("加载碳足迹排行失败", zap.Error(err))
		return nil, apperrors.Storage(err)
	}

	switch order {
	case "", OrderByTotal:
		return carbon.RankByTotal(games), nil
	case OrderByPerParticipant:
		return carbon.RankByPerParticipant(games), nil
	default:
		return nil, apperrors.Validation("不支持的排序方式: %s", order)
	}
}
