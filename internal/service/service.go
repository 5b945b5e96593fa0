package service

import (
	"github.com/wfunc/serious-game/internal/metrics"
	"github.com/wfunc/serious-game/internal/repository"
	"github.com/wfunc/serious-game/internal/storage"
	"go.uber.org/zap"
)

// Dependencies 服务依赖
type Dependencies struct {
	Repos     *repository.Manager
	Files     storage.FileStore
	Publisher Publisher
	Metrics   *metrics.Metrics
	Log       *zap.Logger
}

// Services 服务集合
type Services struct {
	Games       GameService
	Leaderboard LeaderboardService
	Footprints  FootprintService
}

// NewServices 创建服务集合
func NewServices(deps Dependencies) *Services {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Publisher == nil {
		deps.Publisher = nopPublisher{}
	}

	leaderboard := NewLeaderboardService(deps.Repos.Game(), deps.Log.Named("leaderboard"))
	return &Services{
		Games:       NewGameService(deps.Repos.Game(), deps.Files, leaderboard, deps.Publisher, deps.Metrics, deps.Log.Named("game")),
		Leaderboard: leaderboard,
		Footprints:  NewFootprintService(deps.Repos.Game(), deps.Publisher, deps.Metrics, deps.Log.Named("footprint")),
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, interface{}) {}
