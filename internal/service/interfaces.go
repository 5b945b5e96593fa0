package service

import (
	"context"
	"io"

	"github.com/wfunc/serious-game/internal/carbon"
	"github.com/wfunc/serious-game/internal/models"
	"github.com/wfunc/serious-game/internal/scoring"
)

// GameService 游戏登记、评分与删除
type GameService interface {
	Create(ctx context.Context, req *CreateGameRequest) (*models.Game, error)
	List(ctx context.Context) ([]*models.Game, error)
	Get(ctx context.Context, id string) (*models.Game, error)
	Detail(ctx context.Context, id string) (*GameDetail, error)
	FindByName(ctx context.Context, name string) ([]*models.Game, error)
	ResolveName(ctx context.Context, name string) (*models.Game, error)
	AppendScore(ctx context.Context, id string, entry models.ScoreEntry) error
	Delete(ctx context.Context, id string) error
	OpenAsset(ctx context.Context, id string, kind AssetKind) (*Asset, error)
}

// LeaderboardService 排行榜与导出
type LeaderboardService interface {
	Leaderboard(ctx context.Context) ([]scoring.Ranking, error)
	Chart(ctx context.Context) ([]byte, error)
	Workbook(ctx context.Context) ([]byte, error)
}

// FootprintService 碳足迹计算与排行
type FootprintService interface {
	Compute(ctx context.Context, id string, in carbon.Input) (*models.Footprint, error)
	Ranking(ctx context.Context, order FootprintOrder) ([]carbon.Entry, error)
}

// Publisher 推送变更通知
type Publisher interface {
	Publish(msgType string, data interface{})
}

// Upload 待保存的上传文件
type Upload struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

// CreateGameRequest 创建游戏请求
type CreateGameRequest struct {
	Name        string
	Description string
	Guide       *Upload
	Poster      *Upload
}

// GameDetail 游戏详情，未评分时不含得分
type GameDetail struct {
	*models.Game
	Average    *float64           `json:"average,omitempty"`
	MeanRating *float64           `json:"mean_rating,omitempty"`
	Breakdown  *scoring.Breakdown `json:"breakdown,omitempty"`
}

// AssetKind 游戏附件类型
type AssetKind string

const (
	AssetGuide  AssetKind = "guide"
	AssetPoster AssetKind = "poster"
)

// Asset 打开的附件
type Asset struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

// FootprintOrder 碳足迹排序方式
type FootprintOrder string

const (
	OrderByTotal          FootprintOrder = "total"
	OrderByPerParticipant FootprintOrder = "per_participant"
)
