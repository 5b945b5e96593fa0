package repository

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/wfunc/serious-game/internal/errors"
	"github.com/wfunc/serious-game/internal/logger"
	"github.com/wfunc/serious-game/internal/models"
	"gorm.io/gorm"
)

// GameRepository 游戏仓储接口
type GameRepository interface {
	BaseRepository
	Create(ctx context.Context, game *models.Game) error
	List(ctx context.Context) ([]*models.Game, error)
	FindByID(ctx context.Context, id string) (*models.Game, error)
	FindByName(ctx context.Context, name string) ([]*models.Game, error)
	AppendScore(ctx context.Context, id string, entry *models.ScoreEntry) error
	SetFootprint(ctx context.Context, id string, carbonTotal float64, participantCount int, carbonPerParticipant float64) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// gameRepo 游戏仓储实现
type gameRepo struct {
	*BaseRepo
}

// NewGameRepository 创建游戏仓储
func NewGameRepository(db *gorm.DB) GameRepository {
	return &gameRepo{
		BaseRepo: &BaseRepo{db: db},
	}
}

// WithTx 使用事务
func (r *gameRepo) WithTx(tx *gorm.DB) BaseRepository {
	return &gameRepo{
		BaseRepo: &BaseRepo{db: tx},
	}
}

// withScoring 按追加顺序预加载评分
func withScoring(db *gorm.DB) *gorm.DB {
	return db.Preload("Scoring", func(db *gorm.DB) *gorm.DB {
		return db.Order("score_entries.id ASC")
	})
}

// normalize 保证空评分序列序列化为 []
func normalize(game *models.Game) {
	if game.Scoring == nil {
		game.Scoring = []models.ScoreEntry{}
	}
}

// Create 创建游戏
func (r *gameRepo) Create(ctx context.Context, game *models.Game) error {
	if err := r.db.WithContext(ctx).Omit("Scoring").Create(game).Error; err != nil {
		return apperrors.Wrap(err, apperrors.ErrDatabaseInsert, "创建游戏失败")
	}
	normalize(game)
	return nil
}

// List 按创建时间列出全部游戏
func (r *gameRepo) List(ctx context.Context) ([]*models.Game, error) {
	var games []*models.Game
	err := withScoring(r.db.WithContext(ctx)).
		Order("created_at ASC").
		Order("id ASC").
		Find(&games).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery, "查询游戏列表失败")
	}
	for _, g := range games {
		normalize(g)
	}
	return games, nil
}

// FindByID 根据ID查找游戏
func (r *gameRepo) FindByID(ctx context.Context, id string) (*models.Game, error) {
	var game models.Game
	err := withScoring(r.db.WithContext(ctx)).Where("id = ?", id).First(&game).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("游戏不存在: %s", id)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery, "查询游戏失败")
	}
	normalize(&game)
	return &game, nil
}

// FindByName 根据名称查找游戏，名称不唯一时返回全部匹配
func (r *gameRepo) FindByName(ctx context.Context, name string) ([]*models.Game, error) {
	var games []*models.Game
	err := withScoring(r.db.WithContext(ctx)).
		Where("name = ?", name).
		Order("created_at ASC").
		Find(&games).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrDatabaseQuery, "按名称查询游戏失败")
	}
	for _, g := range games {
		normalize(g)
	}
	return games, nil
}

// AppendScore 追加一条评分
// 计数自增与插入在同一事务内完成，不做读改写
func (r *gameRepo) AppendScore(ctx context.Context, id string, entry *models.ScoreEntry) (err error) {
	defer logWrite("append_score", "score_entries", time.Now(), &err)

	return r.Transaction(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&models.Game{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"score_count": gorm.Expr("score_count + ?", 1),
				"updated_at":  time.Now(),
			})
		if res.Error != nil {
			return apperrors.Wrap(res.Error, apperrors.ErrDatabaseUpdate, "更新评分计数失败")
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("游戏不存在: %s", id)
		}

		entry.ID = 0
		entry.GameID = id
		if err := tx.Create(entry).Error; err != nil {
			return apperrors.Wrap(err, apperrors.ErrDatabaseInsert, "写入评分失败")
		}
		return nil
	})
}

// SetFootprint 覆盖碳足迹字段
func (r *gameRepo) SetFootprint(ctx context.Context, id string, carbonTotal float64, participantCount int, carbonPerParticipant float64) (err error) {
	now := time.Now()
	defer logWrite("set_footprint", "games", now, &err)

	res := r.db.WithContext(ctx).
		Model(&models.Game{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"carbon_total":           carbonTotal,
			"participant_count":      participantCount,
			"carbon_per_participant": carbonPerParticipant,
			"footprint_at":           now,
			"updated_at":             now,
		})
	if res.Error != nil {
		return apperrors.Wrap(res.Error, apperrors.ErrDatabaseUpdate, "更新碳足迹失败")
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("游戏不存在: %s", id)
	}
	return nil
}

// Delete 删除游戏及其评分
func (r *gameRepo) Delete(ctx context.Context, id string) (err error) {
	defer logWrite("delete", "games", time.Now(), &err)

	return r.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("game_id = ?", id).Delete(&models.ScoreEntry{}).Error; err != nil {
			return apperrors.Wrap(err, apperrors.ErrDatabaseDelete, "删除评分失败")
		}
		res := tx.Where("id = ?", id).Delete(&models.Game{})
		if res.Error != nil {
			return apperrors.Wrap(res.Error, apperrors.ErrDatabaseDelete, "删除游戏失败")
		}
		if res.RowsAffected == 0 {
			// 回滚，评分删除不生效
			return apperrors.NotFound("游戏不存在: %s", id)
		}
		return nil
	})
}

// Count 游戏总数
func (r *gameRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Game{}).Count(&total).Error; err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrDatabaseQuery, "统计游戏数量失败")
	}
	return total, nil
}

// logWrite 记录写操作耗时，游戏不存在不算数据库错误
func logWrite(operation, table string, start time.Time, err *error) {
	e := *err
	if apperrors.Is(e, apperrors.ErrNotFound) {
		e = nil
	}
	logger.LogDatabaseOperation(operation, table, time.Since(start), e)
}
