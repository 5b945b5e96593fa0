package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wfunc/serious-game/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB 为测试套件设置测试数据库
func SetupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(err)
	}

	// 内存库每个连接各自独立，限制为单连接
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		panic(err)
	}
	return db
}

// CleanupTestDB 清理测试数据库
func CleanupTestDB(db *gorm.DB) {
	sqlDB, _ := db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}
}

// CreateTestGame 创建测试游戏
func CreateTestGame(t *testing.T, db *gorm.DB, name string) *models.Game {
	game := &models.Game{
		Name:        name,
		Description: "测试游戏: " + name,
		GuidePath:   "guides/" + name + ".pdf",
		PosterPath:  "images/" + name + ".png",
	}
	require.NoError(t, NewGameRepository(db).Create(context.Background(), game))
	return game
}

// NewTestScore 五项评分相同的评分
func NewTestScore(v int) *models.ScoreEntry {
	return &models.ScoreEntry{
		Substance:    v,
		Originality:  v,
		TeamCohesion: v,
		Aesthetics:   v,
		Fun:          v,
	}
}
