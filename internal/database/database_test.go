package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/wfunc/serious-game/internal/config"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// DatabaseTestSuite 数据库连接与迁移测试
type DatabaseTestSuite struct {
	suite.Suite
}

func (suite *DatabaseTestSuite) TestOpenAndMigrateMemory() {
	db, err := Open(&config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          ":memory:",
		MaxIdleConns: 1,
		MaxOpenConns: 10,
		LogLevel:     "silent",
	}, zap.NewNop())
	suite.Require().NoError(err)
	defer func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	}()

	sqlDB, err := db.DB()
	suite.Require().NoError(err)
	suite.Equal(1, sqlDB.Stats().MaxOpenConnections)

	suite.NoError(Migrate(db))
	suite.True(db.Migrator().HasTable("games"))
	suite.True(db.Migrator().HasTable("score_entries"))
	suite.True(db.Migrator().HasIndex("score_entries", "idx_score_entries_game_order"))
	suite.NoError(Ping(db))
	suite.Empty(sqlitePath(db))
}

func (suite *DatabaseTestSuite) TestMigrateFileDatabase() {
	dbPath := filepath.Join(suite.T().TempDir(), "serious-game.db")
	db, err := Open(&config.DatabaseConfig{Driver: "sqlite", DSN: dbPath, LogLevel: "silent"}, zap.NewNop())
	suite.Require().NoError(err)
	defer func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	}()

	suite.Equal(filepath.Base(dbPath), filepath.Base(sqlitePath(db)))
	suite.NoError(Migrate(db))

	// 迁移结束后锁文件已释放
	_, err = os.Stat(dbPath + ".migration.lock")
	suite.True(os.IsNotExist(err))
}

func (suite *DatabaseTestSuite) TestUnsupportedDriver() {
	_, err := Open(&config.DatabaseConfig{Driver: "oracle", DSN: "x"}, zap.NewNop())
	suite.Error(err)
}

func (suite *DatabaseTestSuite) TestMigrationLock() {
	dbPath := filepath.Join(suite.T().TempDir(), "lock.db")

	lock, err := acquireMigrationLock(dbPath)
	suite.Require().NoError(err)
	_, err = os.Stat(dbPath + ".migration.lock")
	suite.NoError(err)

	releaseMigrationLock(lock)
	_, err = os.Stat(dbPath + ".migration.lock")
	suite.True(os.IsNotExist(err))
}

func (suite *DatabaseTestSuite) TestCleanupStaleLocks() {
	dir := suite.T().TempDir()
	stale := filepath.Join(dir, "old.migration.lock")
	fresh := filepath.Join(dir, "new.migration.lock")
	suite.Require().NoError(os.WriteFile(stale, nil, 0644))
	suite.Require().NoError(os.WriteFile(fresh, nil, 0644))

	old := time.Now().Add(-time.Hour)
	suite.Require().NoError(os.Chtimes(stale, old, old))

	CleanupStaleLocks(filepath.Join(dir, "serious-game.db"))

	_, err := os.Stat(stale)
	suite.True(os.IsNotExist(err))
	_, err = os.Stat(fresh)
	suite.NoError(err)
}

func (suite *DatabaseTestSuite) TestParseLogLevel() {
	suite.Equal(gormlogger.Silent, parseLogLevel("silent"))
	suite.Equal(gormlogger.Warn, parseLogLevel("warn"))
	suite.Equal(gormlogger.Info, parseLogLevel(""))
}

func TestDatabaseSuite(t *testing.T) {
	suite.Run(t, new(DatabaseTestSuite))
}
