package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 评分区间
const (
	MinRating = 1
	MaxRating = 5

	// CriteriaCount 每条评分包含的评分项数量
	CriteriaCount = 5
)

// Game 工作坊游戏
type Game struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	Name        string `gorm:"size:200;not null;index" json:"name"`
	Description string `gorm:"type:text;not null" json:"description"`
	GuidePath   string `gorm:"size:512" json:"guide_path"`
	PosterPath  string `gorm:"size:512" json:"poster_path"`

	// 评分序列，只追加；ScoreCount 与行数一致
	Scoring    []ScoreEntry `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE" json:"scoring"`
	ScoreCount int          `gorm:"not null;default:0" json:"score_count"`

	// 碳足迹，首次计算前为空，之后每次覆盖
	CarbonTotal          *float64   `json:"carbon_total,omitempty"`
	ParticipantCount     *int       `json:"participant_count,omitempty"`
	CarbonPerParticipant *float64   `json:"carbon_per_participant,omitempty"`
	FootprintAt          *time.Time `json:"footprint_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 表名
func (Game) TableName() string {
	return "games"
}

// BeforeCreate 分配不透明ID
func (g *Game) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	return nil
}

// HasFootprint 是否已记录碳足迹
func (g *Game) HasFootprint() bool {
	return g.CarbonTotal != nil
}

// ScoreEntry 一位评委对一个游戏的五项评分
type ScoreEntry struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	GameID       string    `gorm:"size:36;not null;index" json:"-"`
	Substance    int       `gorm:"not null" json:"substance"`
	Originality  int       `gorm:"not null" json:"originality"`
	TeamCohesion int       `gorm:"not null" json:"team_cohesion"`
	Aesthetics   int       `gorm:"not null" json:"aesthetics"`
	Fun          int       `gorm:"not null" json:"fun"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName 表名
func (ScoreEntry) TableName() string {
	return "score_entries"
}

// Ratings 按固定顺序返回五项评分
func (s ScoreEntry) Ratings() [CriteriaCount]int {
	return [CriteriaCount]int{s.Substance, s.Originality, s.TeamCohesion, s.Aesthetics, s.Fun}
}

// Sum 五项评分之和
func (s ScoreEntry) Sum() int {
	return s.Substance + s.Originality + s.TeamCohesion + s.Aesthetics + s.Fun
}

// Criteria 评分项名称，与 Ratings 顺序一致
var Criteria = [CriteriaCount]string{"substance", "originality", "team_cohesion", "aesthetics", "fun"}

// AllModels 需要迁移的模型
func AllModels() []interface{} {
	return []interface{}{
		&Game{},
		&ScoreEntry{},
	}
}
