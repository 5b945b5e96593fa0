// Package scoring 计算游戏综合评分与排行
package scoring

import (
	"math"
	"sort"

	apperrors "github.com/wfunc/serious-game/internal/errors"
	"github.com/wfunc/serious-game/internal/models"
)

// maxPerEntry 单条评分满分
const maxPerEntry = models.MaxRating * models.CriteriaCount

// Ranking 排行榜条目
type Ranking struct {
	GameID     string  `json:"game_id"`
	Name       string  `json:"name"`
	Average    float64 `json:"average"`
	MeanRating float64 `json:"mean_rating"`
	Entries    int     `json:"entries"`
}

// Breakdown 各评分项平均分（1-5）
type Breakdown struct {
	Substance    float64 `json:"substance"`
	Originality  float64 `json:"originality"`
	TeamCohesion float64 `json:"team_cohesion"`
	Aesthetics   float64 `json:"aesthetics"`
	Fun          float64 `json:"fun"`
}

// AverageComposite 综合得分，即所有评分占满分的平均比例，取值 [0,1]
// 没有评分时返回 ErrNoScores
func AverageComposite(game *models.Game) (float64, error) {
	n := len(game.Scoring)
	if n == 0 {
		return 0, apperrors.NoScores("游戏 %s 暂无评分", game.ID)
	}
	total := 0
	for _, entry := range game.Scoring {
		total += entry.Sum()
	}
	return float64(total) / float64(maxPerEntry*n), nil
}

// MeanRating 所有评分项的平均分，取值 [1,5]，等于 AverageComposite 乘以满分
func MeanRating(game *models.Game) (float64, error) {
	avg, err := AverageComposite(game)
	if err != nil {
		return 0, err
	}
	return avg * models.MaxRating, nil
}

// Rank 按综合得分降序排列，无评分的游戏不参与排名，同分保持输入顺序
func Rank(games []*models.Game) []Ranking {
	rankings := make([]Ranking, 0, len(games))
	for _, game := range games {
		avg, err := AverageComposite(game)
		if err != nil {
			continue
		}
		rankings = append(rankings, Ranking{
			GameID:     game.ID,
			Name:       game.Name,
			Average:    avg,
			MeanRating: avg * models.MaxRating,
			Entries:    len(game.Scoring),
		})
	}
	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].Average > rankings[j].Average
	})
	return rankings
}

// CriterionAverages 每个评分项的平均分
func CriterionAverages(game *models.Game) (Breakdown, error) {
	n := len(game.Scoring)
	if n == 0 {
		return Breakdown{}, apperrors.NoScores("游戏 %s 暂无评分", game.ID)
	}
	var sums [models.CriteriaCount]int
	for _, entry := range game.Scoring {
		for i, v := range entry.Ratings() {
			sums[i] += v
		}
	}
	avg := func(i int) float64 { return float64(sums[i]) / float64(n) }
	return Breakdown{
		Substance:    avg(0),
		Originality:  avg(1),
		TeamCohesion: avg(2),
		Aesthetics:   avg(3),
		Fun:          avg(4),
	}, nil
}

// Round2 保留两位小数，仅用于展示
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ValidateEntry 检查五项评分均在 [1,5]
func ValidateEntry(entry *models.ScoreEntry) error {
	for i, v := range entry.Ratings() {
		if v < models.MinRating || v > models.MaxRating {
			return apperrors.Validation("评分项 %s 超出范围 [%d,%d]: %d",
				models.Criteria[i], models.MinRating, models.MaxRating, v)
		}
	}
	return nil
}
