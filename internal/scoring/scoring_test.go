package scoring

import (
	"testing"

	"github.com/stretchr/testify/suite"
	apperrors "github.com/wfunc/serious-game/internal/errors"
	"github.com/wfunc/serious-game/internal/models"
)

// ScoringTestSuite 评分聚合测试套件
type ScoringTestSuite struct {
	suite.Suite
}

func uniform(v int) models.ScoreEntry {
	return models.ScoreEntry{Substance: v, Originality: v, TeamCohesion: v, Aesthetics: v, Fun: v}
}

func gameWith(id string, entries ...models.ScoreEntry) *models.Game {
	return &models.Game{ID: id, Name: "game-" + id, Scoring: entries}
}

// 测试综合得分
func (suite *ScoringTestSuite) TestAverageComposite() {
	cases := []struct {
		name    string
		entries []models.ScoreEntry
		want    float64
	}{
		{"all fives", []models.ScoreEntry{uniform(5)}, 1.0},
		{"all ones", []models.ScoreEntry{uniform(1)}, 0.2},
		{"mixed", []models.ScoreEntry{uniform(5), uniform(1)}, 0.6},
		{"uneven", []models.ScoreEntry{{Substance: 5, Originality: 4, TeamCohesion: 3, Aesthetics: 2, Fun: 1}}, 0.6},
	}
	for _, tc := range cases {
		got, err := AverageComposite(gameWith("x", tc.entries...))
		suite.NoError(err, tc.name)
		suite.InDelta(tc.want, got, 1e-9, tc.name)
	}
}

// 测试无评分
func (suite *ScoringTestSuite) TestAverageCompositeNoScores() {
	_, err := AverageComposite(gameWith("empty"))
	suite.Error(err)
	suite.True(apperrors.Is(err, apperrors.ErrNoScores))

	_, err = MeanRating(gameWith("empty"))
	suite.True(apperrors.Is(err, apperrors.ErrNoScores))
}

// 测试平均分换算
func (suite *ScoringTestSuite) TestMeanRating() {
	got, err := MeanRating(gameWith("x", uniform(5), uniform(1)))
	suite.NoError(err)
	suite.InDelta(3.0, got, 1e-9)
}

// 测试排名：排除无评分游戏，降序且同分稳定
func (suite *ScoringTestSuite) TestRank() {
	games := []*models.Game{
		gameWith("a", uniform(3)),
		gameWith("empty"),
		gameWith("b", uniform(5)),
		gameWith("c", uniform(3)),
		gameWith("d", uniform(1)),
	}

	rankings := Rank(games)
	suite.Len(rankings, 4)

	ids := make([]string, 0, len(rankings))
	for _, r := range rankings {
		ids = append(ids, r.GameID)
	}
	suite.Equal([]string{"b", "a", "c", "d"}, ids)
	suite.InDelta(1.0, rankings[0].Average, 1e-9)
	suite.InDelta(5.0, rankings[0].MeanRating, 1e-9)
	suite.Equal(1, rankings[0].Entries)
	suite.Equal("game-b", rankings[0].Name)
}

// 测试空输入
func (suite *ScoringTestSuite) TestRankEmpty() {
	suite.Empty(Rank(nil))
	suite.Empty(Rank([]*models.Game{gameWith("empty")}))
}

// 测试各评分项平均
func (suite *ScoringTestSuite) TestCriterionAverages() {
	game := gameWith("x",
		models.ScoreEntry{Substance: 5, Originality: 4, TeamCohesion: 3, Aesthetics: 2, Fun: 1},
		models.ScoreEntry{Substance: 3, Originality: 4, TeamCohesion: 5, Aesthetics: 2, Fun: 2},
	)
	b, err := CriterionAverages(game)
	suite.NoError(err)
	suite.InDelta(4.0, b.Substance, 1e-9)
	suite.InDelta(4.0, b.Originality, 1e-9)
	suite.InDelta(4.0, b.TeamCohesion, 1e-9)
	suite.InDelta(2.0, b.Aesthetics, 1e-9)
	suite.InDelta(1.5, b.Fun, 1e-9)

	_, err = CriterionAverages(gameWith("empty"))
	suite.True(apperrors.Is(err, apperrors.ErrNoScores))
}

// 测试两位小数
func (suite *ScoringTestSuite) TestRound2() {
	suite.InDelta(0.67, Round2(2.0/3.0), 1e-12)
	suite.InDelta(13.32, Round2(13.324), 1e-12)
	suite.InDelta(1.0, Round2(1.0), 1e-12)
}

// 测试评分范围校验
func (suite *ScoringTestSuite) TestValidateEntry() {
	suite.NoError(ValidateEntry(&models.ScoreEntry{Substance: 1, Originality: 5, TeamCohesion: 3, Aesthetics: 2, Fun: 4}))

	bad := []models.ScoreEntry{
		{Substance: 0, Originality: 5, TeamCohesion: 3, Aesthetics: 2, Fun: 4},
		{Substance: 1, Originality: 6, TeamCohesion: 3, Aesthetics: 2, Fun: 4},
		{Substance: 1, Originality: 5, TeamCohesion: 3, Aesthetics: 2, Fun: -1},
	}
	for _, entry := range bad {
		err := ValidateEntry(&entry)
		suite.True(apperrors.Is(err, apperrors.ErrValidation))
	}
}

func TestScoringSuite(t *testing.T) {
	suite.Run(t, new(ScoringTestSuite))
}
