package report

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/wfunc/serious-game/internal/carbon"
	"github.com/wfunc/serious-game/internal/models"
	"github.com/wfunc/serious-game/internal/scoring"
	"github.com/xuri/excelize/v2"
)

// ReportTestSuite 报表测试套件
type ReportTestSuite struct {
	suite.Suite
	rankings   []scoring.Ranking
	footprints []carbon.Entry
}

func (suite *ReportTestSuite) SetupTest() {
	suite.rankings = []scoring.Ranking{
		{GameID: "b", Name: "Fresque", Average: 0.8666, MeanRating: 4.333, Entries: 3},
		{GameID: "a", Name: "Quiz", Average: 0.6, MeanRating: 3, Entries: 2},
	}
	suite.footprints = []carbon.Entry{
		{GameID: "a", Name: "Quiz", Footprint: models.Footprint{Total: 53.3, ParticipantCount: 4, PerParticipant: 13.3}},
	}
}

func (suite *ReportTestSuite) TestLeaderboardChart() {
	data, err := LeaderboardChart(suite.rankings)
	suite.NoError(err)

	img, err := png.Decode(bytes.NewReader(data))
	suite.NoError(err)
	suite.Equal(chartWidth, img.Bounds().Dx())
	suite.Equal(chartHeight, img.Bounds().Dy())
}

func (suite *ReportTestSuite) TestLeaderboardChartEmpty() {
	data, err := LeaderboardChart(nil)
	suite.NoError(err)

	img, err := png.Decode(bytes.NewReader(data))
	suite.NoError(err)
	suite.Equal(400, img.Bounds().Dx())
}

func (suite *ReportTestSuite) TestLeaderboardWorkbook() {
	data, err := LeaderboardWorkbook(suite.rankings, suite.footprints)
	suite.Require().NoError(err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	suite.Require().NoError(err)
	defer f.Close()

	suite.Equal([]string{SheetLeaderboard, SheetFootprint}, f.GetSheetList())

	rows, err := f.GetRows(SheetLeaderboard)
	suite.NoError(err)
	suite.Len(rows, 3)
	suite.Equal("Game", rows[0][1])
	suite.Equal([]string{"1", "Fresque", "0.87", "4.33", "3"}, rows[1])
	suite.Equal("Quiz", rows[2][1])

	rows, err = f.GetRows(SheetFootprint)
	suite.NoError(err)
	suite.Len(rows, 2)
	suite.Equal([]string{"1", "Quiz", "53.3", "4", "13.3"}, rows[1])
}

func (suite *ReportTestSuite) TestLeaderboardWorkbookEmpty() {
	data, err := LeaderboardWorkbook(nil, nil)
	suite.Require().NoError(err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	suite.Require().NoError(err)
	defer f.Close()

	rows, err := f.GetRows(SheetFootprint)
	suite.NoError(err)
	suite.Len(rows, 1)
}

func TestReportSuite(t *testing.T) {
	suite.Run(t, new(ReportTestSuite))
}
