package report

import (
	"bytes"
	"fmt"

	"github.com/wfunc/serious-game/internal/carbon"
	"github.com/wfunc/serious-game/internal/scoring"
	"github.com/xuri/excelize/v2"
)

// 工作表名称
const (
	SheetLeaderboard = "Leaderboard"
	SheetFootprint   = "Footprint"
)

// LeaderboardWorkbook 导出排行榜与碳足迹两张表
func LeaderboardWorkbook(rankings []scoring.Ranking, footprints []carbon.Entry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// 默认表改名为排行榜
	if err := f.SetSheetName(f.GetSheetName(0), SheetLeaderboard); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetFootprint); err != nil {
		return nil, err
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	rows := [][]interface{}{{"Rank", "Game", "Composite score", "Mean rating (1-5)", "Entries"}}
	for i, r := range rankings {
		rows = append(rows, []interface{}{
			i + 1,
			r.Name,
			scoring.Round2(r.Average),
			scoring.Round2(r.MeanRating),
			r.Entries,
		})
	}
	if err := writeRows(f, SheetLeaderboard, rows, header); err != nil {
		return nil, err
	}

	rows = [][]interface{}{{"Rank", "Game", "Total kg CO2", "Participants", "kg CO2 per participant"}}
	for i, e := range footprints {
		rows = append(rows, []interface{}{
			i + 1,
			e.Name,
			scoring.Round2(e.Footprint.Total),
			e.Footprint.ParticipantCount,
			scoring.Round2(e.Footprint.PerParticipant),
		})
	}
	if err := writeRows(f, SheetFootprint, rows, header); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("写入工作簿失败: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for idx, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, idx+1)
		if err != nil {
			return err
		}
		cells := row
		if err := f.SetSheetRow(sheet, axis, &cells); err != nil {
			return err
		}
	}

	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "B", "B", 32)
}
