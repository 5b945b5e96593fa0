// Package report 排行榜图表与表格导出
package report

import (
	"bytes"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"github.com/wfunc/serious-game/internal/scoring"
)

const (
	chartWidth  = 1024
	chartHeight = 512
	maxBarWidth = 80
)

var (
	barColor        = drawing.ColorFromHex("2e7d32")
	backgroundColor = drawing.ColorWhite
	textColor       = drawing.ColorFromHex("263238")
)

// LeaderboardChart 排行榜柱状图（PNG），柱高为综合得分
func LeaderboardChart(rankings []scoring.Ranking) ([]byte, error) {
	if len(rankings) == 0 {
		return renderPlaceholder("No scored games yet")
	}

	bars := make([]chart.Value, 0, len(rankings))
	for _, r := range rankings {
		bars = append(bars, chart.Value{
			Label: r.Name,
			Value: r.Average,
			Style: chart.Style{
				FillColor:   barColor,
				StrokeColor: barColor,
			},
		})
	}

	barWidth := (chartWidth - 100) / len(bars) / 2
	if barWidth > maxBarWidth {
		barWidth = maxBarWidth
	}
	if barWidth < 4 {
		barWidth = 4
	}

	graph := chart.BarChart{
		Title:  "Game leaderboard",
		Width:  chartWidth,
		Height: chartHeight,
		Background: chart.Style{
			Padding:   chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
			FillColor: backgroundColor,
		},
		TitleStyle: chart.Style{FontColor: textColor},
		BarWidth:   barWidth,
		BarSpacing: barWidth,
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: 0, Max: 1},
			ValueFormatter: func(v interface{}) string { return chart.FloatValueFormatterWithFormat(v, "%.2f") },
			Style:          chart.Style{FontColor: textColor},
		},
		XAxis: chart.Style{FontColor: textColor},
		Bars:  bars,
	}

	buffer := bytes.NewBuffer(nil)
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func renderPlaceholder(msg string) ([]byte, error) {
	graph := chart.Chart{
		Width:  400,
		Height: 200,
		Background: chart.Style{
			FillColor: backgroundColor,
		},
		Canvas: chart.Style{
			FillColor: backgroundColor,
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, defaults chart.Style) {
				r.SetFontColor(textColor)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				r.Text(msg, (cb.Width()-tb.Width())/2, (cb.Height()+tb.Height())/2)
			},
		},
	}
	buffer := bytes.NewBuffer(nil)
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
