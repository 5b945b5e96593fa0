// Package carbon 根据能耗、材料、运输估算游戏的碳足迹
package carbon

import (
	"sort"

	apperrors "github.com/wfunc/serious-game/internal/errors"
	"github.com/wfunc/serious-game/internal/models"
)

// 排放系数（kg CO2）
const (
	EnergyFactor    = 0.233 // 每 kWh
	MaterialsFactor = 2.5   // 每 kg 材料
	TransportFactor = 0.1   // 每 km
)

// Input 估算输入
type Input struct {
	EnergyKWh        float64 `json:"energy_kwh"`
	MaterialsKg      float64 `json:"materials_kg"`
	TransportKm      float64 `json:"transport_km"`
	ParticipantCount int     `json:"participant_count"`
}

// Validate 所有输入不得为负
func (in Input) Validate() error {
	switch {
	case in.EnergyKWh < 0:
		return apperrors.Validation("能耗不能为负: %v", in.EnergyKWh)
	case in.MaterialsKg < 0:
		return apperrors.Validation("材料重量不能为负: %v", in.MaterialsKg)
	case in.TransportKm < 0:
		return apperrors.Validation("运输距离不能为负: %v", in.TransportKm)
	case in.ParticipantCount < 0:
		return apperrors.Validation("参与人数不能为负: %d", in.ParticipantCount)
	}
	return nil
}

// Estimate 计算总排放与人均排放
// 参与人数为 0 时人均排放等于总排放
func Estimate(in Input) (models.Footprint, error) {
	if err := in.Validate(); err != nil {
		return models.Footprint{}, err
	}

	total := in.EnergyKWh*EnergyFactor + in.MaterialsKg*MaterialsFactor + in.TransportKm*TransportFactor
	perParticipant := total
	if in.ParticipantCount > 0 {
		perParticipant = total / float64(in.ParticipantCount)
	}

	return models.Footprint{
		Total:            total,
		ParticipantCount: in.ParticipantCount,
		PerParticipant:   perParticipant,
	}, nil
}

// Entry 碳足迹排行条目
type Entry struct {
	GameID    string           `json:"game_id"`
	Name      string           `json:"name"`
	Footprint models.Footprint `json:"footprint"`
}

// RankByTotal 按总排放升序，未计算的游戏不参与
func RankByTotal(games []*models.Game) []Entry {
	return rankBy(games, func(fp models.Footprint) float64 { return fp.Total })
}

// RankByPerParticipant 按人均排放升序，未计算的游戏不参与
func RankByPerParticipant(games []*models.Game) []Entry {
	return rankBy(games, func(fp models.Footprint) float64 { return fp.PerParticipant })
}

func rankBy(games []*models.Game, key func(models.Footprint) float64) []Entry {
	entries := make([]Entry, 0, len(games))
	for _, game := range games {
		fp := game.CurrentFootprint()
		if fp == nil {
			continue
		}
		entries = append(entries, Entry{GameID: game.ID, Name: game.Name, Footprint: *fp})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return key(entries[i].Footprint) < key(entries[j].Footprint)
	})
	return entries
}
