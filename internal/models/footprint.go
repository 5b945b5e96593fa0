package models

// Footprint 一次碳足迹计算结果
type Footprint struct {
	Total            float64 `json:"carbon_total"`
	ParticipantCount int     `json:"participant_count"`
	PerParticipant   float64 `json:"carbon_per_participant"`
}

// CurrentFootprint 返回已记录的碳足迹，未计算过时返回 nil
func (g *Game) CurrentFootprint() *Footprint {
	if g.CarbonTotal == nil {
		return nil
	}
	fp := &Footprint{Total: *g.CarbonTotal}
	if g.ParticipantCount != nil {
		fp.ParticipantCount = *g.ParticipantCount
	}
	if g.CarbonPerParticipant != nil {
		fp.PerParticipant = *g.CarbonPerParticipant
	} else {
		fp.PerParticipant = fp.Total
	}
	return fp
}
