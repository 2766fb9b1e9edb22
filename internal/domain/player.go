package domain

import "time"

// 玩家的各项表现指标，均已归一化到 [0, 1]，仅用于展示
type PlayerMetrics struct {
	KDA         float64 `json:"kda"`
	GoldPerMin  float64 `json:"goldPerMin"`
	XPPerMin    float64 `json:"xpPerMin"`
	CSPerMin    float64 `json:"csPerMin"`
	HeroDamage  float64 `json:"heroDamage"`
	HeroHealing float64 `json:"heroHealing"`
	TowerDamage float64 `json:"towerDamage"`
	WinRate     float64 `json:"winRate"`
}

type Player struct {
	ID                 int64         `json:"id"`
	AccountID          int64         `json:"accountID"`
	Account            string        `json:"account"`
	Cluster            int32         `json:"cluster"` // 服务器 ID，只有同一个服务器的玩家才能被匹配到一起
	SkillScore         float64       `json:"skillScore"`
	PreferredPositions []Position    `json:"preferredPositions"` // 按偏好程度从高到低排列
	TotalMatches       int32         `json:"totalMatches"`
	Metrics            PlayerMetrics `json:"metrics"`
	CreatedAt          time.Time     `json:"createdAt"`
}

// 玩家最想打的位置
func (p *Player) FirstChoice() Position {
	if len(p.PreferredPositions) == 0 {
		return 0
	}
	return p.PreferredPositions[0]
}

func (p *Player) Prefers(position Position) bool {
	for _, pp := range p.PreferredPositions {
		if pp == position {
			return true
		}
	}
	return false
}
