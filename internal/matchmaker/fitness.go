package matchmaker

import (
	"math"

	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/domain"
)

const (
	positionSkillWeight    = 0.5
	firstChoiceMissPenalty = 20
	preferenceMissPenalty  = 10
)

/**
 * 计算对局的各项惩罚
 * penalty = teamSkillDiff + 0.5 * positionSkillDiff + 20 * firstChoiceMisses + 10 * preferenceMisses
 * 其中:
 * 		1. teamSkillDiff 为两队技术分总和之差的绝对值
 * 		2. positionSkillDiff 为两队同一位置的技术分之差的绝对值之和
 * 		3. firstChoiceMisses 为没有被分配到最想打的位置的人数
 * 		4. preferenceMisses 为被分配到的位置不在偏好列表中的人数
 */
func (p *Pool) Breakdown(ids []int64) (domain.FitnessBreakdown, error) {
	if err := p.Validate(ids); err != nil {
		return domain.FitnessBreakdown{}, err
	}

	b := domain.FitnessBreakdown{}
	radiantSkill, direSkill := 0.0, 0.0

	for i, id := range ids {
		player := p.players[id]
		team, position := RoleOf(i)

		if team == domain.TeamRadiant {
			radiantSkill += player.SkillScore
		} else {
			direSkill += player.SkillScore
		}

		if player.FirstChoice() != position {
			b.FirstChoiceMisses++
		}
		if !player.Prefers(position) {
			b.PreferenceMisses++
		}
	}

	for k := 0; k < domain.TeamSize; k++ {
		radiant := p.players[ids[k]]
		dire := p.players[ids[k+domain.TeamSize]]
		b.PositionSkillDiff += math.Abs(radiant.SkillScore - dire.SkillScore)
	}
	b.TeamSkillDiff = math.Abs(radiantSkill - direSkill)

	b.Penalty = b.TeamSkillDiff +
		positionSkillWeight*b.PositionSkillDiff +
		firstChoiceMissPenalty*float64(b.FirstChoiceMisses) +
		preferenceMissPenalty*float64(b.PreferenceMisses)

	return b, nil
}

// Evaluate 计算对局的适应度，越大越好，取值范围 (0, 1]
// 不合法的对局适应度为负无穷，保证在选择中总是被淘汰
func (p *Pool) Evaluate(ids []int64) float64 {
	b, err := p.Breakdown(ids)
	if err != nil {
		return math.Inf(-1)
	}
	return 1 / (1 + b.Penalty)
}
