package matchmaker

import (
	"math/rand"

	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/domain"
)

// BuildMatchResult 将运行结果整理成对外展示的格式
// 如果有组队玩家，随机选择一支队伍，组队玩家按各自选择的位置替换该队伍中对应位置的展示信息
func BuildMatchResult(res *Result, pool *Pool, party []domain.PartyMember, rng *rand.Rand) *domain.MatchResult {
	// res.Best 一定是合法的对局，所以这里不会出错
	breakdown, _ := pool.Breakdown(res.Best.ids)

	mr := &domain.MatchResult{
		Cluster:        res.Cluster,
		Region:         domain.RegionOf(res.Cluster),
		Fitness:        res.Best.fitness,
		FitnessPercent: res.Best.fitness * 100,
		Breakdown:      breakdown,
		Slots:          make([]domain.MatchSlot, 0, MatchSize),
		History:        res.History,
		PopulationSize: len(res.Population),
		Seed:           res.Seed,
		ElapsedMs:      res.Elapsed.Milliseconds(),
	}

	for i, id := range res.Best.ids {
		player := pool.players[id]
		team, position := RoleOf(i)

		mr.Slots = append(mr.Slots, domain.MatchSlot{
			Slot:               i + 1,
			Team:               team,
			Position:           position,
			PositionName:       position.String(),
			PlayerID:           player.ID,
			Account:            player.Account,
			SkillScore:         player.SkillScore,
			PreferredPositions: player.PreferredPositions,
			TotalMatches:       player.TotalMatches,
			Metrics:            player.Metrics,
			FirstChoice:        player.FirstChoice() == position,
			Preferred:          player.Prefers(position),
		})
	}

	if len(party) == 0 {
		return mr
	}

	mr.PartyTeam = domain.TeamRadiant
	offset := 0
	if rng.Intn(2) == 1 {
		mr.PartyTeam = domain.TeamDire
		offset = domain.TeamSize
	}

	for _, member := range party {
		if !member.Position.Valid() {
			continue
		}
		slot := &mr.Slots[offset+int(member.Position)-1]
		slot.Account = member.Account
		slot.IsParty = true
	}

	return mr
}
