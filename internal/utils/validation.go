package utils

import (
	"errors"
	"fmt"
	"slices"

	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/domain"
)

func ValidateParty(party []domain.PartyMember) error {
	if len(party) > domain.TeamSize {
		return fmt.Errorf("组队人数不能超过 %d 人", domain.TeamSize)
	}

	seen := make(map[domain.Position]bool, len(party))
	for i, member := range party {
		if member.Account == "" {
			return fmt.Errorf("第 %d 名队员的账号不能为空", i+1)
		}
		if !member.Position.Valid() {
			return fmt.Errorf("第 %d 名队员选择的位置 %d 不存在", i+1, member.Position)
		}
		if seen[member.Position] {
			return fmt.Errorf("位置 %s 被多名队员选择", member.Position)
		}
		seen[member.Position] = true
	}

	return nil
}

func ValidateMatchRequest(req *domain.MatchRequest) error {
	servers, ok := domain.Regions[req.Region]
	if !ok {
		return fmt.Errorf("地区 %s 不存在", req.Region)
	}
	if req.Server != 0 && !slices.Contains(servers, req.Server) {
		return fmt.Errorf("服务器 %d 不属于地区 %s", req.Server, req.Region)
	}
	if req.Server != 0 && req.RandomServer {
		return errors.New("指定服务器时不能同时要求随机服务器")
	}

	return ValidateParty(req.Party)
}

// 检查匹配结果：10 个位置、玩家互不相同、组队玩家都在同一支队伍
func ValidateMatchResult(result *domain.MatchResult) error {
	if len(result.Slots) != 2*domain.TeamSize {
		return fmt.Errorf("对局人数为 %d，应为 %d", len(result.Slots), 2*domain.TeamSize)
	}

	seen := make(map[int64]bool, len(result.Slots))
	for _, slot := range result.Slots {
		if seen[slot.PlayerID] {
			return fmt.Errorf("玩家 %d 在对局中出现了多次", slot.PlayerID)
		}
		seen[slot.PlayerID] = true

		if slot.IsParty && slot.Team != result.PartyTeam {
			return fmt.Errorf("组队玩家 %s 不在组队所在的队伍中", slot.Account)
		}
	}

	return nil
}
