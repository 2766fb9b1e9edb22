package utils

import (
	"math/rand"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

func GenerateRandomChineseName(rng *rand.Rand) string {
	surname := commonSurnames[rng.Intn(len(commonSurnames))]
	nameLength := rng.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rng.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

// 由中文名生成游戏账号名，例如 "王伟" -> "wangw42"
func GenerateAccountFromChineseName(rng *rand.Rand, chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	account := ""

	for _, py := range pinyinArray {
		length := rng.Intn(len(py)) + 1
		account += py[:length]
	}

	digitsLength := rng.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		account += string(digits[rng.Intn(len(digits))])
	}

	return account
}

// 用 Fisher-Yates 洗牌算法生成 1~3 个互不相同的偏好位置
func GenerateRandomPreferredPositions(rng *rand.Rand) []domain.Position {
	positions := append([]domain.Position{}, domain.Positions...)

	for i := len(positions) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		positions[i], positions[j] = positions[j], positions[i]
	}

	n := rng.Intn(3) + 1

	return positions[:n]
}

func GenerateRandomMetrics(rng *rand.Rand) domain.PlayerMetrics {
	return domain.PlayerMetrics{
		KDA:         rng.Float64(),
		GoldPerMin:  rng.Float64(),
		XPPerMin:    rng.Float64(),
		CSPerMin:    rng.Float64(),
		HeroDamage:  rng.Float64(),
		HeroHealing: rng.Float64(),
		TowerDamage: rng.Float64(),
		WinRate:     rng.Float64(),
	}
}

// 在指定服务器中随机生成一个玩家，ID 由数据库分配
func GenerateRandomPlayer(rng *rand.Rand, cluster int32) *domain.Player {
	return &domain.Player{
		AccountID:          rng.Int63n(1_000_000_000),
		Account:            GenerateAccountFromChineseName(rng, GenerateRandomChineseName(rng)),
		Cluster:            cluster,
		SkillScore:         rng.Float64(),
		PreferredPositions: GenerateRandomPreferredPositions(rng),
		TotalMatches:       int32(rng.Intn(5000)),
		Metrics:            GenerateRandomMetrics(rng),
	}
}
