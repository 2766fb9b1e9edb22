package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/domain"
)

// player_pool.csv 中必须包含的列
var requiredHeaders = []string{
	"account_id",
	"account",
	"cluster",
	"skill_score",
	"preferred_positions",
}

type PlayerCreator interface {
	CreatePlayer(player *domain.Player) error
}

// 解析形如 "[1, 3, 5]" 的偏好位置
func ParsePreferredPositions(s string) ([]domain.Position, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("偏好位置格式错误: %q", s)
	}

	s = strings.TrimSpace(s[1 : len(s)-1])
	if s == "" {
		return nil, fmt.Errorf("偏好位置为空")
	}

	parts := strings.Split(s, ",")
	positions := make([]domain.Position, 0, len(parts))
	seen := make(map[domain.Position]bool, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(part), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("偏好位置格式错误: %q", s)
		}

		position := domain.Position(v)
		if !position.Valid() {
			return nil, fmt.Errorf("偏好位置 %d 不存在", v)
		}
		if seen[position] {
			// 原始数据中偶尔会有重复，保留第一次出现的位置
			continue
		}
		seen[position] = true
		positions = append(positions, position)
	}

	return positions, nil
}

// strconv.ParseFloat 会接受 "NaN" 和 "Inf"，这些值不能参与匹配
func parseFiniteFloat(value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q 不是有限数", value)
	}
	return v, nil
}

func parseFloat(record map[string]string, key string) (float64, error) {
	value, ok := record[key]
	if !ok || value == "" {
		return 0, nil
	}
	return parseFiniteFloat(value)
}

func ParsePlayerRecord(record map[string]string) (*domain.Player, error) {
	accountID, err := strconv.ParseInt(record["account_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("account_id 格式错误: %w", err)
	}

	cluster, err := strconv.ParseInt(record["cluster"], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("cluster 格式错误: %w", err)
	}

	skillScore, err := parseFiniteFloat(record["skill_score"])
	if err != nil {
		return nil, fmt.Errorf("skill_score 格式错误: %w", err)
	}

	positions, err := ParsePreferredPositions(record["preferred_positions"])
	if err != nil {
		return nil, err
	}

	player := &domain.Player{
		AccountID:          accountID,
		Account:            record["account"],
		Cluster:            int32(cluster),
		SkillScore:         skillScore,
		PreferredPositions: positions,
	}

	if v := record["total_matches"]; v != "" {
		total, err := parseFiniteFloat(v) // 导出的数据中可能是 "123.0"
		if err != nil {
			return nil, fmt.Errorf("total_matches 格式错误: %w", err)
		}
		player.TotalMatches = int32(total)
	}

	metrics := []struct {
		key string
		dst *float64
	}{
		{"kda_normalized", &player.Metrics.KDA},
		{"gold_per_min_normalized", &player.Metrics.GoldPerMin},
		{"xp_per_min_normalized", &player.Metrics.XPPerMin},
		{"cs_per_min_normalized", &player.Metrics.CSPerMin},
		{"hero_damage_normalized", &player.Metrics.HeroDamage},
		{"hero_healing_normalized", &player.Metrics.HeroHealing},
		{"tower_damage_normalized", &player.Metrics.TowerDamage},
		{"win_rate_normalized", &player.Metrics.WinRate},
	}
	for _, m := range metrics {
		v, err := parseFloat(record, m.key)
		if err != nil {
			return nil, fmt.Errorf("%s 格式错误: %w", m.key, err)
		}
		*m.dst = v
	}

	return player, nil
}

// ReadPlayers 按表头读取玩家数据，格式错误的行会被跳过并记录日志
func ReadPlayers(r io.Reader) ([]*domain.Player, error) {
	reader := csv.NewReader(r)

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	for _, required := range requiredHeaders {
		found := false
		for _, header := range headers {
			if header == required {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("没有找到 %s 列", required)
		}
	}

	players := make([]*domain.Player, 0)
	line := 1
	for {
		row, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("读取文件失败: %w", err)
		}
		line++

		record := make(map[string]string, len(headers))
		for i, value := range row {
			if i < len(headers) {
				record[headers[i]] = value
			}
		}

		player, err := ParsePlayerRecord(record)
		if err != nil {
			slog.Warn("跳过格式错误的行", "line", line, "error", err)
			continue
		}
		players = append(players, player)
	}

	return players, nil
}

// SeedPlayersFromCSV 导入 player_pool.csv，已经存在的玩家会被跳过
func SeedPlayersFromCSV(c PlayerCreator, path string) (inserted int, skipped int, err error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer file.Close()

	players, err := ReadPlayers(file)
	if err != nil {
		return 0, 0, err
	}

	return InsertPlayers(c, players)
}

func InsertPlayers(c PlayerCreator, players []*domain.Player) (inserted int, skipped int, err error) {
	for _, player := range players {
		if err := c.CreatePlayer(player); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.ConstraintName == "players_account_id_key" {
				// 说明该玩家已经导入过了
				skipped++
				continue
			}
			return inserted, skipped, err
		}
		inserted++
	}

	return inserted, skipped, nil
}
