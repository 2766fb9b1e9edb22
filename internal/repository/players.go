package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/domain"
)

const selectPlayersQuery = `
	SELECT
		p.id,
		p.account_id,
		p.account,
		p.cluster,
		p.skill_score,
		p.total_matches,
		p.kda_normalized,
		p.gold_per_min_normalized,
		p.xp_per_min_normalized,
		p.cs_per_min_normalized,
		p.hero_damage_normalized,
		p.hero_healing_normalized,
		p.tower_damage_normalized,
		p.win_rate_normalized,
		p.created_at,
		ppp.position
	FROM players p
	LEFT JOIN player_preferred_positions ppp ON p.id = ppp.player_id
`

func (r *Repository) GetPlayersByCluster(cluster int32) ([]*domain.Player, error) {
	return r.queryPlayers(selectPlayersQuery+`WHERE p.cluster = $1 ORDER BY p.id, ppp.rank`, cluster)
}

func (r *Repository) GetPlayersByClusters(clusters []int32) ([]*domain.Player, error) {
	return r.queryPlayers(selectPlayersQuery+`WHERE p.cluster = ANY($1) ORDER BY p.id, ppp.rank`, clusters)
}

// 结果按玩家 ID 升序返回，保证相同种子下的匹配结果可以复现
func (r *Repository) queryPlayers(query string, args ...any) ([]*domain.Player, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]*domain.Player, 0)
	var current *domain.Player

	for rows.Next() {
		player := &domain.Player{}
		var position sql.NullInt32

		dst := []any{
			&player.ID,
			&player.AccountID,
			&player.Account,
			&player.Cluster,
			&player.SkillScore,
			&player.TotalMatches,
			&player.Metrics.KDA,
			&player.Metrics.GoldPerMin,
			&player.Metrics.XPPerMin,
			&player.Metrics.CSPerMin,
			&player.Metrics.HeroDamage,
			&player.Metrics.HeroHealing,
			&player.Metrics.TowerDamage,
			&player.Metrics.WinRate,
			&player.CreatedAt,
			&position,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if current == nil || current.ID != player.ID {
			// 说明此时是第一次查到这个玩家
			player.PreferredPositions = make([]domain.Position, 0, domain.TeamSize)
			players = append(players, player)
			current = player
		}

		if !position.Valid {
			// 说明该玩家没有任何偏好位置
			continue
		}

		current.PreferredPositions = append(current.PreferredPositions, domain.Position(position.Int32))
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return players, nil
}

// 每个服务器的玩家数量
func (r *Repository) CountPlayersByCluster() (map[int32]int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `SELECT cluster, COUNT(*) FROM players GROUP BY cluster`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int32]int)
	for rows.Next() {
		var cluster int32
		var count int
		if err := rows.Scan(&cluster, &count); err != nil {
			return nil, err
		}
		counts[cluster] = count
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

func (r *Repository) CreatePlayer(player *domain.Player) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO players (
			account_id, account, cluster, skill_score, total_matches,
			kda_normalized, gold_per_min_normalized, xp_per_min_normalized, cs_per_min_normalized,
			hero_damage_normalized, hero_healing_normalized, tower_damage_normalized, win_rate_normalized
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at
	`
	m := player.Metrics
	args := []any{
		player.AccountID, player.Account, player.Cluster, player.SkillScore, player.TotalMatches,
		m.KDA, m.GoldPerMin, m.XPPerMin, m.CSPerMin, m.HeroDamage, m.HeroHealing, m.TowerDamage, m.WinRate,
	}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&player.ID, &player.CreatedAt); err != nil {
		return err
	}

	for rank, position := range player.PreferredPositions {
		query = `
			INSERT INTO player_preferred_positions (player_id, rank, position)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, query, player.ID, rank+1, position); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
