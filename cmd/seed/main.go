package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/config"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/domain"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/repository"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/seed"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var cluster int
	var csvPath string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机玩家, 2: 导入 player_pool.csv)")
	flag.IntVar(&n, "n", 50, "要插入的玩家数量")
	flag.IntVar(&cluster, "cluster", 0, "随机玩家所在的服务器，0 表示随机选择")
	flag.StringVar(&csvPath, "csv", "", "CSV 文件路径，为空时使用配置中的路径")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)
	if err := repo.EnsureSchema(); err != nil {
		logger.Error("无法创建数据表", "error", err)
		return
	}

	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的玩家数量")
			return
		}
		if cluster != 0 && domain.RegionOf(int32(cluster)) == "" {
			slog.Error("指定的服务器不存在", slog.Int("cluster", cluster))
			return
		}

		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		clusters := make([]int32, 0)
		for _, name := range domain.RegionNames() {
			clusters = append(clusters, domain.Regions[name]...)
		}

		players := make([]*domain.Player, 0, n)
		for i := 0; i < n; i++ {
			c := int32(cluster)
			if c == 0 {
				c = clusters[rng.Intn(len(clusters))]
			}
			players = append(players, utils.GenerateRandomPlayer(rng, c))
		}

		inserted, skipped, err := seed.InsertPlayers(repo, players)
		if err != nil {
			slog.Error("无法插入玩家", slog.String("error", err.Error()))
		}
		slog.Info("插入随机玩家完成", slog.Int("count", inserted), slog.Int("skipped", skipped))
	case 2:
		if csvPath == "" {
			csvPath = cfg.Seed.CSVPath
		}

		inserted, skipped, err := seed.SeedPlayersFromCSV(repo, csvPath)
		if err != nil {
			slog.Error("导入玩家数据失败", slog.String("error", err.Error()))
		}
		slog.Info("导入玩家数据完成", slog.Int("count", inserted), slog.Int("skipped", skipped))
	default:
		slog.Error("指定的操作非法")
	}
}
