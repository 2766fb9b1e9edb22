package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/config"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/jobstore"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/queue"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/repository"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/service"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/worker"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * 读取配置文件
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * 连接数据库
	 **********************************************/
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer pingCancel()
	if err := dbpool.PingContext(pingCtx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	/**********************************************
	 * 连接 redis
	 **********************************************/
	rdb := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:    cfg.Redis.Password,
		DB:          0,
		DialTimeout: time.Duration(cfg.Redis.ConnectTimeout) * time.Second,
	})
	defer rdb.Close()

	w := worker.New(
		service.NewMatchService(repo, cfg.MatchmakerParameters(), logger),
		jobstore.NewStore(cfg, rdb),
		time.Duration(cfg.Redis.OperationTimeout)*time.Second,
		logger,
	)

	/**********************************************
	 * 连接 RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 RabbitMQ", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法创建通道", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	q, err := queue.Declare(ch, cfg.RabbitMQ.Queue)
	if err != nil {
		logger.Error("无法声明队列", slog.String("error", err.Error()))
		return
	}

	// 每个 goroutine 同时只处理一个任务，未确认的消息数不超过并发数
	if err := ch.Qos(cfg.Worker.Concurrency, 0, false); err != nil {
		logger.Error("无法设置预取数量", slog.String("error", err.Error()))
		return
	}

	msgs, err := ch.Consume(
		q.Name, // 队列
		"",     // 消费者标识，由 RabbitMQ 自动分配
		false,  // 手动确认
		false,  // 是否独占队列
		false,  // RabbitMQ 不支持这个参数，必须为 false
		false,  // 是否不等待
		nil,    // 额外参数
	)
	if err != nil {
		logger.Error("无法消费消息", slog.String("error", err.Error()))
		os.Exit(1)
	}

	/**********************************************
	 * 启动 metrics 服务器
	 **********************************************/
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:     fmt.Sprintf(":%s", cfg.Worker.MetricsPort),
		Handler:  mux,
		ErrorLog: slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("无法启动 metrics 服务器", slog.String("error", err.Error()))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// 用于关闭 goroutine 的上下文，同时会中断正在运行的匹配
	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	for i := 0; i < cfg.Worker.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-msgs:
					if !ok {
						return
					}

					if err := w.Handle(ctx, msg.Body); err != nil {
						if errors.Is(err, worker.ErrMalformedJob) {
							logger.Error("丢弃无法解析的消息", slog.String("error", err.Error()))
							_ = msg.Nack(false, false)
							continue
						}
						if errors.Is(err, worker.ErrInterrupted) {
							logger.Warn("匹配任务被中断，重新入队", slog.String("error", err.Error()))
							_ = msg.Nack(false, true)
							continue
						}
						logger.Error("无法保存匹配任务状态", slog.String("error", err.Error()))
						_ = msg.Nack(false, true) // 将消息重新入队
						continue
					}

					_ = msg.Ack(false)
				}
			}
		}()
	}

	logger.Info("等待匹配任务...（按 CTRL+C 退出）", "concurrency", cfg.Worker.Concurrency, "metrics_port", cfg.Worker.MetricsPort)
	<-sigChan

	slog.Info("正在关闭 match worker...")
	cancel()
	wg.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer shutdownCancel()
	_ = metricsSrv.Shutdown(shutdownCtx)

	slog.Info("match worker 已成功关闭")
}
