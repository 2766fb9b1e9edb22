package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/matchmaker"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"60"` // 同步匹配可能需要较长时间
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
		Queue          string `env:"QUEUE" envDefault:"match_queue"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host             string `env:"HOST" envDefault:"localhost"`
		Port             int    `env:"PORT" envDefault:"6379"`
		Password         string `env:"PASSWORD,required"`
		ConnectTimeout   int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationTimeout int    `env:"OPERATION_TIMEOUT" envDefault:"5"`
		JobExpiration    int    `env:"JOB_EXPIRATION" envDefault:"60"` // 分钟
	} `envPrefix:"REDIS_"`
	Matchmaker struct {
		PopulationSize       int     `env:"POPULATION_SIZE" envDefault:"500"`
		Generations          int     `env:"GENERATIONS" envDefault:"50"`
		CrossoverProbability float64 `env:"CROSSOVER_PROBABILITY" envDefault:"0.7"`
		MutationProbability  float64 `env:"MUTATION_PROBABILITY" envDefault:"0.35"`
		GeneMutationRate     float64 `env:"GENE_MUTATION_RATE" envDefault:"0.05"`
		TournamentSize       int     `env:"TOURNAMENT_SIZE" envDefault:"3"`
		MaxInitAttempts      int     `env:"MAX_INIT_ATTEMPTS" envDefault:"1000"`
		Workers              int     `env:"WORKERS" envDefault:"4"`
		Timeout              int     `env:"TIMEOUT" envDefault:"30"` // 秒
	} `envPrefix:"MATCHMAKER_"`
	Worker struct {
		MetricsPort string `env:"METRICS_PORT" envDefault:"3001"`
		Concurrency int    `env:"CONCURRENCY" envDefault:"2"`
	} `envPrefix:"WORKER_"`
	Seed struct {
		CSVPath string `env:"CSV_PATH" envDefault:"./internal/seed/data/player_pool.csv"`
	} `envPrefix:"SEED_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}

// 由配置得到匹配器的默认参数
func (c *Config) MatchmakerParameters() matchmaker.Parameters {
	return matchmaker.Parameters{
		PopulationSize:       c.Matchmaker.PopulationSize,
		Generations:          c.Matchmaker.Generations,
		CrossoverProbability: c.Matchmaker.CrossoverProbability,
		MutationProbability:  c.Matchmaker.MutationProbability,
		GeneMutationRate:     c.Matchmaker.GeneMutationRate,
		TournamentSize:       c.Matchmaker.TournamentSize,
		MaxInitAttempts:      c.Matchmaker.MaxInitAttempts,
		Workers:              c.Matchmaker.Workers,
		Timeout:              time.Duration(c.Matchmaker.Timeout) * time.Second,
	}
}
