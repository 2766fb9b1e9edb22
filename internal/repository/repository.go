package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"time"

	"github.com/sysu-ecnc-dev/matchmaker/backend/internal/config"
)

type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}

//go:embed schema.sql
var schema string

// 建表语句可以重复执行
func (r *Repository) EnsureSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, schema)
	return err
}
