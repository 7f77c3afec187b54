// Package db はGORMによるデータベース接続の初期化を提供します。
package db

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	gmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Config はデータベース接続設定です。
// DSN が空の場合は Host/Port/User/Password/Name から組み立てます。
type Config struct {
	Driver        string
	DSN           string
	Host          string
	Port          string
	User          string
	Password      string
	Name          string
	InstanceName  string // Cloud SQL instance (mysql only)
	RunMigrations bool
	ConnectWait   time.Duration
}

// BuildDSN はドライバーごとの接続文字列を生成します。
func BuildDSN(cfg Config) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	switch cfg.Driver {
	case DriverPostgres:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
	case DriverMySQL:
		if cfg.InstanceName != "" {
			return fmt.Sprintf("%s:%s@unix(/cloudsql/%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
				cfg.User, cfg.Password, cfg.InstanceName, cfg.Name)
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
	default:
		if cfg.Name == "" {
			return "file:stock_stream.db?_foreign_keys=on"
		}
		return cfg.Name
	}
}

func dialector(cfg Config) (gorm.Dialector, error) {
	dsn := BuildDSN(cfg)
	switch cfg.Driver {
	case DriverPostgres:
		return postgres.Open(dsn), nil
	case DriverMySQL:
		return gmysql.Open(dsn), nil
	case DriverSQLite, "":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
}

// Open はデータベースに接続し、必要に応じてマイグレーションを実行します。
// 接続に失敗した場合は ConnectWait の間リトライします（コンテナ起動順の差を吸収するため）。
func Open(cfg Config, models ...any) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	gcfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}

	var db *gorm.DB
	deadline := time.Now().Add(cfg.ConnectWait)
	for {
		db, err = gorm.Open(d, gcfg)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed: %w", err)
		}
		slog.Warn("db connect failed, retrying", "driver", cfg.Driver, "error", err)
		time.Sleep(3 * time.Second)
	}

	if cfg.RunMigrations && len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}

	slog.Info("db connected", "driver", cfg.Driver)
	return db, nil
}

// IsDuplicateKey はユニーク制約違反のエラーかどうかを判定します。
// TranslateError が有効なら gorm.ErrDuplicatedKey に変換済みですが、
// ドライバー固有のエラーがそのまま届く経路にも対応します。
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// MySQLエラー1062: ユニークキーの重複エントリ
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	// PostgreSQL unique_violation
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
