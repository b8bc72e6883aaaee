package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"time"

	"log/slog"

	"github.com/seoultrader/server/trader/database/models"
	"github.com/seoultrader/server/trader/logger"
	"github.com/uptrace/bun"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

const (
	defaultConnTimeout   = 5 * time.Second
	defaultMaxRetries    = 3
	defaultRetryInterval = time.Second
)

type DBConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	Database     string `toml:"database"`
	PoolSize     int    `toml:"pool_size"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	MaxLifetime  int    `toml:"max_lifetime"`
}

// DB bundles the pgx pool (health probes, raw queries) with the bun
// instance every repository runs on.
type DB struct {
	pool  *pgxpool.Pool
	bunDB *bun.DB
}

func New(ctx context.Context, cfg DBConfig) (*DB, error) {
	// Probe reachability before handing the DSN to the pool so a down
	// database fails fast with a clear error.
	var conn net.Conn
	var err error

	addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))
	for i := 0; i < defaultMaxRetries; i++ {
		conn, err = net.DialTimeout("tcp", addr, defaultConnTimeout)
		if err == nil {
			break
		}
		time.Sleep(defaultRetryInterval)
	}
	if err != nil {
		return nil, fmt.Errorf("database server unreachable after %d attempts: %w", defaultMaxRetries, err)
	}
	conn.Close()

	poolConfig, err := pgxpool.ParseConfig(buildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	if cfg.PoolSize > 0 {
		poolConfig.MaxConns = int32(cfg.PoolSize)
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = time.Duration(cfg.MaxLifetime) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return &DB{pool: pool, bunDB: newBunDB(pool)}, nil
}

func buildConnString(cfg DBConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?connect_timeout=5",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
	)
}

func newBunDB(pool *pgxpool.Pool) *bun.DB {
	sslMode := os.Getenv("PG_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		pool.Config().ConnConfig.User,
		pool.Config().ConnConfig.Password,
		pool.Config().ConnConfig.Host,
		pool.Config().ConnConfig.Port,
		pool.Config().ConnConfig.Database,
		sslMode,
	)

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	bunDB := bun.NewDB(sqldb, pgdialect.New())
	bunDB.AddQueryHook(queryHook{})
	return bunDB
}

type queryHook struct{}

func (queryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (queryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	err := event.Err
	// A row miss is an outcome, not a query failure.
	if err == sql.ErrNoRows {
		err = nil
	}
	logger.LogQuery(event.Query, time.Since(event.StartTime), err)
}

func (db *DB) BunDB() *bun.DB {
	return db.bunDB
}

// Ping checks both connections; used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.pool.Ping(ctx); err != nil {
		return fmt.Errorf("pgx pool ping: %w", err)
	}
	if err := db.bunDB.PingContext(ctx); err != nil {
		return fmt.Errorf("bun ping: %w", err)
	}
	return nil
}

func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
	if db.bunDB != nil {
		db.bunDB.Close()
	}
}

// InitializeSchema creates all required tables and seeds the static
// catalogs (level thresholds, achievements) if they are empty.
func (db *DB) InitializeSchema(ctx context.Context) error {
	start := time.Now()

	// Order respects foreign-key-ish dependencies.
	tables := []interface{}{
		(*models.Player)(nil),
		(*models.CharacterProgress)(nil),
		(*models.LevelThreshold)(nil),
		(*models.Item)(nil),
		(*models.InventoryItem)(nil),
		(*models.Merchant)(nil),
		(*models.MerchantStock)(nil),
		(*models.Relationship)(nil),
		(*models.Trade)(nil),
		(*models.Achievement)(nil),
		(*models.AchievementProgress)(nil),
		(*models.MarketPrice)(nil),
	}

	for _, table := range tables {
		if _, err := db.bunDB.NewCreateTable().
			Model(table).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", table, err)
		}
	}

	if err := db.seedLevelThresholds(ctx); err != nil {
		return fmt.Errorf("failed to seed level thresholds: %w", err)
	}
	if err := db.seedAchievements(ctx); err != nil {
		return fmt.Errorf("failed to seed achievements: %w", err)
	}

	slog.Info("Database schema initialized",
		slog.String("type", "db"),
		slog.Int("tables", len(tables)),
		slog.Duration("took", time.Since(start)))
	return nil
}

func (db *DB) seedLevelThresholds(ctx context.Context) error {
	count, err := db.bunDB.NewSelect().
		Model((*models.LevelThreshold)(nil)).
		Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	// Cumulative experience curve. Each level grants 2 stat points and
	// 1 skill point.
	thresholds := make([]*models.LevelThreshold, 0, 49)
	required := int64(0)
	for level := 2; level <= 50; level++ {
		required += int64(level-1) * 100
		thresholds = append(thresholds, &models.LevelThreshold{
			Level:       level,
			RequiredExp: required,
			StatPoints:  2,
			SkillPoints: 1,
		})
	}

	_, err = db.bunDB.NewInsert().Model(&thresholds).Exec(ctx)
	return err
}

func (db *DB) seedAchievements(ctx context.Context) error {
	count, err := db.bunDB.NewSelect().
		Model((*models.Achievement)(nil)).
		Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	achievements := []*models.Achievement{
		{AchievementID: "first_trade", Name: "첫 거래", Description: "Complete your first trade", ConditionType: models.ConditionTradeCount, Target: 1, RewardKind: models.RewardCurrency, RewardAmount: 1000},
		{AchievementID: "trader_10", Name: "단골 손님", Description: "Complete 10 trades", ConditionType: models.ConditionTradeCount, Target: 10, RewardKind: models.RewardCurrency, RewardAmount: 5000},
		{AchievementID: "trader_100", Name: "시장의 큰손", Description: "Complete 100 trades", ConditionType: models.ConditionTradeCount, Target: 100, RewardKind: models.RewardTitle, RewardLabel: "Market Mogul"},
		{AchievementID: "seller_100k", Name: "장사꾼", Description: "Earn 100,000 won from sales", ConditionType: models.ConditionSellRevenue, Target: 100000, RewardKind: models.RewardCurrency, RewardAmount: 10000},
		{AchievementID: "level_10", Name: "성장하는 상인", Description: "Reach level 10", ConditionType: models.ConditionLevel, Target: 10, RewardKind: models.RewardExperience, RewardAmount: 500},
		{AchievementID: "stats_60", Name: "균형 잡힌 상인", Description: "Reach 60 total base stats", ConditionType: models.ConditionStatTotal, Target: 60, RewardKind: models.RewardCurrency, RewardAmount: 20000},
		{AchievementID: "collector_20", Name: "수집가", Description: "Own 20 distinct item types", ConditionType: models.ConditionDistinctItems, Target: 20, RewardKind: models.RewardCosmetic, RewardLabel: "collector_badge"},
		{AchievementID: "explorer_5", Name: "서울 탐험가", Description: "Trade in 5 different districts", ConditionType: models.ConditionDistinctDistricts, Target: 5, RewardKind: models.RewardCurrency, RewardAmount: 15000},
		{AchievementID: "friends_3", Name: "마당발", Description: "Befriend 3 merchants", ConditionType: models.ConditionMerchantFriends, Target: 3, RewardKind: models.RewardTitle, RewardLabel: "Well Connected"},
		{AchievementID: "negotiator_25", Name: "협상가", Description: "Close 25 discounted deals", ConditionType: models.ConditionNegotiations, Target: 25, RewardKind: models.RewardExperience, RewardAmount: 1000},
	}

	_, err = db.bunDB.NewInsert().Model(&achievements).Exec(ctx)
	return err
}
