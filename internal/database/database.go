package database

import (
	"time"

	"github.com/intrpom/Kurzy-sub001/config"
	"github.com/intrpom/Kurzy-sub001/internal/logging"
	"github.com/intrpom/Kurzy-sub001/internal/model"
	"github.com/intrpom/Kurzy-sub001/packages/database"

	"gorm.io/gorm"
)

var (
	PostgresDB *gorm.DB
	RedisDB    *database.RedisClient
)

// InitDatabase connects Postgres and Redis from config.Conf.
func InitDatabase() error {
	databaseConf := config.Conf.Database
	redisConf := config.Conf.Redis

	var err error
	PostgresDB, err = database.InitPostgres(
		&database.PostgresConfig{
			ServiceName:     logging.ServiceName,
			Username:        databaseConf.Username,
			Password:        databaseConf.Password,
			Host:            databaseConf.Host,
			Port:            databaseConf.Port,
			Database:        databaseConf.Database,
			SSLMode:         databaseConf.SSLMode,
			LogLevel:        databaseConf.LogLevel,
			MaxIdleConns:    databaseConf.MaxIdleConns,
			MaxOpenConns:    databaseConf.MaxOpenConns,
			ConnMaxLifetime: time.Duration(databaseConf.MaxLifetime) * time.Second,
		},
	)
	if err != nil {
		return err
	}

	if databaseConf.AutoMigrate {
		if err := model.InitTable(PostgresDB); err != nil {
			return err
		}
	}

	RedisDB, err = database.InitRedis(
		&database.RedisConfig{
			ServiceName: logging.ServiceName,
			Host:        redisConf.Host,
			Port:        redisConf.Port,
			Password:    redisConf.Password,
			DB:          redisConf.DB,
			PoolSize:    redisConf.PoolSize,
		},
	)
	return err
}

// Close releases both pools.
func Close() {
	if PostgresDB != nil {
		if sqlDB, err := PostgresDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if RedisDB != nil {
		_ = RedisDB.Close()
	}
}
