package store

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"visitmap/internal/logger"
)

// ColoringRow：SQLite 中的一条着色记录
type ColoringRow struct {
	Bucket    string `gorm:"primaryKey;size:64"`
	RegionID  string `gorm:"primaryKey;size:128"`
	Value     string `gorm:"size:32;not null"`
	UpdatedAt time.Time
}

func (ColoringRow) TableName() string { return "visit_coloring" }

// 文档注释：SQLite 后端（纯 Go 驱动）
// 背景：单机使用时无需外部数据库；启用 WAL 降低读写互斥。
// 约束：(bucket, region_id) 为联合主键，Put 使用 ON CONFLICT 覆盖 value。
type SQLite struct {
	db *gorm.DB
}

// OpenSQLite 打开（必要时创建）数据库文件并迁移表结构
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, err
	}
	if err := db.Exec("PRAGMA journal_mode=WAL;").Error; err != nil {
		logger.L().Warn("sqlite_wal_failed", "err", err)
	}
	if err := db.AutoMigrate(&ColoringRow{}); err != nil {
		return nil, err
	}
	logger.L().Debug("sqlite_open_ok", "path", path)
	return &SQLite{db: db}, nil
}

func (s *SQLite) Load(ctx context.Context, bucket string) (map[string]string, error) {
	var rows []ColoringRow
	if err := s.db.WithContext(ctx).Where("bucket = ?", bucket).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.RegionID] = r.Value
	}
	return out, nil
}

func (s *SQLite) Put(ctx context.Context, bucket, id, value string) error {
	row := ColoringRow{Bucket: bucket, RegionID: id, Value: value}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "bucket"}, {Name: "region_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}

func (s *SQLite) Delete(ctx context.Context, bucket, id string) error {
	return s.db.WithContext(ctx).Where("bucket = ? AND region_id = ?", bucket, id).Delete(&ColoringRow{}).Error
}

func (s *SQLite) Clear(ctx context.Context, bucket string) error {
	return s.db.WithContext(ctx).Where("bucket = ?", bucket).Delete(&ColoringRow{}).Error
}

func (s *SQLite) Buckets(ctx context.Context) ([]string, error) {
	var out []string
	err := s.db.WithContext(ctx).Model(&ColoringRow{}).Distinct("bucket").Order("bucket").Pluck("bucket", &out).Error
	return out, err
}

func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
