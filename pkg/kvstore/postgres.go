package kvstore

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fystack/kvstream/pkg/common/enum"
	"github.com/fystack/kvstream/pkg/infra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

type pgEntry struct {
	Key       string `gorm:"primaryKey;size:1024"`
	Value     []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

type pgEntryInfo struct {
	Key       string
	Size      int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PostgresStore keeps one row per key; Set is an upsert of the whole value.
type PostgresStore struct {
	db    *gorm.DB
	table string
	start time.Time
}

func NewPostgresStore(dsn, table string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return NewPostgresStoreFromDB(db, table)
}

// NewPostgresStoreFromDB reuses an existing gorm handle and migrates the table.
func NewPostgresStoreFromDB(db *gorm.DB, table string) (*PostgresStore, error) {
	if table == "" {
		table = "kv_streams"
	}
	if err := db.Table(table).AutoMigrate(&pgEntry{}); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", table, err)
	}
	return &PostgresStore{db: db, table: table, start: time.Now()}, nil
}

func (p *PostgresStore) GetName() string {
	return string(enum.KVStoreTypePostgres)
}

func (p *PostgresStore) Get(key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	var e pgEntry
	err := p.db.Table(p.table).Where("key = ?", key).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return e.Value, nil
}

func (p *PostgresStore) Set(key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}

	now := time.Now()
	return p.db.Table(p.table).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&pgEntry{Key: key, Value: value, CreatedAt: now, UpdatedAt: now}).Error
}

func (p *PostgresStore) Delete(key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return p.db.Table(p.table).Where("key = ?", key).Delete(&pgEntry{}).Error
}

func (p *PostgresStore) List(prefix string) ([]*infra.KVPair, error) {
	var rows []pgEntry
	err := p.db.Table(p.table).
		Where("key LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").
		Order("key").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]*infra.KVPair, len(rows))
	for i, r := range rows {
		result[i] = &infra.KVPair{Key: r.Key, Value: r.Value}
	}
	return result, nil
}

func (p *PostgresStore) Info() (*infra.StoreInfo, error) {
	var rows []pgEntryInfo
	err := p.db.Table(p.table).
		Select("key, octet_length(value) AS size, created_at, updated_at").
		Order("key").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	info := &infra.StoreInfo{
		Name:      p.GetName(),
		StartTime: p.start,
		Entries:   make([]infra.EntryInfo, len(rows)),
	}
	for i, r := range rows {
		info.Entries[i] = infra.EntryInfo{
			Key:        r.Key,
			Size:       r.Size,
			CreatedAt:  r.CreatedAt,
			ModifiedAt: r.UpdatedAt,
		}
	}
	return info, nil
}

func (p *PostgresStore) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
