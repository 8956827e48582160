package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/idilsaglam/circles/internal/model"
	"github.com/idilsaglam/circles/internal/store"
)

// circleRow is the table layout. Name carries a unique index.
type circleRow struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"uniqueIndex;not null"`
	Desc      string `gorm:"column:description;not null"`
	Avatar    string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (circleRow) TableName() string { return "circles" }

func (r circleRow) circle() model.Circle {
	return model.Circle{ID: r.ID, Name: r.Name, Desc: r.Desc, Avatar: r.Avatar}
}

type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// Open opens (or creates) the sqlite database at path and migrates it.
// ":memory:" gives a private in-memory database.
func Open(path string) (*Store, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1) // sqlite
	sqlDB.SetConnMaxLifetime(0)

	if err := db.AutoMigrate(&circleRow{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// paginate is a GORM scope applying offset and limit from p.
func paginate(p model.PageParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.PageSize)
	}
}

func filter(p model.PageParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p.Name != "" {
			db = db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(p.Name)+"%")
		}
		if p.Desc != "" {
			db = db.Where("LOWER(description) LIKE ?", "%"+strings.ToLower(p.Desc)+"%")
		}
		return db
	}
}

func (s *Store) List(ctx context.Context, p model.PageParams) ([]model.Circle, int, error) {
	p = p.Normalize()
	var total int64
	if err := s.db.WithContext(ctx).Model(&circleRow{}).Scopes(filter(p)).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count circles: %w", err)
	}
	var rows []circleRow
	err := s.db.WithContext(ctx).
		Scopes(filter(p), paginate(p)).
		Order("created_at asc, id asc").
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list circles: %w", err)
	}
	out := make([]model.Circle, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.circle())
	}
	return out, int(total), nil
}

func (s *Store) Get(ctx context.Context, id string) (model.Circle, error) {
	var r circleRow
	if err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return model.Circle{}, translate(err)
	}
	return r.circle(), nil
}

func (s *Store) Create(ctx context.Context, d model.NewDraft) (model.Circle, error) {
	r := circleRow{ID: uuid.NewString(), Name: d.Name, Desc: d.Desc, Avatar: d.Avatar}
	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return model.Circle{}, translate(err)
	}
	return r.circle(), nil
}

func (s *Store) Update(ctx context.Context, p model.ExistingPatch) (model.Circle, error) {
	var out model.Circle
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r circleRow
		if err := tx.First(&r, "id = ?", p.ID).Error; err != nil {
			return err
		}
		next := p.Apply(r.circle())
		r.Name, r.Desc, r.Avatar = next.Name, next.Desc, next.Avatar
		if err := tx.Save(&r).Error; err != nil {
			return err
		}
		out = r.circle()
		return nil
	})
	if err != nil {
		return model.Circle{}, translate(err)
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Where("id IN ?", ids).Delete(&circleRow{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete circles: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey),
		strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return store.ErrConflict
	}
	return err
}
