package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anachak/anachak/internal/access"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store implements Database on top of any gorm dialector
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

var _ Database = (*Store)(nil)

func openStore(dialector gorm.Dialector, lg *zap.Logger) (*Store, error) {
	if lg == nil {
		lg = zap.NewNop()
	}
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Store{db: gormDB, logger: lg.Named("database")}, nil
}

// Migrate creates or updates every table
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(allModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type scopeFn = func(*gorm.DB) *gorm.DB

// translateErr maps driver errors onto the package sentinels
func translateErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "Duplicate entry") {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func listPage[T any](db *gorm.DB, page access.Page, order string, preloads []string, scopes ...scopeFn) ([]*T, int64, error) {
	var total int64
	if err := db.Model(new(T)).Scopes(scopes...).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	q := db.Model(new(T)).Scopes(scopes...)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	rows := make([]*T, 0)
	if err := q.Scopes(paginate(page)).Order(order).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func listAll[T any](db *gorm.DB, order string, preloads []string, scopes ...scopeFn) ([]*T, error) {
	q := db.Model(new(T)).Scopes(scopes...)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	rows := make([]*T, 0)
	if err := q.Order(order).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func first[T any](db *gorm.DB, table string, id uint, preloads []string, scopes ...scopeFn) (*T, error) {
	q := db.Model(new(T)).Scopes(scopes...)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	var row T
	if err := q.Where(table+".id = ?", id).First(&row).Error; err != nil {
		return nil, translateErr(err)
	}
	return &row, nil
}

func deleteOne[T any](db *gorm.DB, table string, id uint, scopes ...scopeFn) error {
	res := db.Scopes(scopes...).Where(table+".id = ?", id).Delete(new(T))
	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ensureUnused fails with ErrInUse when any row of T has column = id
func ensureUnused[T any](db *gorm.DB, column string, id uint) error {
	var n int64
	if err := db.Model(new(T)).Where(column+" = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrInUse
	}
	return nil
}

// exists reports ErrNotFound unless a row of T with id is visible through scopes
func exists[T any](db *gorm.DB, table string, id uint, scopes ...scopeFn) error {
	var n int64
	if err := db.Model(new(T)).Scopes(scopes...).Where(table+".id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// updateFields writes the selected columns of value, zero values included
func updateFields[T any](db *gorm.DB, table string, id uint, value *T, fields []string, scopes ...scopeFn) error {
	if err := exists[T](db, table, id, scopes...); err != nil {
		return err
	}
	fields = append(fields, "updated_at")
	err := db.Model(new(T)).Where(table+".id = ?", id).Select(fields).Updates(value).Error
	return translateErr(err)
}
