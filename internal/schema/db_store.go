package schema

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ColumnMapping is one row of the column_mappings table
type ColumnMapping struct {
	Source       string    `gorm:"primaryKey;size:100"`
	LogicalName  string    `gorm:"primaryKey;size:100"`
	PhysicalName string    `gorm:"size:255;not null"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// TableName pins the table name
func (ColumnMapping) TableName() string {
	return "column_mappings"
}

// DBStore keeps the mapping document in a column_mappings table
type DBStore struct {
	db *gorm.DB
}

// OpenDBStore opens the mapping database with the given driver ("postgres" or
// "sqlite") and migrates the column_mappings table.
func OpenDBStore(driver, dsn string) (*DBStore, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported mapping database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open mapping database: %w", err)
	}
	return NewDBStore(db)
}

// NewDBStore wraps an open gorm handle and migrates the table
func NewDBStore(db *gorm.DB) (*DBStore, error) {
	if err := db.AutoMigrate(&ColumnMapping{}); err != nil {
		return nil, fmt.Errorf("failed to migrate column_mappings: %w", err)
	}
	return &DBStore{db: db}, nil
}

// Load reads every mapping row into a document
func (s *DBStore) Load(ctx context.Context) (Document, error) {
	var rows []ColumnMapping
	if err := s.db.WithContext(ctx).Order("source, logical_name").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load column mappings: %w", err)
	}

	doc := Document{}
	for _, row := range rows {
		if doc[row.Source] == nil {
			doc[row.Source] = map[string]string{}
		}
		doc[row.Source][row.LogicalName] = row.PhysicalName
	}
	return doc, nil
}

// Save replaces all rows with the document inside one transaction
func (s *DBStore) Save(ctx context.Context, doc Document) error {
	var rows []ColumnMapping
	for source, columns := range doc {
		for logical, physical := range columns {
			rows = append(rows, ColumnMapping{
				Source:       source,
				LogicalName:  logical,
				PhysicalName: physical,
			})
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&ColumnMapping{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("failed to save column mappings: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool
func (s *DBStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
