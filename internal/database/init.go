package database

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

func InitTrackingDatabase(dbConfig *DatabaseConfig) (*gorm.DB, error) {
	db, err := NewConnection(dbConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to the tracking database")
	}

	return db, nil
}
