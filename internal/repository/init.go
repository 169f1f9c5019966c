package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/DanishNadar/ttp-tracker/interfaces"
	"github.com/DanishNadar/ttp-tracker/internal/database"
)

type Repositories struct {
	MessageRepository       interfaces.MessageRepository
	TrackingEventRepository interfaces.TrackingEventRepository
}

func InitRepositories(trackingDB *gorm.DB) *Repositories {
	return &Repositories{
		MessageRepository:       NewMessageRepository(trackingDB),
		TrackingEventRepository: NewTrackingEventRepository(trackingDB),
	}
}

func MigrateDB(dbConfig *database.DatabaseConfig, trackingDB *gorm.DB) error {
	db, err := trackingDB.DB()
	if err != nil {
		return err
	}

	db.SetMaxOpenConns(5)

	err = migrateTrackingTables(trackingDB)

	db.SetMaxIdleConns(dbConfig.MaxIdleConn)
	db.SetMaxOpenConns(dbConfig.MaxConn)
	db.SetConnMaxLifetime(time.Duration(dbConfig.ConnMaxLifetime) * time.Minute)

	return err
}
