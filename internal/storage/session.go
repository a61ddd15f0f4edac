package storage

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/teamspace-app/teamspace/internal/gormw"
	"github.com/teamspace-app/teamspace/internal/models"
)

var (
	logger = log.With().Str("component", "storage").Logger()
)

func CreateSession(db *gormw.DB, session *models.Session) error {
	return db.Create(session).Error
}

func GetSessionByToken(db *gormw.DB, token string) (*models.Session, error) {
	s := &models.Session{}
	if err := db.Where("token = ?", token).First(&s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

func DeleteSessionByToken(db *gormw.DB, token string) error {
	return db.Where("token = ?", token).Delete(&models.Session{}).Error
}

func DeleteExpiredSessions(db *gormw.DB, now time.Time) error {
	return db.Where("expires_at < ?", now).Delete(&models.Session{}).Error
}

// Session rows would exist in database forever if not register a cleaner.
func RegisterSessionsCleaner(scheduler gocron.Scheduler, db *gormw.DB) {
	_, _ = scheduler.NewJob(
		gocron.CronJob(
			// 4am Daily
			"0 4 * * *",
			false,
		),
		gocron.NewTask(
			func() {
				logger.Info().Msg("Cleaning up expired sessions")
				if err := DeleteExpiredSessions(db, time.Now()); err != nil {
					logger.Error().Err(err).Msg("Failed to delete expired sessions")
				}
			},
		),
	)
}
