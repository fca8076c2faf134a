package sqlite

import (
	"database/sql"

	"github.com/Valerdy/captive-portal-sub000/internal/repository"
)

// Store wires SQLite-backed repository implementations.
type Store struct {
	db                *sql.DB
	users             repository.UserRepository
	devices           repository.DeviceRepository
	sites             repository.SiteRepository
	promotions        repository.PromotionRepository
	profiles          repository.ProfileRepository
	sessions          repository.SessionRepository
	disconnectionLogs repository.DisconnectionLogRepository
	monitoringSamples repository.MonitoringSampleRepository
	radius            repository.RadiusRepository
}

// NewStore constructs a SQLite-backed repository store.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                db,
		users:             &userRepo{db: db},
		devices:           &deviceRepo{db: db},
		sites:             &siteRepo{db: db},
		promotions:        &promotionRepo{db: db},
		profiles:          &profileRepo{db: db},
		sessions:          &sessionRepo{db: db},
		disconnectionLogs: &disconnectionLogRepo{db: db},
		monitoringSamples: &monitoringSampleRepo{db: db},
		radius:            &radiusRepo{db: db},
	}
}

func (s *Store) Users() repository.UserRepository {
	return s.users
}

func (s *Store) Devices() repository.DeviceRepository {
	return s.devices
}

func (s *Store) Sites() repository.SiteRepository {
	return s.sites
}

func (s *Store) Promotions() repository.PromotionRepository {
	return s.promotions
}

func (s *Store) Profiles() repository.ProfileRepository {
	return s.profiles
}

func (s *Store) Sessions() repository.SessionRepository {
	return s.sessions
}

func (s *Store) DisconnectionLogs() repository.DisconnectionLogRepository {
	return s.disconnectionLogs
}

func (s *Store) MonitoringSamples() repository.MonitoringSampleRepository {
	return s.monitoringSamples
}

func (s *Store) Radius() repository.RadiusRepository {
	return s.radius
}
