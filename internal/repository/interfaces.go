package repository

import "context"

// UserRepository persists portal accounts.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, filter UserSearchFilter) ([]*User, error)
	CountFiltered(ctx context.Context, filter UserSearchFilter) (int64, error)
	Count(ctx context.Context) (int64, error)
	CountActive(ctx context.Context) (int64, error)
	PromotionCounts(ctx context.Context, promotionIDs []int64) (map[int64]PromotionUserCount, error)
	SetRadiusActivated(ctx context.Context, id int64, activated bool) error
	SetLastLogin(ctx context.Context, id int64, atUnix int64) error
	HasAdmin(ctx context.Context) (bool, error)
}

// DeviceRepository persists client devices.
type DeviceRepository interface {
	FindByID(ctx context.Context, id int64) (*Device, error)
	FindByMAC(ctx context.Context, mac string) (*Device, error)
	Create(ctx context.Context, device *Device) (*Device, error)
	Update(ctx context.Context, device *Device) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, filter DeviceSearchFilter) ([]*Device, error)
	CountFiltered(ctx context.Context, filter DeviceSearchFilter) (int64, error)
	TouchSeen(ctx context.Context, mac string, atUnix int64) error
	MarkInactiveBefore(ctx context.Context, lastSeenBefore int64) (int64, error)
}

// SiteRepository persists blacklist/whitelist entries.
type SiteRepository interface {
	FindByID(ctx context.Context, id int64) (*Site, error)
	FindByURL(ctx context.Context, listType, url string) (*Site, error)
	Create(ctx context.Context, site *Site) (*Site, error)
	Update(ctx context.Context, site *Site) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, filter SiteSearchFilter) ([]*Site, error)
	CountFiltered(ctx context.Context, filter SiteSearchFilter) (int64, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

// PromotionRepository persists cohorts.
type PromotionRepository interface {
	FindByID(ctx context.Context, id int64) (*Promotion, error)
	FindByCode(ctx context.Context, code string) (*Promotion, error)
	List(ctx context.Context) ([]*Promotion, error)
	ListByProfile(ctx context.Context, profileID int64) ([]*Promotion, error)
	Create(ctx context.Context, promotion *Promotion) (*Promotion, error)
	Update(ctx context.Context, promotion *Promotion) error
	Delete(ctx context.Context, id int64) error
}

// ProfileRepository persists bandwidth/quota policies.
type ProfileRepository interface {
	FindByID(ctx context.Context, id int64) (*Profile, error)
	List(ctx context.Context) ([]*Profile, error)
	Create(ctx context.Context, profile *Profile) (*Profile, error)
	Update(ctx context.Context, profile *Profile) error
	Delete(ctx context.Context, id int64) error
}

// SessionRepository persists RADIUS accounting sessions.
type SessionRepository interface {
	FindByID(ctx context.Context, id int64) (*Session, error)
	FindByAcctSessionID(ctx context.Context, acctSessionID string) (*Session, error)
	Create(ctx context.Context, session *Session) (*Session, error)
	Update(ctx context.Context, session *Session) error
	Close(ctx context.Context, id int64, stoppedAt int64, cause string) error
	ListActive(ctx context.Context, limit, offset int) ([]*Session, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*Session, error)
	CountActive(ctx context.Context) (int64, error)
	ActiveForUser(ctx context.Context, userID int64) ([]*Session, error)
	StaleActive(ctx context.Context, updatedBefore int64) ([]*Session, error)
	UsageSince(ctx context.Context, userID int64, sinceUnix int64) (UsageTotals, error)
}

// DisconnectionLogRepository persists quota/admin cut-off records.
type DisconnectionLogRepository interface {
	FindByID(ctx context.Context, id int64) (*DisconnectionLog, error)
	Create(ctx context.Context, log *DisconnectionLog) (*DisconnectionLog, error)
	Search(ctx context.Context, filter DisconnectionLogFilter) ([]*DisconnectionLog, error)
	CountFiltered(ctx context.Context, filter DisconnectionLogFilter) (int64, error)
	Stats(ctx context.Context, since int64) (DisconnectionStats, error)
	OpenForUser(ctx context.Context, userID int64) (*DisconnectionLog, error)
	Reactivate(ctx context.Context, id int64, reconnectedAt int64, actor string) error
}

// MonitoringSampleRepository persists dashboard series points.
type MonitoringSampleRepository interface {
	InsertBatch(ctx context.Context, samples []MonitoringSample) error
	ListSince(ctx context.Context, sinceUnix int64) ([]MonitoringSample, error)
	DeleteBefore(ctx context.Context, beforeUnix int64) (int64, error)
}

// RadiusRepository maintains the attribute tables FreeRADIUS reads.
type RadiusRepository interface {
	ReplaceForOwner(ctx context.Context, ownerType, owner, scope string, attrs []RadiusAttribute) error
	DeleteForOwner(ctx context.Context, ownerType, owner string) error
	ListForOwner(ctx context.Context, ownerType, owner string) ([]RadiusAttribute, error)
	SetUserGroup(ctx context.Context, username, groupName string) error
	RemoveUserGroup(ctx context.Context, username string) error
}
