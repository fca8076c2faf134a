package service

import (
	"context"
	"sync"

	"github.com/Valerdy/captive-portal-sub000/internal/nas"
	"github.com/Valerdy/captive-portal-sub000/internal/repository"
)

// In-memory fakes shared by the service tests. They implement just enough of
// the repository contracts to drive the flows under test.

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*repository.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*repository.User)}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id int64) (*repository.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*repository.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user *repository.User) (*repository.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return nil, repository.ErrDuplicate
		}
	}
	r.nextID++
	clone := *user
	clone.ID = r.nextID
	r.users[clone.ID] = &clone
	result := clone
	return &result, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *repository.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) Search(_ context.Context, _ repository.UserSearchFilter) ([]*repository.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.User
	for _, user := range r.users {
		clone := *user
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeUserRepo) CountFiltered(_ context.Context, _ repository.UserSearchFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) CountActive(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, user := range r.users {
		if user.Active {
			n++
		}
	}
	return n, nil
}

func (r *fakeUserRepo) PromotionCounts(_ context.Context, _ []int64) (map[int64]repository.PromotionUserCount, error) {
	return map[int64]repository.PromotionUserCount{}, nil
}

func (r *fakeUserRepo) SetRadiusActivated(_ context.Context, id int64, activated bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.RadiusActivated = activated
	return nil
}

func (r *fakeUserRepo) SetLastLogin(_ context.Context, id int64, atUnix int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.LastLoginAt = atUnix
	return nil
}

func (r *fakeUserRepo) HasAdmin(_ context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.IsAdmin {
			return true, nil
		}
	}
	return false, nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	nextID   int64
	sessions map[int64]*repository.Session
	usage    map[int64]repository.UsageTotals
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions: make(map[int64]*repository.Session),
		usage:    make(map[int64]repository.UsageTotals),
	}
}

func (r *fakeSessionRepo) FindByID(_ context.Context, id int64) (*repository.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *session
	return &clone, nil
}

func (r *fakeSessionRepo) FindByAcctSessionID(_ context.Context, acctSessionID string) (*repository.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if session.AcctSessionID == acctSessionID {
			clone := *session
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeSessionRepo) Create(_ context.Context, session *repository.Session) (*repository.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.sessions {
		if existing.AcctSessionID == session.AcctSessionID {
			return nil, repository.ErrDuplicate
		}
	}
	r.nextID++
	clone := *session
	clone.ID = r.nextID
	r.sessions[clone.ID] = &clone
	result := clone
	return &result, nil
}

func (r *fakeSessionRepo) Update(_ context.Context, session *repository.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *session
	r.sessions[session.ID] = &clone
	return nil
}

func (r *fakeSessionRepo) Close(_ context.Context, id int64, stoppedAt int64, cause string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok || session.StoppedAt > 0 {
		return repository.ErrNotFound
	}
	session.StoppedAt = stoppedAt
	session.TerminateCause = cause
	return nil
}

func (r *fakeSessionRepo) ListActive(_ context.Context, limit, offset int) ([]*repository.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var active []*repository.Session
	for id := int64(1); id <= r.nextID; id++ {
		session, ok := r.sessions[id]
		if !ok || session.StoppedAt > 0 {
			continue
		}
		clone := *session
		active = append(active, &clone)
	}
	if offset >= len(active) {
		return nil, nil
	}
	active = active[offset:]
	if limit > 0 && len(active) > limit {
		active = active[:limit]
	}
	return active, nil
}

func (r *fakeSessionRepo) ListByUser(_ context.Context, userID int64, _, _ int) ([]*repository.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.Session
	for id := int64(1); id <= r.nextID; id++ {
		session, ok := r.sessions[id]
		if !ok || session.UserID != userID {
			continue
		}
		clone := *session
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeSessionRepo) CountActive(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, session := range r.sessions {
		if session.StoppedAt == 0 {
			n++
		}
	}
	return n, nil
}

func (r *fakeSessionRepo) ActiveForUser(_ context.Context, userID int64) ([]*repository.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.Session
	for id := int64(1); id <= r.nextID; id++ {
		session, ok := r.sessions[id]
		if !ok || session.UserID != userID || session.StoppedAt > 0 {
			continue
		}
		clone := *session
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeSessionRepo) StaleActive(_ context.Context, updatedBefore int64) ([]*repository.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.Session
	for _, session := range r.sessions {
		if session.StoppedAt == 0 && session.UpdatedAt < updatedBefore {
			clone := *session
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) UsageSince(_ context.Context, userID int64, _ int64) (repository.UsageTotals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.usage[userID], nil
}

type fakeDeviceRepo struct {
	mu      sync.Mutex
	nextID  int64
	devices map[int64]*repository.Device
}

func newFakeDeviceRepo() *fakeDeviceRepo {
	return &fakeDeviceRepo{devices: make(map[int64]*repository.Device)}
}

func (r *fakeDeviceRepo) FindByID(_ context.Context, id int64) (*repository.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	device, ok := r.devices[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *device
	return &clone, nil
}

func (r *fakeDeviceRepo) FindByMAC(_ context.Context, mac string) (*repository.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, device := range r.devices {
		if device.MAC == mac {
			clone := *device
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeDeviceRepo) Create(_ context.Context, device *repository.Device) (*repository.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.devices {
		if existing.MAC == device.MAC {
			return nil, repository.ErrDuplicate
		}
	}
	r.nextID++
	clone := *device
	clone.ID = r.nextID
	r.devices[clone.ID] = &clone
	result := clone
	return &result, nil
}

func (r *fakeDeviceRepo) Update(_ context.Context, device *repository.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.devices[device.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *device
	r.devices[device.ID] = &clone
	return nil
}

func (r *fakeDeviceRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.devices[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.devices, id)
	return nil
}

func (r *fakeDeviceRepo) Search(_ context.Context, _ repository.DeviceSearchFilter) ([]*repository.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.Device
	for _, device := range r.devices {
		clone := *device
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeDeviceRepo) CountFiltered(_ context.Context, _ repository.DeviceSearchFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.devices)), nil
}

func (r *fakeDeviceRepo) TouchSeen(_ context.Context, mac string, atUnix int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, device := range r.devices {
		if device.MAC == mac {
			device.LastSeenAt = atUnix
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeDeviceRepo) MarkInactiveBefore(_ context.Context, lastSeenBefore int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, device := range r.devices {
		if device.Active && device.LastSeenAt < lastSeenBefore {
			device.Active = false
			n++
		}
	}
	return n, nil
}

type fakePromotionRepo struct {
	mu         sync.Mutex
	nextID     int64
	promotions map[int64]*repository.Promotion
}

func newFakePromotionRepo() *fakePromotionRepo {
	return &fakePromotionRepo{promotions: make(map[int64]*repository.Promotion)}
}

func (r *fakePromotionRepo) FindByID(_ context.Context, id int64) (*repository.Promotion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	promotion, ok := r.promotions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *promotion
	return &clone, nil
}

func (r *fakePromotionRepo) FindByCode(_ context.Context, code string) (*repository.Promotion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, promotion := range r.promotions {
		if promotion.Code == code {
			clone := *promotion
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakePromotionRepo) List(_ context.Context) ([]*repository.Promotion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.Promotion
	for id := int64(1); id <= r.nextID; id++ {
		if promotion, ok := r.promotions[id]; ok {
			clone := *promotion
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakePromotionRepo) ListByProfile(_ context.Context, profileID int64) ([]*repository.Promotion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.Promotion
	for _, promotion := range r.promotions {
		if promotion.ProfileID != nil && *promotion.ProfileID == profileID {
			clone := *promotion
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakePromotionRepo) Create(_ context.Context, promotion *repository.Promotion) (*repository.Promotion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.promotions {
		if existing.Code == promotion.Code {
			return nil, repository.ErrDuplicate
		}
	}
	r.nextID++
	clone := *promotion
	clone.ID = r.nextID
	r.promotions[clone.ID] = &clone
	result := clone
	return &result, nil
}

func (r *fakePromotionRepo) Update(_ context.Context, promotion *repository.Promotion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.promotions[promotion.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *promotion
	r.promotions[promotion.ID] = &clone
	return nil
}

func (r *fakePromotionRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.promotions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.promotions, id)
	return nil
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	nextID   int64
	profiles map[int64]*repository.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[int64]*repository.Profile)}
}

func (r *fakeProfileRepo) FindByID(_ context.Context, id int64) (*repository.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *profile
	return &clone, nil
}

func (r *fakeProfileRepo) List(_ context.Context) ([]*repository.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.Profile
	for id := int64(1); id <= r.nextID; id++ {
		if profile, ok := r.profiles[id]; ok {
			clone := *profile
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeProfileRepo) Create(_ context.Context, profile *repository.Profile) (*repository.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	clone := *profile
	clone.ID = r.nextID
	r.profiles[clone.ID] = &clone
	result := clone
	return &result, nil
}

func (r *fakeProfileRepo) Update(_ context.Context, profile *repository.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[profile.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *profile
	r.profiles[profile.ID] = &clone
	return nil
}

func (r *fakeProfileRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.profiles, id)
	return nil
}

type fakeLogRepo struct {
	mu     sync.Mutex
	nextID int64
	logs   map[int64]*repository.DisconnectionLog
}

func newFakeLogRepo() *fakeLogRepo {
	return &fakeLogRepo{logs: make(map[int64]*repository.DisconnectionLog)}
}

func (r *fakeLogRepo) FindByID(_ context.Context, id int64) (*repository.DisconnectionLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	log, ok := r.logs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *log
	return &clone, nil
}

func (r *fakeLogRepo) Create(_ context.Context, log *repository.DisconnectionLog) (*repository.DisconnectionLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	clone := *log
	clone.ID = r.nextID
	r.logs[clone.ID] = &clone
	result := clone
	return &result, nil
}

func (r *fakeLogRepo) Search(_ context.Context, _ repository.DisconnectionLogFilter) ([]*repository.DisconnectionLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.DisconnectionLog
	for id := int64(1); id <= r.nextID; id++ {
		if log, ok := r.logs[id]; ok {
			clone := *log
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeLogRepo) CountFiltered(_ context.Context, _ repository.DisconnectionLogFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.logs)), nil
}

func (r *fakeLogRepo) Stats(_ context.Context, since int64) (repository.DisconnectionStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := repository.DisconnectionStats{ByReason: make(map[string]int64)}
	for _, log := range r.logs {
		if log.DisconnectedAt < since {
			continue
		}
		stats.Total++
		stats.ByReason[log.Reason]++
		if log.ReconnectedAt == 0 {
			stats.Active++
		}
	}
	return stats, nil
}

func (r *fakeLogRepo) OpenForUser(_ context.Context, userID int64) (*repository.DisconnectionLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, log := range r.logs {
		if log.UserID == userID && log.ReconnectedAt == 0 {
			clone := *log
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeLogRepo) Reactivate(_ context.Context, id int64, reconnectedAt int64, actor string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	log, ok := r.logs[id]
	if !ok || log.ReconnectedAt > 0 {
		return repository.ErrNotFound
	}
	log.ReconnectedAt = reconnectedAt
	log.ReactivatedBy = actor
	return nil
}

type fakeSiteRepo struct {
	mu     sync.Mutex
	nextID int64
	sites  map[int64]*repository.Site
}

func newFakeSiteRepo() *fakeSiteRepo {
	return &fakeSiteRepo{sites: make(map[int64]*repository.Site)}
}

func (r *fakeSiteRepo) FindByID(_ context.Context, id int64) (*repository.Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	site, ok := r.sites[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *site
	return &clone, nil
}

func (r *fakeSiteRepo) FindByURL(_ context.Context, listType, url string) (*repository.Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, site := range r.sites {
		if site.ListType == listType && site.URL == url {
			clone := *site
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeSiteRepo) Create(_ context.Context, site *repository.Site) (*repository.Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.sites {
		if existing.ListType == site.ListType && existing.URL == site.URL {
			return nil, repository.ErrDuplicate
		}
	}
	r.nextID++
	clone := *site
	clone.ID = r.nextID
	r.sites[clone.ID] = &clone
	result := clone
	return &result, nil
}

func (r *fakeSiteRepo) Update(_ context.Context, site *repository.Site) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sites[site.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *site
	r.sites[site.ID] = &clone
	return nil
}

func (r *fakeSiteRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sites[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.sites, id)
	return nil
}

func (r *fakeSiteRepo) Search(_ context.Context, _ repository.SiteSearchFilter) ([]*repository.Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.Site
	for id := int64(1); id <= r.nextID; id++ {
		if site, ok := r.sites[id]; ok {
			clone := *site
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeSiteRepo) CountFiltered(_ context.Context, _ repository.SiteSearchFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.sites)), nil
}

func (r *fakeSiteRepo) SetActive(_ context.Context, id int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	site, ok := r.sites[id]
	if !ok {
		return repository.ErrNotFound
	}
	site.Active = active
	return nil
}

type fakeProvisioner struct {
	mu           sync.Mutex
	passwords    map[string]string
	access       map[string]bool
	groups       map[string]string
	groupAttrs   map[string]*repository.Profile
	provisionErr error
}

func newFakeProvisioner() *fakeProvisioner {
	return &fakeProvisioner{
		passwords:  make(map[string]string),
		access:     make(map[string]bool),
		groups:     make(map[string]string),
		groupAttrs: make(map[string]*repository.Profile),
	}
}

func (p *fakeProvisioner) ProvisionUser(_ context.Context, user *repository.User, plainPassword string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.provisionErr != nil {
		return p.provisionErr
	}
	p.passwords[user.Username] = plainPassword
	p.access[user.Username] = true
	return nil
}

func (p *fakeProvisioner) DeprovisionUser(_ context.Context, username string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.passwords, username)
	delete(p.access, username)
	delete(p.groups, username)
	return nil
}

func (p *fakeProvisioner) SetUserAccess(_ context.Context, username string, allowed bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.access[username] = allowed
	return nil
}

func (p *fakeProvisioner) SetUserGroup(_ context.Context, username, groupName string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if groupName == "" {
		delete(p.groups, username)
		return nil
	}
	p.groups[username] = groupName
	return nil
}

func (p *fakeProvisioner) ProvisionGroup(_ context.Context, groupName string, profile *repository.Profile) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.groupAttrs[groupName] = profile
	return nil
}

func (p *fakeProvisioner) DeprovisionGroup(_ context.Context, groupName string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.groupAttrs, groupName)
	return nil
}

func (p *fakeProvisioner) accessFor(username string) (bool, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	allowed, ok := p.access[username]
	return allowed, ok
}

type fakeDisconnector struct {
	mu    sync.Mutex
	calls []nas.DisconnectRequest
	err   error
}

func (d *fakeDisconnector) Disconnect(_ context.Context, req nas.DisconnectRequest) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, req)
	return d.err
}

func (d *fakeDisconnector) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}
