package repository

// User is a portal account. The RADIUS activation flag here is authoritative;
// the provisioning service mirrors it into the radcheck tables.
type User struct {
	ID              int64  `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Matricule       string `json:"matricule"`
	PromotionID     *int64 `json:"promotion_id"`
	Password        string `json:"-"`
	IsAdmin         bool   `json:"is_admin"`
	RadiusActivated bool   `json:"radius_activated"`
	Active          bool   `json:"active"`
	LastLoginAt     int64  `json:"last_login_at"`
	CreatedAt       int64  `json:"created_at"`
	UpdatedAt       int64  `json:"updated_at"`
}

// Device is a client machine identified by MAC address.
type Device struct {
	ID          int64  `json:"id"`
	UserID      int64  `json:"user_id"`
	MAC         string `json:"mac"`
	Hostname    string `json:"hostname"`
	DeviceType  string `json:"device_type"`
	FirstSeenAt int64  `json:"first_seen_at"`
	LastSeenAt  int64  `json:"last_seen_at"`
	Active      bool   `json:"active"`
}

// Site list types.
const (
	SiteBlacklist = "blacklist"
	SiteWhitelist = "whitelist"
)

// Site is a blacklist or whitelist entry enforced at the gateway.
type Site struct {
	ID        int64  `json:"id"`
	URL       string `json:"url"`
	ListType  string `json:"list_type"`
	Reason    string `json:"reason"`
	Active    bool   `json:"active"`
	AddedAt   int64  `json:"added_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// Promotion groups users (a student cohort) for bulk policy assignment.
type Promotion struct {
	ID        int64  `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Year      int    `json:"year"`
	ProfileID *int64 `json:"profile_id"`
	Active    bool   `json:"active"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// PromotionUserCount carries per-promotion aggregate counts.
type PromotionUserCount struct {
	Total  int64 `json:"total"`
	Active int64 `json:"active"`
}

// Quota types carried by a Profile.
const (
	QuotaNone   = "none"
	QuotaVolume = "volume"
	QuotaTime   = "time"
)

// Profile is a bandwidth/quota policy applied through RADIUS attributes.
type Profile struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	BandwidthUpKbps    int64  `json:"bandwidth_up_kbps"`
	BandwidthDownKbps  int64  `json:"bandwidth_down_kbps"`
	QuotaType          string `json:"quota_type"`
	QuotaValue         int64  `json:"quota_value"`
	ValidityDays       int    `json:"validity_days"`
	SessionTimeoutSecs int64  `json:"session_timeout_secs"`
	IdleTimeoutSecs    int64  `json:"idle_timeout_secs"`
	SimultaneousUse    int    `json:"simultaneous_use"`
	CreatedAt          int64  `json:"created_at"`
	UpdatedAt          int64  `json:"updated_at"`
}

// Session is one RADIUS accounting session. Field names follow the standard
// accounting attributes (Acct-Session-Id, Calling-Station-Id, ...).
type Session struct {
	ID             int64  `json:"id"`
	AcctSessionID  string `json:"acct_session_id"`
	UserID         int64  `json:"user_id"`
	Username       string `json:"username"`
	MAC            string `json:"mac"`
	NASIPAddress   string `json:"nas_ip_address"`
	FramedIP       string `json:"framed_ip"`
	StartedAt      int64  `json:"started_at"`
	StoppedAt      int64  `json:"stopped_at"`
	InputOctets    int64  `json:"input_octets"`
	OutputOctets   int64  `json:"output_octets"`
	TerminateCause string `json:"terminate_cause"`
	UpdatedAt      int64  `json:"updated_at"`
}

// Disconnection reasons recorded in the log.
const (
	DisconnectQuotaExceeded = "quota_exceeded"
	DisconnectAdmin         = "admin"
	DisconnectExpired       = "expired"
)

// DisconnectionLog records why a user was cut off and who restored them.
// A row with ReconnectedAt == 0 is still open: the user remains blocked.
type DisconnectionLog struct {
	ID             int64  `json:"id"`
	UserID         int64  `json:"user_id"`
	Username       string `json:"username"`
	Reason         string `json:"reason"`
	QuotaUsedBytes int64  `json:"quota_used_bytes"`
	DisconnectedAt int64  `json:"disconnected_at"`
	ReconnectedAt  int64  `json:"reconnected_at"`
	ReactivatedBy  string `json:"reactivated_by"`
}

// MonitoringSample is one point of the live dashboard series.
type MonitoringSample struct {
	ID             int64   `json:"id"`
	TakenAt        int64   `json:"taken_at"`
	ActiveSessions int64   `json:"active_sessions"`
	RxBytesPerSec  int64   `json:"rx_bytes_per_sec"`
	TxBytesPerSec  int64   `json:"tx_bytes_per_sec"`
	CPUPercent     float64 `json:"cpu_percent"`
	MemPercent     float64 `json:"mem_percent"`
	NASReachable   bool    `json:"nas_reachable"`
}

// RADIUS attribute scopes and owners. User rows are keyed by username, group
// rows by the promotion code (FreeRADIUS usergroup semantics).
const (
	RadiusScopeCheck = "check"
	RadiusScopeReply = "reply"

	RadiusOwnerUser  = "user"
	RadiusOwnerGroup = "group"
)

// RadiusAttribute is one radcheck/radreply/radgroupcheck/radgroupreply row
// consumed by the FreeRADIUS sql module.
type RadiusAttribute struct {
	ID        int64  `json:"id"`
	OwnerType string `json:"owner_type"`
	Owner     string `json:"owner"`
	Scope     string `json:"scope"`
	Attribute string `json:"attribute"`
	Op        string `json:"op"`
	Value     string `json:"value"`
}
