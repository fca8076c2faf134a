package repository

// UserSearchFilter narrows user listings. Keyword matches username, names,
// email and matricule with a LIKE.
type UserSearchFilter struct {
	Keyword         string
	PromotionID     *int64
	Active          *bool
	RadiusActivated *bool
	Limit           int
	Offset          int
}

// DeviceSearchFilter narrows device listings.
type DeviceSearchFilter struct {
	UserID  *int64
	Keyword string
	Active  *bool
	Limit   int
	Offset  int
}

// SiteSearchFilter narrows site listings.
type SiteSearchFilter struct {
	ListType string
	Keyword  string
	Active   *bool
	Limit    int
	Offset   int
}

// DisconnectionLogFilter narrows disconnection log listings. ActiveOnly keeps
// rows whose reconnected_at is still zero.
type DisconnectionLogFilter struct {
	UserID     *int64
	Reason     string
	ActiveOnly bool
	Since      int64
	Limit      int
	Offset     int
}

// DisconnectionStats aggregates the log for the dashboard header.
type DisconnectionStats struct {
	Total    int64            `json:"total"`
	Active   int64            `json:"active"`
	ByReason map[string]int64 `json:"by_reason"`
}

// UsageTotals aggregates accounting usage for quota checks.
type UsageTotals struct {
	InputOctets  int64
	OutputOctets int64
	Seconds      int64
}
