package service

import "errors"

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("service: not found")
	// ErrInvalidCredentials indicates provided credentials are wrong.
	ErrInvalidCredentials = errors.New("service: invalid credentials")
	// ErrRateLimited indicates the caller exceeded allowed attempts.
	ErrRateLimited = errors.New("service: rate limited")
	// ErrAccountDisabled indicates the account is disabled.
	ErrAccountDisabled = errors.New("service: account disabled")
	// ErrUnauthorized indicates missing or invalid auth tokens.
	ErrUnauthorized = errors.New("service: unauthorized")
	// ErrInvalidRefreshToken indicates refresh token problems.
	ErrInvalidRefreshToken = errors.New("service: invalid refresh token")
	// ErrUsernameExists indicates the username is already registered.
	ErrUsernameExists = errors.New("service: username already exists")
	// ErrDuplicate indicates a unique field collides with an existing row.
	ErrDuplicate = errors.New("service: duplicate entry")
	// ErrInvalidInput indicates a field fails validation.
	ErrInvalidInput = errors.New("service: invalid input")
	// ErrInvalidMAC indicates a MAC address that cannot be parsed.
	ErrInvalidMAC = errors.New("service: invalid mac address")
	// ErrInvalidListType indicates a site list type other than blacklist/whitelist.
	ErrInvalidListType = errors.New("service: invalid list type")
	// ErrProfileInUse indicates the profile is still assigned to promotions.
	ErrProfileInUse = errors.New("service: profile in use")
	// ErrPromotionInUse indicates the promotion still has members.
	ErrPromotionInUse = errors.New("service: promotion in use")
	// ErrAlreadyReactivated indicates the disconnection log is already closed.
	ErrAlreadyReactivated = errors.New("service: already reactivated")
	// ErrUserBlocked indicates an open disconnection log blocks the user.
	ErrUserBlocked = errors.New("service: user blocked by open disconnection")
)
