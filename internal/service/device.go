package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/Valerdy/captive-portal-sub000/internal/repository"
)

// DeviceService manages the devices seen behind the portal.
type DeviceService interface {
	Fetch(ctx context.Context, input DeviceFetchInput) (*DeviceFetchResult, error)
	GetByID(ctx context.Context, id int64) (*repository.Device, error)
	Create(ctx context.Context, input DeviceCreateInput) (*repository.Device, error)
	Update(ctx context.Context, input DeviceUpdateInput) (*repository.Device, error)
	Delete(ctx context.Context, id int64) error
	Toggle(ctx context.Context, id int64, active bool) (*repository.Device, error)
}

// DeviceFetchInput controls pagination and filters.
type DeviceFetchInput struct {
	UserID *int64
	Query  string
	Active *bool
	Limit  int
	Offset int
}

// DeviceFetchResult wraps a paginated listing.
type DeviceFetchResult struct {
	Devices []*repository.Device `json:"devices"`
	Total   int64                `json:"total"`
}

// DeviceCreateInput registers a device by hand (devices are normally learned
// from accounting packets).
type DeviceCreateInput struct {
	UserID     int64  `json:"user_id"`
	MAC        string `json:"mac"`
	Hostname   string `json:"hostname"`
	DeviceType string `json:"device_type"`
}

// DeviceUpdateInput describes the updatable device fields.
type DeviceUpdateInput struct {
	ID         int64   `json:"id"`
	UserID     *int64  `json:"user_id,omitempty"`
	Hostname   *string `json:"hostname,omitempty"`
	DeviceType *string `json:"device_type,omitempty"`
	Active     *bool   `json:"active,omitempty"`
}

type deviceService struct {
	devices repository.DeviceRepository
	users   repository.UserRepository
}

// NewDeviceService assembles the device management flows.
func NewDeviceService(devices repository.DeviceRepository, users repository.UserRepository) DeviceService {
	return &deviceService{devices: devices, users: users}
}

// NormalizeMAC canonicalizes a MAC address to lowercase colon form so lookups
// match regardless of the NAS vendor's formatting.
func NormalizeMAC(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return "", ErrInvalidMAC
	}
	hw, err := net.ParseMAC(cleaned)
	if err != nil {
		// Some NAS vendors send bare hex without separators.
		stripped := strings.Map(func(r rune) rune {
			switch r {
			case ':', '-', '.', ' ':
				return -1
			}
			return r
		}, cleaned)
		if len(stripped) != 12 {
			return "", ErrInvalidMAC
		}
		var parts []string
		for i := 0; i < 12; i += 2 {
			parts = append(parts, stripped[i:i+2])
		}
		hw, err = net.ParseMAC(strings.Join(parts, ":"))
		if err != nil {
			return "", ErrInvalidMAC
		}
	}
	return strings.ToLower(hw.String()), nil
}

func (s *deviceService) Fetch(ctx context.Context, input DeviceFetchInput) (*DeviceFetchResult, error) {
	if s == nil || s.devices == nil {
		return nil, fmt.Errorf("device service not configured")
	}
	filter := repository.DeviceSearchFilter{
		UserID:  input.UserID,
		Keyword: strings.TrimSpace(input.Query),
		Active:  input.Active,
		Limit:   input.Limit,
		Offset:  input.Offset,
	}
	devices, err := s.devices.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.devices.CountFiltered(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &DeviceFetchResult{Devices: devices, Total: total}, nil
}

func (s *deviceService) GetByID(ctx context.Context, id int64) (*repository.Device, error) {
	device, err := s.devices.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return device, nil
}

func (s *deviceService) Create(ctx context.Context, input DeviceCreateInput) (*repository.Device, error) {
	mac, err := NormalizeMAC(input.MAC)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, input.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	device := &repository.Device{
		UserID:     input.UserID,
		MAC:        mac,
		Hostname:   strings.TrimSpace(input.Hostname),
		DeviceType: strings.TrimSpace(input.DeviceType),
		Active:     true,
	}
	created, err := s.devices.Create(ctx, device)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return created, nil
}

func (s *deviceService) Update(ctx context.Context, input DeviceUpdateInput) (*repository.Device, error) {
	device, err := s.devices.FindByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if input.UserID != nil {
		if _, err := s.users.FindByID(ctx, *input.UserID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		device.UserID = *input.UserID
	}
	if input.Hostname != nil {
		device.Hostname = strings.TrimSpace(*input.Hostname)
	}
	if input.DeviceType != nil {
		device.DeviceType = strings.TrimSpace(*input.DeviceType)
	}
	if input.Active != nil {
		device.Active = *input.Active
	}

	if err := s.devices.Update(ctx, device); err != nil {
		return nil, err
	}
	return device, nil
}

func (s *deviceService) Delete(ctx context.Context, id int64) error {
	if err := s.devices.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *deviceService) Toggle(ctx context.Context, id int64, active bool) (*repository.Device, error) {
	device, err := s.devices.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	device.Active = active
	if err := s.devices.Update(ctx, device); err != nil {
		return nil, err
	}
	return device, nil
}
