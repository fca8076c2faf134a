package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Valerdy/captive-portal-sub000/internal/repository"
)

// RADIUS attribute names consumed by FreeRADIUS and the WISPr-capable NAS.
const (
	attrCleartextPassword = "Cleartext-Password"
	attrAuthType          = "Auth-Type"
	attrSimultaneousUse   = "Simultaneous-Use"
	attrSessionTimeout    = "Session-Timeout"
	attrIdleTimeout       = "Idle-Timeout"
	attrWISPrBandwidthUp  = "WISPr-Bandwidth-Max-Up"
	attrWISPrBandwidthDn  = "WISPr-Bandwidth-Max-Down"
)

// RadiusProvisioner mirrors panel state into the tables FreeRADIUS reads.
type RadiusProvisioner interface {
	ProvisionUser(ctx context.Context, user *repository.User, plainPassword string) error
	DeprovisionUser(ctx context.Context, username string) error
	SetUserAccess(ctx context.Context, username string, allowed bool) error
	SetUserGroup(ctx context.Context, username, groupName string) error
	ProvisionGroup(ctx context.Context, groupName string, profile *repository.Profile) error
	DeprovisionGroup(ctx context.Context, groupName string) error
}

type radiusProvisioner struct {
	radius repository.RadiusRepository
}

// NewRadiusProvisioner builds the provisioner over the RADIUS tables.
func NewRadiusProvisioner(radius repository.RadiusRepository) RadiusProvisioner {
	return &radiusProvisioner{radius: radius}
}

// ProvisionUser writes the user's check attributes. The plaintext password is
// only available at creation or reset time, so callers pass it through
// explicitly instead of reading the bcrypt hash back.
func (p *radiusProvisioner) ProvisionUser(ctx context.Context, user *repository.User, plainPassword string) error {
	if p == nil || p.radius == nil {
		return fmt.Errorf("radius provisioner not configured")
	}
	attrs := []repository.RadiusAttribute{
		{Attribute: attrCleartextPassword, Op: ":=", Value: plainPassword},
	}
	return p.radius.ReplaceForOwner(ctx, repository.RadiusOwnerUser, user.Username, repository.RadiusScopeCheck, attrs)
}

func (p *radiusProvisioner) DeprovisionUser(ctx context.Context, username string) error {
	if err := p.radius.DeleteForOwner(ctx, repository.RadiusOwnerUser, username); err != nil {
		return err
	}
	return p.radius.RemoveUserGroup(ctx, username)
}

// SetUserAccess toggles an Auth-Type Reject row while keeping the password
// attribute intact, so reactivation does not need the plaintext again.
func (p *radiusProvisioner) SetUserAccess(ctx context.Context, username string, allowed bool) error {
	attrs, err := p.radius.ListForOwner(ctx, repository.RadiusOwnerUser, username)
	if err != nil {
		return err
	}

	var check []repository.RadiusAttribute
	for _, attr := range attrs {
		if attr.Scope != repository.RadiusScopeCheck || attr.Attribute == attrAuthType {
			continue
		}
		check = append(check, repository.RadiusAttribute{
			Attribute: attr.Attribute,
			Op:        attr.Op,
			Value:     attr.Value,
		})
	}
	if !allowed {
		check = append(check, repository.RadiusAttribute{
			Attribute: attrAuthType, Op: ":=", Value: "Reject",
		})
	}
	return p.radius.ReplaceForOwner(ctx, repository.RadiusOwnerUser, username, repository.RadiusScopeCheck, check)
}

func (p *radiusProvisioner) SetUserGroup(ctx context.Context, username, groupName string) error {
	if groupName == "" {
		return p.radius.RemoveUserGroup(ctx, username)
	}
	return p.radius.SetUserGroup(ctx, username, groupName)
}

// ProvisionGroup maps a bandwidth/quota profile onto group attributes. WISPr
// bandwidth values are in bits per second.
func (p *radiusProvisioner) ProvisionGroup(ctx context.Context, groupName string, profile *repository.Profile) error {
	if profile == nil {
		return p.DeprovisionGroup(ctx, groupName)
	}

	var check []repository.RadiusAttribute
	if profile.SimultaneousUse > 0 {
		check = append(check, repository.RadiusAttribute{
			Attribute: attrSimultaneousUse, Op: ":=", Value: strconv.Itoa(profile.SimultaneousUse),
		})
	}

	var reply []repository.RadiusAttribute
	if profile.SessionTimeoutSecs > 0 {
		reply = append(reply, repository.RadiusAttribute{
			Attribute: attrSessionTimeout, Op: "=", Value: strconv.FormatInt(profile.SessionTimeoutSecs, 10),
		})
	}
	if profile.IdleTimeoutSecs > 0 {
		reply = append(reply, repository.RadiusAttribute{
			Attribute: attrIdleTimeout, Op: "=", Value: strconv.FormatInt(profile.IdleTimeoutSecs, 10),
		})
	}
	if profile.BandwidthUpKbps > 0 {
		reply = append(reply, repository.RadiusAttribute{
			Attribute: attrWISPrBandwidthUp, Op: "=", Value: strconv.FormatInt(profile.BandwidthUpKbps*1000, 10),
		})
	}
	if profile.BandwidthDownKbps > 0 {
		reply = append(reply, repository.RadiusAttribute{
			Attribute: attrWISPrBandwidthDn, Op: "=", Value: strconv.FormatInt(profile.BandwidthDownKbps*1000, 10),
		})
	}

	if err := p.radius.ReplaceForOwner(ctx, repository.RadiusOwnerGroup, groupName, repository.RadiusScopeCheck, check); err != nil {
		return err
	}
	return p.radius.ReplaceForOwner(ctx, repository.RadiusOwnerGroup, groupName, repository.RadiusScopeReply, reply)
}

func (p *radiusProvisioner) DeprovisionGroup(ctx context.Context, groupName string) error {
	return p.radius.DeleteForOwner(ctx, repository.RadiusOwnerGroup, groupName)
}
