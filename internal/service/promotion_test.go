package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Valerdy/captive-portal-sub000/internal/repository"
)

func newPromotionFixture() (PromotionService, *fakeProfileRepo, *fakeProvisioner) {
	profiles := newFakeProfileRepo()
	provisioner := newFakeProvisioner()
	svc := NewPromotionService(newFakePromotionRepo(), profiles, newFakeUserRepo(), provisioner)
	return svc, profiles, provisioner
}

func TestPromotionCreateProvisionsGroup(t *testing.T) {
	svc, profiles, provisioner := newPromotionFixture()
	ctx := context.Background()

	profile, err := profiles.Create(ctx, &repository.Profile{Name: "student", BandwidthDownKbps: 4096})
	require.NoError(t, err)

	created, err := svc.Create(ctx, PromotionCreateInput{
		Code:      "L3-2026",
		Name:      "Licence 3",
		Year:      2026,
		ProfileID: &profile.ID,
	})
	require.NoError(t, err)
	assert.True(t, created.Active)
	require.NotNil(t, provisioner.groupAttrs["L3-2026"])
	assert.Equal(t, int64(4096), provisioner.groupAttrs["L3-2026"].BandwidthDownKbps)
}

func TestPromotionCreateRejectsDuplicateCode(t *testing.T) {
	svc, _, _ := newPromotionFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, PromotionCreateInput{Code: "L3-2026", Name: "Licence 3"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, PromotionCreateInput{Code: "L3-2026", Name: "Licence 3 bis"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestPromotionCreateValidation(t *testing.T) {
	svc, _, _ := newPromotionFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, PromotionCreateInput{Code: "", Name: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	badProfile := int64(999)
	_, err = svc.Create(ctx, PromotionCreateInput{Code: "M1-2026", Name: "Master 1", ProfileID: &badProfile})
	assert.ErrorIs(t, err, ErrNotFound)
}
