package services

import (
	"bytes"
	"context"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfficeCreateAndUpdate(t *testing.T) {
	e := newEnv(t, morning)
	ctx := context.Background()

	office, err := e.offices.Create(ctx, OfficeInput{Name: "  Pune  ", Latitude: 18.52, Longitude: 73.85})
	require.NoError(t, err)
	assert.Equal(t, "Pune", office.Name)
	assert.Equal(t, 100, office.AllowedRadiusM)
	assert.True(t, office.IsActive)

	_, err = e.offices.Create(ctx, OfficeInput{Name: "Nowhere", Latitude: 91, Longitude: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.offices.Create(ctx, OfficeInput{Name: "", Latitude: 1, Longitude: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.offices.Create(ctx, OfficeInput{Name: "Neg", Latitude: 1, Longitude: 1, AllowedRadiusM: -5})
	assert.ErrorIs(t, err, ErrInvalidInput)

	closed, err := e.offices.Create(ctx, OfficeInput{Name: "Closed", Latitude: 1, Longitude: 1, IsActive: ptr(false)})
	require.NoError(t, err)
	reloaded, err := e.officeRepo.GetByID(ctx, closed.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive)

	updated, err := e.offices.Update(ctx, office.ID, OfficePatch{AllowedRadiusM: ptr(250), Address: ptr(" FC Road ")})
	require.NoError(t, err)
	assert.Equal(t, 250, updated.AllowedRadiusM)
	assert.Equal(t, "FC Road", updated.Address)
	assert.Equal(t, "Pune", updated.Name)

	_, err = e.offices.Update(ctx, office.ID, OfficePatch{Longitude: ptr(-181.0)})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.offices.Update(ctx, 4242, OfficePatch{Name: ptr("x")})
	assert.ErrorIs(t, err, ErrOfficeNotFound)

	list, err := e.offices.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestOfficeQRLifecycle(t *testing.T) {
	e := newEnv(t, morning)
	ctx := context.Background()

	office, err := e.offices.Create(ctx, OfficeInput{Name: "HQ", Latitude: officeLat, Longitude: officeLng})
	require.NoError(t, err)

	_, err = e.offices.GetQR(ctx, office.ID)
	assert.ErrorIs(t, err, ErrQRNotGenerated)
	_, err = e.offices.QRCodePNG(ctx, office.ID, 0)
	assert.ErrorIs(t, err, ErrQRNotGenerated)

	first, err := e.offices.GenerateQR(ctx, office.ID)
	require.NoError(t, err)
	assert.Len(t, first.Token, 32)

	e.clock.Advance(time.Minute)
	second, err := e.offices.GenerateQR(ctx, office.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)
	assert.Equal(t, first.ID, second.ID, "rotation keeps one token row per office")

	current, err := e.offices.GetQR(ctx, office.ID)
	require.NoError(t, err)
	assert.Equal(t, second.Token, current.Token)

	_, err = e.offices.ResolveToken(ctx, first.Token)
	assert.ErrorIs(t, err, ErrInvalidQRToken)
	resolved, err := e.offices.ResolveToken(ctx, " "+second.Token+" ")
	require.NoError(t, err)
	require.NotNil(t, resolved.Office)
	assert.Equal(t, "HQ", resolved.Office.Name)

	raw, err := e.offices.QRCodePNG(ctx, office.ID, 0)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())

	_, err = e.offices.Update(ctx, office.ID, OfficePatch{IsActive: ptr(false)})
	require.NoError(t, err)
	_, err = e.offices.GenerateQR(ctx, office.ID)
	assert.ErrorIs(t, err, ErrOfficeNotFound)
}
