// ABOUTME: Tests for body measurement records.
// ABOUTME: Dates default to today and negative values are rejected.

package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/storage"
)

func TestBodyAddDefaultsToToday(t *testing.T) {
	svc, ctx := setupTestServices(t)

	b := &models.BodyMeasurement{}
	b.Set("weight", 82.4)
	require.NoError(t, svc.Body.Add(ctx, b))
	assert.Equal(t, "2024-01-01", b.Date)

	got, err := svc.Body.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 82.4, *got.Weight)
	assert.Nil(t, got.Waist)
}

func TestBodyLatestAndOrdering(t *testing.T) {
	svc, ctx := setupTestServices(t)

	_, err := svc.Body.Latest(ctx)
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	for _, date := range []string{"2024-02-01", "2024-03-01", "2024-01-01"} {
		b := &models.BodyMeasurement{Date: date}
		b.Set("waist", 80)
		require.NoError(t, svc.Body.Add(ctx, b))
	}

	latest, err := svc.Body.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", latest.Date)

	all, err := svc.Body.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2024-01-01", all[2].Date)
}

func TestBodyUpdateAndDelete(t *testing.T) {
	svc, ctx := setupTestServices(t)

	b := &models.BodyMeasurement{Date: "2024-01-05"}
	b.Set("chest", 100)
	require.NoError(t, svc.Body.Add(ctx, b))

	b.Chest = nil
	b.Set("arm_left", 35.5)
	require.NoError(t, svc.Body.Update(ctx, b))

	got, err := svc.Body.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Chest)
	assert.Equal(t, 35.5, *got.ArmLeft)

	require.NoError(t, svc.Body.Delete(ctx, b.ID))
	assert.Equal(t, 0, count(t, svc, storage.TableBodyMeasurements))
}

func TestBodyValidation(t *testing.T) {
	svc, ctx := setupTestServices(t)

	neg := &models.BodyMeasurement{Date: "2024-01-01"}
	neg.Set("calf_right", -2)
	assert.True(t, errors.Is(svc.Body.Add(ctx, neg), ErrInvalid))

	badDate := &models.BodyMeasurement{Date: "01/02/2024"}
	assert.True(t, errors.Is(svc.Body.Add(ctx, badDate), ErrInvalid))
}
