// ABOUTME: Body measurement service for dated anthropometric records.
// ABOUTME: Every measurement column is optional; the date is required.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/storage"
)

// BodyMeasurementService manages body measurements.
type BodyMeasurementService struct {
	db  *storage.DB
	now func() time.Time
}

var bodyPlaceholders = strings.TrimSuffix(strings.Repeat("?, ", len(models.BodyMeasurementColumns)+1), ", ")

func bodyArgs(b *models.BodyMeasurement) []any {
	args := []any{b.Date}
	for _, f := range b.Fields() {
		args = append(args, *f)
	}
	return args
}

// Add stores a measurement, setting b.ID. An empty date means today.
func (s *BodyMeasurementService) Add(ctx context.Context, b *models.BodyMeasurement) error {
	if b.Date == "" {
		b.Date = s.now().Format(models.DateLayout)
	}
	if err := validateBody(b); err != nil {
		return err
	}

	id, err := storage.Insert(ctx, s.db,
		"INSERT INTO body_measurements (date, "+strings.Join(models.BodyMeasurementColumns, ", ")+
			") VALUES ("+bodyPlaceholders+")",
		bodyArgs(b)...)
	if err != nil {
		return fmt.Errorf("add body measurement: %w", err)
	}
	b.ID = id
	return nil
}

// GetByID returns one measurement.
func (s *BodyMeasurementService) GetByID(ctx context.Context, id int64) (*models.BodyMeasurement, error) {
	return getOne(ctx, s.db, scanBody, "body measurement",
		"SELECT "+bodyCols+" FROM body_measurements WHERE id = ?", id)
}

// GetAll returns every measurement, newest first.
func (s *BodyMeasurementService) GetAll(ctx context.Context) ([]*models.BodyMeasurement, error) {
	list, err := storage.Select(ctx, s.db, scanBody,
		"SELECT "+bodyCols+" FROM body_measurements ORDER BY date DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("list body measurements: %w", err)
	}
	return list, nil
}

// Latest returns the most recent measurement.
func (s *BodyMeasurementService) Latest(ctx context.Context) (*models.BodyMeasurement, error) {
	b, err := storage.Get(ctx, s.db, scanBody,
		"SELECT "+bodyCols+" FROM body_measurements ORDER BY date DESC, id DESC LIMIT 1")
	if err != nil {
		return nil, fmt.Errorf("latest body measurement: %w", err)
	}
	return b, nil
}

// Update rewrites the date and every measurement column.
func (s *BodyMeasurementService) Update(ctx context.Context, b *models.BodyMeasurement) error {
	if err := validateBody(b); err != nil {
		return err
	}
	assignments := make([]string, 0, len(models.BodyMeasurementColumns)+1)
	assignments = append(assignments, "date = ?")
	for _, c := range models.BodyMeasurementColumns {
		assignments = append(assignments, c+" = ?")
	}

	args := append(bodyArgs(b), b.ID)
	if err := storage.Update(ctx, s.db,
		"UPDATE body_measurements SET "+strings.Join(assignments, ", ")+" WHERE id = ?", args...); err != nil {
		return fmt.Errorf("update body measurement: %w", err)
	}
	return nil
}

// Delete removes a measurement.
func (s *BodyMeasurementService) Delete(ctx context.Context, id int64) error {
	if err := storage.DeleteByID(ctx, s.db, storage.TableBodyMeasurements, id); err != nil {
		return fmt.Errorf("delete body measurement: %w", err)
	}
	return nil
}

func validateBody(b *models.BodyMeasurement) error {
	if err := validateDate(b.Date); err != nil {
		return err
	}
	for i, f := range b.Fields() {
		if *f != nil && **f < 0 {
			return fmt.Errorf("%w: %s cannot be negative", ErrInvalid, models.BodyMeasurementColumns[i])
		}
	}
	return nil
}
