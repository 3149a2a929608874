// ABOUTME: Domain services for gymlog, one per entity, sharing one database.
// ABOUTME: Services validate input and compose storage helpers into operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/gymlog/internal/logging"
	"github.com/harperreed/gymlog/internal/storage"
)

// ErrInvalid is returned when input fails validation.
var ErrInvalid = errors.New("invalid input")

const defaultCacheSize = 512

// Services bundles every domain service.
type Services struct {
	Workouts         *WorkoutService
	Exercises        *ExerciseService
	SessionExercises *SessionExerciseService
	Sets             *SetService
	Supersets        *SupersetService
	Routines         *RoutineService
	RoutineExercises *RoutineExerciseService
	RoutineSets      *RoutineSetService
	Body             *BodyMeasurementService

	db *storage.DB
}

type options struct {
	now       func() time.Time
	logger    *log.Logger
	cacheSize int
}

// Option configures Services.
type Option func(*options)

// WithClock sets the clock used to stamp new workouts and measurements.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the service logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithCacheSize sets the maximum number of cached exercises.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// New wires every service to db.
func New(db *storage.DB, opts ...Option) (*Services, error) {
	o := options{
		now:       time.Now,
		logger:    logging.Discard(),
		cacheSize: defaultCacheSize,
	}
	for _, opt := range opts {
		opt(&o)
	}

	exercises, err := newExerciseService(db, o.cacheSize, o.logger)
	if err != nil {
		return nil, err
	}

	s := &Services{db: db, Exercises: exercises}
	s.Sets = &SetService{db: db}
	s.Supersets = &SupersetService{db: db}
	s.SessionExercises = &SessionExerciseService{db: db}
	s.RoutineSets = &RoutineSetService{db: db}
	s.RoutineExercises = &RoutineExerciseService{db: db}
	s.Routines = &RoutineService{db: db, exercises: s.RoutineExercises, sets: s.RoutineSets}
	s.Workouts = &WorkoutService{db: db, now: o.now, logger: o.logger}
	s.Body = &BodyMeasurementService{db: db, now: o.now}
	return s, nil
}

// DB returns the underlying database.
func (s *Services) DB() *storage.DB {
	return s.db
}

// RestoreDatabase replaces the database with a backup file.
func (s *Services) RestoreDatabase(ctx context.Context, src string) error {
	defer s.Exercises.Purge()
	return s.db.Import(ctx, src)
}

// ResetDatabase deletes every record and starts over with the default exercises.
func (s *Services) ResetDatabase(ctx context.Context) error {
	defer s.Exercises.Purge()
	if err := s.db.Delete(ctx); err != nil {
		return err
	}
	return s.db.Init(ctx)
}

func requireName(field, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalid, field)
	}
	return nil
}

func notFound(what string, id int64) error {
	return fmt.Errorf("%s %d: %w", what, id, storage.ErrNotFound)
}

// getOne fetches a single row by id, naming the entity in not-found errors.
func getOne[T any](ctx context.Context, h storage.Handle, scan storage.ScanFunc[T], what, query string, id int64) (T, error) {
	v, err := storage.Get(ctx, h, scan, query, id)
	if errors.Is(err, storage.ErrNotFound) {
		return v, notFound(what, id)
	}
	if err != nil {
		return v, fmt.Errorf("get %s: %w", what, err)
	}
	return v, nil
}
