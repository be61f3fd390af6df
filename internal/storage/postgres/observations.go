package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hivemindhq/hivemind/internal/models"
	"github.com/hivemindhq/hivemind/internal/storage"
)

const observationColumns = `id, observer_id, date, time, time_zone_offset, w3w,
	latitude, longitude, free_space_path_loss, bit_error_rate, temperature,
	humidity, snowfall, wind_speed, wind_direction, precipitation, haze,
	notes, created_at`

// CreateObservation inserts a new observation row. A missing id is assigned
// here; created_at comes from the database clock.
func (s *Store) CreateObservation(ctx context.Context, obs models.Observation) (models.Observation, error) {
	if obs.ID == "" {
		obs.ID = uuid.NewString()
	}

	query := fmt.Sprintf(`
		INSERT INTO observations (id, observer_id, date, time,
			time_zone_offset, w3w, latitude, longitude, free_space_path_loss,
			bit_error_rate, temperature, humidity, snowfall, wind_speed,
			wind_direction, precipitation, haze, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18)
		RETURNING %s`, observationColumns)

	row := s.pool.QueryRow(ctx, query,
		obs.ID, obs.ObserverID, obs.Date, obs.Time, obs.TimeZoneOffset,
		obs.Coordinates.W3W, obs.Coordinates.Latitude, obs.Coordinates.Longitude,
		obs.FreeSpacePathLoss, obs.BitErrorRate, obs.Temperature, obs.Humidity,
		obs.Snowfall, obs.WindSpeed, obs.WindDirection, obs.Precipitation,
		obs.Haze, obs.Notes)

	created, err := scanObservation(row)
	if err != nil {
		return models.Observation{}, fmt.Errorf("insert observation: %w", err)
	}
	return created, nil
}

// FindObservationByID fetches one observation by id.
func (s *Store) FindObservationByID(ctx context.Context, id string) (models.Observation, error) {
	query := fmt.Sprintf(`SELECT %s FROM observations WHERE id = $1`, observationColumns)
	obs, err := scanObservation(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Observation{}, storage.ErrNotFound
		}
		return models.Observation{}, fmt.Errorf("find observation: %w", err)
	}
	return obs, nil
}

// ListRecentByObserver returns the observer's newest observations first.
func (s *Store) ListRecentByObserver(ctx context.Context, observerID string, limit int) ([]models.Observation, error) {
	query := fmt.Sprintf(`SELECT %s FROM observations WHERE observer_id = $1
		ORDER BY created_at DESC`, observationColumns)
	args := []any{observerID}
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recent observations: %w", err)
	}
	defer rows.Close()
	return collectObservations(rows)
}

// ListHistoryByObserver returns the observer's observations ordered by the
// observed date and time, newest first.
func (s *Store) ListHistoryByObserver(ctx context.Context, observerID string) ([]models.Observation, error) {
	query := fmt.Sprintf(`SELECT %s FROM observations WHERE observer_id = $1
		ORDER BY date DESC, time DESC`, observationColumns)
	rows, err := s.pool.Query(ctx, query, observerID)
	if err != nil {
		return nil, fmt.Errorf("list observation history: %w", err)
	}
	defer rows.Close()
	return collectObservations(rows)
}

// ListByDateRange returns the observer's observations with date in [from, to],
// newest first. YYYYMMDD strings compare correctly as text.
func (s *Store) ListByDateRange(ctx context.Context, observerID, from, to string) ([]models.Observation, error) {
	query := fmt.Sprintf(`SELECT %s FROM observations
		WHERE observer_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date DESC, time DESC`, observationColumns)
	rows, err := s.pool.Query(ctx, query, observerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list observations by date range: %w", err)
	}
	defer rows.Close()
	return collectObservations(rows)
}

func scanObservation(row pgx.Row) (models.Observation, error) {
	var obs models.Observation
	err := row.Scan(
		&obs.ID, &obs.ObserverID, &obs.Date, &obs.Time, &obs.TimeZoneOffset,
		&obs.Coordinates.W3W, &obs.Coordinates.Latitude, &obs.Coordinates.Longitude,
		&obs.FreeSpacePathLoss, &obs.BitErrorRate, &obs.Temperature,
		&obs.Humidity, &obs.Snowfall, &obs.WindSpeed, &obs.WindDirection,
		&obs.Precipitation, &obs.Haze, &obs.Notes, &obs.CreatedAt)
	if err != nil {
		return models.Observation{}, err
	}
	return obs, nil
}

func collectObservations(rows pgx.Rows) ([]models.Observation, error) {
	var out []models.Observation
	for rows.Next() {
		obs, err := scanObservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		out = append(out, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observations: %w", err)
	}
	return out, nil
}
