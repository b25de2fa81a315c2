package gym

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	ErrGymNotFound  = errors.New("gym not found")
	ErrSlotNotFound = errors.New("time slot not found")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateGym(ctx context.Context, req CreateGymRequest) (*Gym, error) {
	query := `
		INSERT INTO gyms (name, address, latitude, longitude, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, address, latitude, longitude, description, created_at
	`

	var gym Gym
	err := r.db.GetContext(ctx, &gym, query, req.Name, req.Address, req.Latitude, req.Longitude, req.Description)
	if err != nil {
		return nil, err
	}

	return &gym, nil
}

func (r *repository) GetAllGyms(ctx context.Context) ([]Gym, error) {
	query := `
		SELECT id, name, address, latitude, longitude, description, created_at
		FROM gyms
		ORDER BY created_at DESC
	`

	var gyms []Gym
	err := r.db.SelectContext(ctx, &gyms, query)
	if err != nil {
		return nil, err
	}

	return gyms, nil
}

func (r *repository) GetGymByID(ctx context.Context, id int) (*Gym, error) {
	query := `
		SELECT id, name, address, latitude, longitude, description, created_at
		FROM gyms
		WHERE id = $1
	`

	var gym Gym
	err := r.db.GetContext(ctx, &gym, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGymNotFound
	}
	if err != nil {
		return nil, err
	}

	return &gym, nil
}

// GetNearbyGyms ranks gyms by Haversine distance from the given point and
// returns those within radiusKm.
func (r *repository) GetNearbyGyms(ctx context.Context, lat, lng, radiusKm float64) ([]GymWithDistance, error) {
	query := `
		SELECT id, name, address, latitude, longitude, description, created_at,
			6371 * acos(
				cos(radians($1)) * cos(radians(latitude)) *
				cos(radians(longitude) - radians($2)) +
				sin(radians($1)) * sin(radians(latitude))
			) AS distance_km
		FROM gyms
		WHERE 6371 * acos(
				cos(radians($1)) * cos(radians(latitude)) *
				cos(radians(longitude) - radians($2)) +
				sin(radians($1)) * sin(radians(latitude))
			) <= $3
		ORDER BY distance_km ASC
	`

	var gyms []GymWithDistance
	err := r.db.SelectContext(ctx, &gyms, query, lat, lng, radiusKm)
	if err != nil {
		return nil, err
	}

	return gyms, nil
}

func (r *repository) CreateTimeSlot(ctx context.Context, gymID int, req CreateTimeSlotRequest) (*TimeSlot, error) {
	query := `
		INSERT INTO time_slots (gym_id, start_time, end_time, total_spots, price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, gym_id, start_time, end_time, total_spots, price, created_at
	`

	var slot TimeSlot
	err := r.db.GetContext(ctx, &slot, query, gymID, req.StartTime, req.EndTime, req.TotalSpots, req.Price)
	if err != nil {
		return nil, err
	}

	return &slot, nil
}

func (r *repository) GetTimeSlotsByGym(ctx context.Context, gymID int) ([]TimeSlot, error) {
	query := `
		SELECT id, gym_id, start_time, end_time, total_spots, price, created_at
		FROM time_slots
		WHERE gym_id = $1
		ORDER BY start_time ASC
	`

	var slots []TimeSlot
	err := r.db.SelectContext(ctx, &slots, query, gymID)
	if err != nil {
		return nil, err
	}

	return slots, nil
}

func (r *repository) GetTimeSlotByID(ctx context.Context, id int) (*TimeSlot, error) {
	query := `
		SELECT id, gym_id, start_time, end_time, total_spots, price, created_at
		FROM time_slots
		WHERE id = $1
	`

	var slot TimeSlot
	err := r.db.GetContext(ctx, &slot, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}

	return &slot, nil
}
