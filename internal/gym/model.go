package gym

import "time"

type Gym struct {
	ID          int       `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Address     string    `db:"address" json:"address"`
	Latitude    float64   `db:"latitude" json:"latitude"`
	Longitude   float64   `db:"longitude" json:"longitude"`
	Description string    `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type GymWithDistance struct {
	Gym
	DistanceKm float64 `db:"distance_km" json:"distance_km"`
}

// TimeSlot is a recurring daily window with a fixed capacity ceiling.
// TotalSpots is static catalog data; remaining capacity for a concrete date
// is always derived by counting confirmed bookings, never cached.
type TimeSlot struct {
	ID         int       `db:"id" json:"id"`
	GymID      int       `db:"gym_id" json:"gym_id"`
	StartTime  string    `db:"start_time" json:"start_time"`
	EndTime    string    `db:"end_time" json:"end_time"`
	TotalSpots int       `db:"total_spots" json:"total_spots"`
	Price      float64   `db:"price" json:"price"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type CreateGymRequest struct {
	Name        string  `json:"name" binding:"required"`
	Address     string  `json:"address" binding:"required"`
	Latitude    float64 `json:"latitude" binding:"required"`
	Longitude   float64 `json:"longitude" binding:"required"`
	Description string  `json:"description"`
}

type CreateTimeSlotRequest struct {
	StartTime  string  `json:"start_time" binding:"required"`
	EndTime    string  `json:"end_time" binding:"required"`
	TotalSpots int     `json:"total_spots" binding:"required,min=1"`
	Price      float64 `json:"price" binding:"min=0"`
}
