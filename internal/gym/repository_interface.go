package gym

import "context"

type Repository interface {
	CreateGym(ctx context.Context, req CreateGymRequest) (*Gym, error)
	GetAllGyms(ctx context.Context) ([]Gym, error)
	GetGymByID(ctx context.Context, id int) (*Gym, error)
	GetNearbyGyms(ctx context.Context, lat, lng, radiusKm float64) ([]GymWithDistance, error)
	CreateTimeSlot(ctx context.Context, gymID int, req CreateTimeSlotRequest) (*TimeSlot, error)
	GetTimeSlotsByGym(ctx context.Context, gymID int) ([]TimeSlot, error)
	GetTimeSlotByID(ctx context.Context, id int) (*TimeSlot, error)
}
