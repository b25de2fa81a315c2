package gym

import (
	"context"
	"errors"
	"time"
)

var ErrTimeSlotInvalid = errors.New("invalid time slot")

type Service interface {
	CreateGym(ctx context.Context, req CreateGymRequest) (*Gym, error)
	GetAllGyms(ctx context.Context) ([]Gym, error)
	GetGymByID(ctx context.Context, id int) (*Gym, error)
	GetNearbyGyms(ctx context.Context, lat, lng, radiusKm float64) ([]GymWithDistance, error)
	CreateTimeSlot(ctx context.Context, gymID int, req CreateTimeSlotRequest) (*TimeSlot, error)
	GetTimeSlots(ctx context.Context, gymID int) ([]TimeSlot, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{
		repo: repo,
	}
}

func (s *service) CreateGym(ctx context.Context, req CreateGymRequest) (*Gym, error) {
	return s.repo.CreateGym(ctx, req)
}

func (s *service) GetAllGyms(ctx context.Context) ([]Gym, error) {
	return s.repo.GetAllGyms(ctx)
}

func (s *service) GetGymByID(ctx context.Context, id int) (*Gym, error) {
	return s.repo.GetGymByID(ctx, id)
}

func (s *service) GetNearbyGyms(ctx context.Context, lat, lng, radiusKm float64) ([]GymWithDistance, error) {
	if radiusKm <= 0 {
		radiusKm = 10
	}
	return s.repo.GetNearbyGyms(ctx, lat, lng, radiusKm)
}

func (s *service) CreateTimeSlot(ctx context.Context, gymID int, req CreateTimeSlotRequest) (*TimeSlot, error) {
	if _, err := s.repo.GetGymByID(ctx, gymID); err != nil {
		return nil, err
	}

	startTime, err := time.Parse("15:04", req.StartTime)
	if err != nil {
		return nil, ErrTimeSlotInvalid
	}

	endTime, err := time.Parse("15:04", req.EndTime)
	if err != nil {
		return nil, ErrTimeSlotInvalid
	}

	if !endTime.After(startTime) {
		return nil, ErrTimeSlotInvalid
	}

	if req.TotalSpots <= 0 {
		return nil, ErrTimeSlotInvalid
	}

	return s.repo.CreateTimeSlot(ctx, gymID, req)
}

func (s *service) GetTimeSlots(ctx context.Context, gymID int) ([]TimeSlot, error) {
	if _, err := s.repo.GetGymByID(ctx, gymID); err != nil {
		return nil, err
	}

	return s.repo.GetTimeSlotsByGym(ctx, gymID)
}
