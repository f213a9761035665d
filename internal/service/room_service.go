package service

import (
	"context"
	"fmt"

	"github.com/hoteler/hotel-bookings/internal/domain"
	"github.com/hoteler/hotel-bookings/internal/repository"
)

type RoomService interface {
	Create(ctx context.Context, req *domain.CreateRoomRequest) (*domain.Room, error)
	Get(ctx context.Context, id int64) (*domain.Room, error)
	List(ctx context.Context, filter domain.RoomFilter, opts repository.ListOptions) ([]domain.Room, int, error)
	Update(ctx context.Context, id int64, patch domain.RoomPatch) (*domain.Room, error)
	Delete(ctx context.Context, id int64) error
}

type roomService struct {
	roomRepo repository.RoomRepository
}

func NewRoomService(roomRepo repository.RoomRepository) RoomService {
	return &roomService{roomRepo: roomRepo}
}

func (s *roomService) Create(ctx context.Context, req *domain.CreateRoomRequest) (*domain.Room, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.roomRepo.Create(ctx, req)
}

func (s *roomService) Get(ctx context.Context, id int64) (*domain.Room, error) {
	room, err := s.roomRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, fmt.Errorf("%w: room %d", domain.ErrNotFound, id)
	}
	return room, nil
}

func (s *roomService) List(ctx context.Context, filter domain.RoomFilter, opts repository.ListOptions) ([]domain.Room, int, error) {
	total, err := s.roomRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count rooms: %w", err)
	}

	rooms, err := s.roomRepo.List(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, total, nil
}

func (s *roomService) Update(ctx context.Context, id int64, patch domain.RoomPatch) (*domain.Room, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return s.roomRepo.Update(ctx, id, patch)
}

func (s *roomService) Delete(ctx context.Context, id int64) error {
	return s.roomRepo.Delete(ctx, id)
}
