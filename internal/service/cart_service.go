package service

import (
	"context"
	"fmt"

	"github.com/hoteler/hotel-bookings/internal/domain"
	"github.com/hoteler/hotel-bookings/internal/repository"
)

type CartService interface {
	Add(ctx context.Context, userID int64, req *domain.CartItemRequest) (*domain.CartItem, error)
	Get(ctx context.Context, id, userID int64) (*domain.CartItem, error)
	List(ctx context.Context, userID int64, opts repository.ListOptions) ([]domain.CartItem, int, error)
	Update(ctx context.Context, id, userID int64, patch domain.CartItemPatch) (*domain.CartItem, error)
	Remove(ctx context.Context, id, userID int64) error
}

type cartService struct {
	cartRepo repository.CartRepository
	roomRepo repository.RoomRepository
}

func NewCartService(cartRepo repository.CartRepository, roomRepo repository.RoomRepository) CartService {
	return &cartService{cartRepo: cartRepo, roomRepo: roomRepo}
}

func (s *cartService) Add(ctx context.Context, userID int64, req *domain.CartItemRequest) (*domain.CartItem, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	room, err := s.roomRepo.GetByID(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, fmt.Errorf("%w: room %d", domain.ErrNotFound, req.RoomID)
	}

	return s.cartRepo.Create(ctx, userID, req)
}

func (s *cartService) Get(ctx context.Context, id, userID int64) (*domain.CartItem, error) {
	item, err := s.cartRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: cart item %d", domain.ErrNotFound, id)
	}
	return item, nil
}

func (s *cartService) List(ctx context.Context, userID int64, opts repository.ListOptions) ([]domain.CartItem, int, error) {
	total, err := s.cartRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count cart items: %w", err)
	}

	items, err := s.cartRepo.ListByUser(ctx, userID, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list cart items: %w", err)
	}
	return items, total, nil
}

func (s *cartService) Update(ctx context.Context, id, userID int64, patch domain.CartItemPatch) (*domain.CartItem, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return s.cartRepo.Update(ctx, id, userID, patch)
}

func (s *cartService) Remove(ctx context.Context, id, userID int64) error {
	return s.cartRepo.Delete(ctx, id, userID)
}
