package clients

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
)

type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

func (s *Service) Create(ctx context.Context, req CreateClientRequest) (*Client, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validate client: %w", err)
	}

	c := Client{
		Name:    req.Name,
		Address: req.Address,
		Email:   req.Email,
		Phone:   req.Phone,
		ABN:     req.ABN,
		Notes:   req.Notes,
	}

	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateClientRequest) (*Client, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validate client: %w", err)
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.ABN != nil {
		updates["abn"] = *req.ABN
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if len(updates) == 0 {
		return existing, nil
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Client, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, 0, fmt.Errorf("validate list request: %w", err)
	}
	return s.repo.List(ctx, req)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
