package settings

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

func (s *Service) Get(ctx context.Context) (*CompanySettings, error) {
	return s.repo.Get(ctx)
}

func (s *Service) Upsert(ctx context.Context, req UpsertSettingsRequest) (*CompanySettings, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validate settings: %w", err)
	}

	cfg := CompanySettings{
		CompanyName:     req.CompanyName,
		ABN:             req.ABN,
		Address:         req.Address,
		Phone:           req.Phone,
		Email:           req.Email,
		BankBSB:         req.BankBSB,
		BankAccount:     req.BankAccount,
		BankAccountName: req.BankAccountName,
		Notes:           req.Notes,
		InvoiceNotes:    req.InvoiceNotes,
		EstimateNotes:   req.EstimateNotes,
	}

	if err := s.repo.Upsert(ctx, cfg); err != nil {
		return nil, fmt.Errorf("upsert settings: %w", err)
	}
	return s.repo.Get(ctx)
}
