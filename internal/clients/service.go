package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wimotos/wimotos/internal/viewmodel"
)

var (
	// ErrInvalidPhone indicates a phone outside the 10-11 digit range.
	ErrInvalidPhone = errors.New("phone must have 10 or 11 digits")
	// ErrInvalidCPF indicates a CPF without exactly 11 digits.
	ErrInvalidCPF = errors.New("cpf must have 11 digits")
)

// Service wraps client business rules.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns clients matching the filters.
func (s *Service) List(ctx context.Context, req ListClientsRequest) ([]Client, error) {
	return s.repo.List(ctx, req)
}

// Get returns one client.
func (s *Service) Get(ctx context.Context, id int64) (*Client, error) {
	return s.repo.Get(ctx, id)
}

// Create stores a new client with normalized phone/CPF digits.
func (s *Service) Create(ctx context.Context, req CreateClientRequest) (*Client, error) {
	phone, err := normalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}
	cpf, err := normalizeCPF(req.CPF)
	if err != nil {
		return nil, err
	}

	client := Client{
		Name:    strings.TrimSpace(req.Name),
		Phone:   phone,
		CPF:     cpf,
		Address: req.Address,
		Notes:   req.Notes,
	}
	id, err := s.repo.Create(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return s.repo.Get(ctx, id)
}

// Update applies the non-nil fields and returns the stored row.
func (s *Service) Update(ctx context.Context, id int64, req UpdateClientRequest) (*Client, error) {
	client, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		client.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		phone, err := normalizePhone(*req.Phone)
		if err != nil {
			return nil, err
		}
		client.Phone = phone
	}
	if req.CPF != nil {
		cpf, err := normalizeCPF(req.CPF)
		if err != nil {
			return nil, err
		}
		client.CPF = cpf
	}
	if req.Address != nil {
		client.Address = req.Address
	}
	if req.Notes != nil {
		client.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, *client); err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func normalizePhone(raw string) (string, error) {
	digits := viewmodel.OnlyDigits(raw)
	if len(digits) < 10 || len(digits) > 11 {
		return "", ErrInvalidPhone
	}
	return digits, nil
}

func normalizeCPF(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	digits := viewmodel.OnlyDigits(*raw)
	if digits == "" {
		return nil, nil
	}
	if len(digits) != 11 {
		return nil, ErrInvalidCPF
	}
	return &digits, nil
}
