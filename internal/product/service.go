package product

import (
	"errors"
	"strings"
)

var ErrInvalidProduct = errors.New("name, category and a non-negative price are required")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(category string) ([]Product, error) {
	return s.repo.List(strings.TrimSpace(category))
}

func (s *Service) GetByID(id string) (Product, error) {
	return s.repo.GetByID(id)
}

func (s *Service) Create(p Product) (Product, error) {
	if err := validateProduct(p); err != nil {
		return Product{}, err
	}
	return s.repo.Create(p)
}

func (s *Service) Update(id string, p Product) (Product, error) {
	if err := validateProduct(p); err != nil {
		return Product{}, err
	}
	return s.repo.Update(id, p)
}

func (s *Service) Delete(id string) error {
	return s.repo.Delete(id)
}

func validateProduct(p Product) error {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Category) == "" || p.Price < 0 || p.Stock < 0 {
		return ErrInvalidProduct
	}
	if p.OfferPrice != nil && (*p.OfferPrice < 0 || *p.OfferPrice > p.Price) {
		return ErrInvalidProduct
	}
	return nil
}
