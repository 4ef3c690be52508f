package menu

import (
	"context"
	"fmt"
)

// Reader is the slice of the backend client the menu needs.
type Reader interface {
	Get(ctx context.Context, path string, out any) error
}

// Service resolves menu data: products, toppings, categories.
type Service struct {
	api Reader
}

func NewService(api Reader) (*Service, error) {
	if api == nil {
		return nil, fmt.Errorf("api client is required")
	}
	return &Service{api: api}, nil
}

func (s *Service) Products(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := s.api.Get(ctx, "/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Service) Product(ctx context.Context, id int64) (*Product, error) {
	var product Product
	if err := s.api.Get(ctx, fmt.Sprintf("/products/%d", id), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *Service) Toppings(ctx context.Context) ([]Topping, error) {
	var toppings []Topping
	if err := s.api.Get(ctx, "/toppings", &toppings); err != nil {
		return nil, err
	}
	return toppings, nil
}

func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := s.api.Get(ctx, "/admin/categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}
