package repository

import (
	"context"
	"encoding/json"

	"github.com/spec-kit/manday-tracker/internal/domain"
	"github.com/spec-kit/manday-tracker/internal/persistence"
)

const customersKey = "customers-data"

// CustomerRepository persists the customer collection as one serialized
// blob. Spreadsheet import and debits both replace the whole collection
// atomically, so whole-blob semantics are the contract here.
type CustomerRepository interface {
	LoadAll(ctx context.Context) ([]domain.Customer, error)
	ReplaceAll(ctx context.Context, customers []domain.Customer) error
}

type customerRepository struct {
	kv persistence.KV
}

// NewCustomerRepository instantiates repository.
func NewCustomerRepository(kv persistence.KV) CustomerRepository {
	return &customerRepository{kv: kv}
}

func (r *customerRepository) LoadAll(ctx context.Context) ([]domain.Customer, error) {
	value, err := r.kv.Get(ctx, customersKey)
	if err != nil {
		if err == persistence.ErrKeyNotFound {
			return []domain.Customer{}, nil
		}
		return nil, err
	}
	var customers []domain.Customer
	if err := json.Unmarshal([]byte(value), &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *customerRepository) ReplaceAll(ctx context.Context, customers []domain.Customer) error {
	if customers == nil {
		customers = []domain.Customer{}
	}
	encoded, err := json.Marshal(customers)
	if err != nil {
		return err
	}
	return r.kv.Set(ctx, customersKey, string(encoded))
}
