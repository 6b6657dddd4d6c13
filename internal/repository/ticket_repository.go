package repository

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/spec-kit/manday-tracker/internal/domain"
	"github.com/spec-kit/manday-tracker/internal/persistence"
)

const ticketKeyPrefix = "ticket:"

// TicketRepository encapsulates ticket persistence over the key-value
// store. Saves are full-record replaces; there are no secondary indices,
// callers filter in memory.
type TicketRepository interface {
	LoadAll(ctx context.Context) ([]domain.Ticket, error)
	Save(ctx context.Context, ticket *domain.Ticket) error
}

type ticketRepository struct {
	kv persistence.KV
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(kv persistence.KV) TicketRepository {
	return &ticketRepository{kv: kv}
}

// LoadAll lists every key under ticket:, fetches and decodes each record,
// and returns the result sorted newest-first by createdAt. Entries that
// fail to decode or vanished between list and get are dropped.
func (r *ticketRepository) LoadAll(ctx context.Context) ([]domain.Ticket, error) {
	keys, err := r.kv.List(ctx, ticketKeyPrefix)
	if err != nil {
		return nil, err
	}

	tickets := make([]domain.Ticket, 0, len(keys))
	for _, key := range keys {
		value, err := r.kv.Get(ctx, key)
		if err != nil {
			if err == persistence.ErrKeyNotFound {
				continue
			}
			return nil, err
		}
		var ticket domain.Ticket
		if err := json.Unmarshal([]byte(value), &ticket); err != nil {
			// corrupt entry, treat as missing
			continue
		}
		tickets = append(tickets, ticket)
	}

	sort.SliceStable(tickets, func(i, j int) bool {
		return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
	})
	return tickets, nil
}

func (r *ticketRepository) Save(ctx context.Context, ticket *domain.Ticket) error {
	encoded, err := json.Marshal(ticket)
	if err != nil {
		return err
	}
	return r.kv.Set(ctx, ticketKeyPrefix+ticket.ID, string(encoded))
}
