package cart

import (
	"context"
	"encoding/json"
	"fmt"
)

// Storage persists one session's cart.
type Storage interface {
	// Load returns the saved cart. found is false when nothing is stored.
	Load(ctx context.Context) (c Cart, found bool, err error)
	Save(ctx context.Context, c Cart) error
	Delete(ctx context.Context) error
}

// Provider hands out the Storage bound to a session.
type Provider interface {
	ForSession(sessionID string) Storage
}

func encode(c Cart) ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode cart: %w", err)
	}
	return data, nil
}

func decode(data []byte) (Cart, error) {
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return Cart{}, fmt.Errorf("decode cart: %w", err)
	}
	if c.Items == nil {
		c.Items = []Item{}
	}
	c.recompute()
	return c, nil
}

type nopStorage struct{}

func (nopStorage) Load(context.Context) (Cart, bool, error) { return Cart{}, false, nil }
func (nopStorage) Save(context.Context, Cart) error         { return nil }
func (nopStorage) Delete(context.Context) error             { return nil }
