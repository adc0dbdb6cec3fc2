package request

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/courtlens/docketdex/internal/domain"
)

// OrderKey names a supported ordering.
type OrderKey string

// Ordering keys.
const (
	// OrderScore is blended relevance, descending by default.
	OrderScore OrderKey = "score"
	// OrderRandom is a seed-stable shuffle.
	OrderRandom OrderKey = "random"
	// OrderEntryDateFiled sorts by the filing entry date (child field).
	OrderEntryDateFiled OrderKey = "entry_date_filed"
	// OrderDateFiled sorts by the docket filed date (parent field).
	OrderDateFiled OrderKey = "date_filed"
)

// Order is a parsed order_by value.
type Order struct {
	Key  OrderKey
	Desc bool
	// Seed is set for OrderRandom only.
	Seed uint64
}

// ParseOrder parses "score desc", "date_filed asc", "random_123", ...
// Empty input defaults to score descending. Unknown keys fail with
// domain.ErrBadOrder.
func ParseOrder(s string) (Order, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Order{Key: OrderScore, Desc: true}, nil
	}

	key := s
	dir := ""
	if idx := strings.IndexByte(s, ' '); idx > 0 {
		key = s[:idx]
		dir = strings.TrimSpace(s[idx+1:])
	}

	var o Order
	switch {
	case key == string(OrderScore):
		o.Key = OrderScore
	case key == string(OrderEntryDateFiled):
		o.Key = OrderEntryDateFiled
	case key == string(OrderDateFiled):
		o.Key = OrderDateFiled
	case strings.HasPrefix(key, "random_"):
		seed, err := strconv.ParseUint(key[len("random_"):], 10, 64)
		if err != nil {
			return Order{}, fmt.Errorf("%w: bad random seed in %q", domain.ErrBadOrder, s)
		}
		o.Key = OrderRandom
		o.Seed = seed
	default:
		return Order{}, fmt.Errorf("%w: %q", domain.ErrBadOrder, key)
	}

	switch dir {
	case "", "desc":
		o.Desc = true
	case "asc":
		o.Desc = false
	default:
		return Order{}, fmt.Errorf("%w: bad direction %q", domain.ErrBadOrder, dir)
	}

	// score asc is allowed but unusual; random direction is meaningless
	if o.Key == OrderRandom {
		o.Desc = false
	}
	return o, nil
}
