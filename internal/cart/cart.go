package cart

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store is the session-local list of cart lines. All operations are
// total functions over the current state: nothing here validates,
// fails, or touches the network. Derived aggregates are recomputed on
// every read, so there is no cached total to invalidate.
//
// A mutex stands in for the single-threaded event loop the original
// client ran on; operations never interleave mid-mutation.
type Store struct {
	mu    sync.Mutex
	lines []Line
}

func NewStore() *Store {
	return &Store{}
}

// Add appends a new line with a freshly assigned identity and returns
// it. Adding the same product/size/topping configuration twice yields
// two distinct lines: sequential adds never collapse into a quantity
// bump. That mirrors the shipped behavior; merging is a product
// decision nobody has made.
func (s *Store) Add(input NewLine) Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.append(input)
}

// AddAll appends every entry in input order, as the reorder flow does.
func (s *Store) AddAll(inputs []NewLine) []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := make([]Line, 0, len(inputs))
	for _, input := range inputs {
		added = append(added, s.append(input))
	}
	return added
}

// Remove deletes the line with the given identity. Removing an absent
// identity is a no-op, not an error.
func (s *Store) Remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(id)
}

// UpdateQuantity replaces the quantity on the matching line. A
// quantity of zero or less removes the line instead; the store never
// holds a non-positive quantity.
func (s *Store) UpdateQuantity(id uuid.UUID, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.remove(id)
		return
	}
	for i := range s.lines {
		if s.lines[i].ID == id {
			s.lines[i].Quantity = quantity
			return
		}
	}
}

// UpdateNote replaces the free-text note on the matching line; no-op
// if absent.
func (s *Store) UpdateNote(id uuid.UUID, note string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].ID == id {
			s.lines[i].Note = note
			return
		}
	}
}

// Clear empties the cart unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
}

// Lines returns a copy of the current lines in insertion order. The
// copy is deep: mutating a returned line's toppings or options never
// reaches store state.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Line, len(s.lines))
	for i, line := range s.lines {
		out[i] = line.clone()
	}
	return out
}

// TotalItems is the sum of quantities across all lines.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, line := range s.lines {
		total += line.Quantity
	}
	return total
}

// Subtotal is the sum of unit price times quantity across all lines.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, line := range s.lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

func (s *Store) append(input NewLine) Line {
	line := Line{
		ID:        uuid.New(),
		ProductID: input.ProductID,
		Name:      input.Name,
		UnitPrice: input.UnitPrice,
		Image:     input.Image,
		Size:      input.Size,
		Toppings:  append([]string(nil), input.Toppings...),
		Quantity:  input.Quantity,
		Note:      input.Note,
	}
	if input.Options != nil {
		options := *input.Options
		line.Options = &options
	}
	s.lines = append(s.lines, line)
	return line.clone()
}

func (s *Store) remove(id uuid.UUID) {
	for i := range s.lines {
		if s.lines[i].ID == id {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return
		}
	}
}
