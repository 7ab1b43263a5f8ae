package models

import "sort"

// Mix maps categories to egg quantities. It is used for collection counts,
// carton contents and debit requests.
type Mix map[CategoryID]int

// Total sums every quantity in the mix.
func (m Mix) Total() int {
	total := 0
	for _, qty := range m {
		total += qty
	}
	return total
}

// Keys returns the mix keys sorted lexically, so iteration is deterministic.
func (m Mix) Keys() []CategoryID {
	keys := make([]CategoryID, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Positive returns a copy that keeps only entries with qty > 0.
func (m Mix) Positive() Mix {
	out := make(Mix, len(m))
	for k, qty := range m {
		if qty > 0 {
			out[k] = qty
		}
	}
	return out
}

// Clone returns an independent copy.
func (m Mix) Clone() Mix {
	out := make(Mix, len(m))
	for k, qty := range m {
		out[k] = qty
	}
	return out
}

// Inventory is a snapshot of loose eggs on hand. Absent keys mean zero.
type Inventory map[CategoryID]int

// Count returns the quantity on hand for id.
func (inv Inventory) Count(id CategoryID) int {
	return inv[id]
}

// Total sums every category.
func (inv Inventory) Total() int {
	return Mix(inv).Total()
}

// Clone returns an independent copy.
func (inv Inventory) Clone() Inventory {
	return Inventory(Mix(inv).Clone())
}
