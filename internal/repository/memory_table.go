package repository

import "slices"

// table keeps rows by id and remembers insertion order.
type table[T any] struct {
	rows  map[string]*T
	order []string
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]*T)}
}

func (t *table[T]) get(id string) (*T, bool) {
	row, ok := t.rows[id]
	return row, ok
}

func (t *table[T]) insert(id string, row *T) {
	t.rows[id] = row
	t.order = append(t.order, id)
}

func (t *table[T]) replace(id string, row *T) {
	t.rows[id] = row
}

// remove deletes id and returns the removed row with its position in the
// insertion order so restore can put it back.
func (t *table[T]) remove(id string) (*T, int, bool) {
	row, ok := t.rows[id]
	if !ok {
		return nil, -1, false
	}
	delete(t.rows, id)
	pos := slices.Index(t.order, id)
	if pos >= 0 {
		t.order = slices.Delete(t.order, pos, pos+1)
	}
	return row, pos, true
}

func (t *table[T]) restore(id string, row *T, pos int) {
	t.rows[id] = row
	if pos < 0 || pos > len(t.order) {
		pos = len(t.order)
	}
	t.order = slices.Insert(t.order, pos, id)
}

// each visits rows in insertion order until fn returns false.
func (t *table[T]) each(fn func(row *T) bool) {
	for _, id := range t.order {
		if !fn(t.rows[id]) {
			return
		}
	}
}

func (t *table[T]) size() int {
	return len(t.rows)
}
