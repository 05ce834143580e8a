package queue

import (
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"

	"smartqueue/backend/internal/domain"
)

type customerDay struct {
	date domain.Date
	name string
}

func customerKey(date domain.Date, name string) customerDay {
	return customerDay{date: date, name: strings.ToLower(strings.TrimSpace(name))}
}

// orderedIndex keeps the live appointments sorted by slot. Insertion refuses a
// taken slot, so ordering and slot uniqueness hold without re-sorting.
type orderedIndex struct {
	items      []domain.Appointment
	byID       map[uuid.UUID]domain.Slot
	bySlot     map[domain.Slot]uuid.UUID
	byCustomer map[customerDay]uuid.UUID
}

func newOrderedIndex() *orderedIndex {
	return &orderedIndex{
		byID:       make(map[uuid.UUID]domain.Slot),
		bySlot:     make(map[domain.Slot]uuid.UUID),
		byCustomer: make(map[customerDay]uuid.UUID),
	}
}

func (x *orderedIndex) search(slot domain.Slot) (int, bool) {
	return slices.BinarySearchFunc(x.items, slot, func(a domain.Appointment, s domain.Slot) int {
		return a.Slot().Compare(s)
	})
}

func (x *orderedIndex) insert(appt domain.Appointment) bool {
	slot := appt.Slot()
	if _, taken := x.bySlot[slot]; taken {
		return false
	}
	if _, dup := x.byID[appt.ID]; dup {
		return false
	}
	pos, _ := x.search(slot)
	x.items = slices.Insert(x.items, pos, appt)
	x.byID[appt.ID] = slot
	x.bySlot[slot] = appt.ID
	x.byCustomer[customerKey(appt.Date, appt.CustomerName)] = appt.ID
	return true
}

func (x *orderedIndex) remove(id uuid.UUID) (domain.Appointment, bool) {
	slot, ok := x.byID[id]
	if !ok {
		return domain.Appointment{}, false
	}
	pos, found := x.search(slot)
	if !found {
		return domain.Appointment{}, false
	}
	appt := x.items[pos]
	x.items = slices.Delete(x.items, pos, pos+1)
	delete(x.byID, id)
	delete(x.bySlot, slot)
	key := customerKey(appt.Date, appt.CustomerName)
	if x.byCustomer[key] == id {
		delete(x.byCustomer, key)
	}
	return appt, true
}

func (x *orderedIndex) has(id uuid.UUID) bool {
	_, ok := x.byID[id]
	return ok
}

// rank is the 0-based position of id in queue order.
func (x *orderedIndex) rank(id uuid.UUID) (int, bool) {
	slot, ok := x.byID[id]
	if !ok {
		return 0, false
	}
	pos, _ := x.search(slot)
	return pos, true
}

func (x *orderedIndex) first() (domain.Appointment, bool) {
	if len(x.items) == 0 {
		return domain.Appointment{}, false
	}
	return x.items[0], true
}

func (x *orderedIndex) len() int {
	return len(x.items)
}

func (x *orderedIndex) snapshot() []domain.Appointment {
	out := make([]domain.Appointment, len(x.items))
	copy(out, x.items)
	return out
}

func (x *orderedIndex) SlotTaken(slot domain.Slot) bool {
	_, ok := x.bySlot[slot]
	return ok
}

func (x *orderedIndex) CustomerBooked(date domain.Date, name string) bool {
	_, ok := x.byCustomer[customerKey(date, name)]
	return ok
}

func (x *orderedIndex) CountBefore(date domain.Date, hour int) int {
	lo, _ := x.search(domain.Slot{Date: date, Hour: math.MinInt})
	hi, _ := x.search(domain.Slot{Date: date, Hour: hour})
	return hi - lo
}
