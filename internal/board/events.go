package board

import "github.com/fastygo/taskboard/domain"

// Event is one discrete step of a gesture as reported by the client's drag library.
type Event interface {
	event()
}

// DragStart marks the element the pointer picked up.
type DragStart struct {
	Active Item
}

// DragOver fires repeatedly while the pointer moves. Over is nil outside any drop target.
type DragOver struct {
	Active Item
	Over   *Item
}

// DragEnd fires once when the pointer is released. Over is nil when nothing was hit.
type DragEnd struct {
	Active Item
	Over   *Item
}

// ClickLock toggles the lock flag of a column.
type ClickLock struct {
	Status domain.Status
}

func (DragStart) event() {}
func (DragOver) event()  {}
func (DragEnd) event()   {}
func (ClickLock) event() {}
