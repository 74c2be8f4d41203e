package taskquery

import (
	"fmt"
	"slices"

	"github.com/fastygo/taskboard/domain"
)

// Order names a priority ordering.
type Order string

const (
	LowToHigh Order = "lowToHigh"
	HighToLow Order = "highToLow"
	Reset     Order = "reset"
)

func ParseOrder(raw string) (Order, error) {
	switch o := Order(raw); o {
	case "":
		return Reset, nil
	case LowToHigh, HighToLow, Reset:
		return o, nil
	}
	return "", fmt.Errorf("unknown sort order %q", raw)
}

// Sort orders tasks by priority rank. HighToLow is the exact reverse of LowToHigh, so
// tasks of equal priority appear in reverse input order. Reset restores board order.
func Sort(tasks []domain.Task, order Order) []domain.Task {
	out := append([]domain.Task(nil), tasks...)
	switch order {
	case LowToHigh, HighToLow:
		slices.SortStableFunc(out, func(a, b domain.Task) int {
			return a.Priority.Rank() - b.Priority.Rank()
		})
		if order == HighToLow {
			slices.Reverse(out)
		}
	default:
		slices.SortStableFunc(out, func(a, b domain.Task) int {
			return a.Position - b.Position
		})
	}
	return out
}
