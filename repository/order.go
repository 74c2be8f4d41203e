package repository

// PlaceAt moves id to index within order, clamping index to the list bounds. The input is
// not modified. An id missing from order is returned unchanged with ok false.
func PlaceAt(order []string, id string, index int) (out []string, ok bool) {
	from := -1
	for i, existing := range order {
		if existing == id {
			from = i
			break
		}
	}
	if from < 0 {
		return append([]string(nil), order...), false
	}

	out = make([]string, 0, len(order))
	out = append(out, order[:from]...)
	out = append(out, order[from+1:]...)

	if index < 0 {
		index = 0
	}
	if index > len(out) {
		index = len(out)
	}
	out = append(out, "")
	copy(out[index+1:], out[index:])
	out[index] = id
	return out, true
}

// MergeOrder returns current rearranged so that the ids of requested come first in the
// requested order. Unknown and duplicate ids are ignored; ids missing from requested keep
// their relative order at the end.
func MergeOrder(current, requested []string) []string {
	known := make(map[string]bool, len(current))
	for _, id := range current {
		known[id] = true
	}

	out := make([]string, 0, len(current))
	placed := make(map[string]bool, len(current))
	for _, id := range requested {
		if known[id] && !placed[id] {
			out = append(out, id)
			placed[id] = true
		}
	}
	for _, id := range current {
		if !placed[id] {
			out = append(out, id)
		}
	}
	return out
}
