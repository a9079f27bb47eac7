package quiz

import "fmt"

// Allocate splits total evenly across categories. The first total%k
// categories, in the given order, receive one extra question. Duplicate
// categories are collapsed to their first occurrence.
func Allocate(total int, categories []Category) ([]Allocation, error) {
	if total < 1 {
		return nil, fmt.Errorf("%w: number of questions must be at least 1, got %d", ErrInvalidArgument, total)
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: at least one question type is required", ErrInvalidArgument)
	}

	seen := make(map[Category]bool, len(categories))
	uniq := make([]Category, 0, len(categories))
	for _, c := range categories {
		if !c.Valid() {
			return nil, fmt.Errorf("%w: unknown question type %q", ErrInvalidArgument, c)
		}
		if !seen[c] {
			seen[c] = true
			uniq = append(uniq, c)
		}
	}

	base, rem := total/len(uniq), total%len(uniq)
	out := make([]Allocation, len(uniq))
	for i, c := range uniq {
		out[i] = Allocation{Category: c, Count: base}
		if i < rem {
			out[i].Count++
		}
	}
	return out, nil
}
