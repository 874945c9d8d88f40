package menu

import "strings"

// Special filter categories understood by Filter.
const (
	CategoryAll     = "all"
	CategoryPopular = "popular"
	CategoryVeg     = "veg"
)

// Filter selects menu items for display.
type Filter struct {
	// Category is CategoryAll (or empty), CategoryPopular, CategoryVeg or a
	// concrete category name.
	Category string
	// Query is matched case-insensitively against name, description and
	// category.
	Query string
}

// Apply returns the available items of items selected by f, in order.
func (f Filter) Apply(items []Item) []Item {
	query := strings.ToLower(strings.TrimSpace(f.Query))

	out := make([]Item, 0, len(items))
	for _, it := range items {
		if !it.IsAvailable || !f.matchCategory(it) {
			continue
		}
		if query != "" && !matchQuery(it, query) {
			continue
		}
		out = append(out, it)
	}
	return out
}

func (f Filter) matchCategory(it Item) bool {
	switch f.Category {
	case "", CategoryAll:
		return true
	case CategoryPopular:
		return it.Popular
	case CategoryVeg:
		return it.IsVeg
	default:
		return it.Category == f.Category
	}
}

func matchQuery(it Item, query string) bool {
	return strings.Contains(strings.ToLower(it.Name), query) ||
		strings.Contains(strings.ToLower(it.Description), query) ||
		strings.Contains(strings.ToLower(it.Category), query)
}

// Categories returns CategoryAll followed by the distinct categories of
// items in first-seen order.
func Categories(items []Item) []string {
	out := []string{CategoryAll}
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.Category]; ok {
			continue
		}
		seen[it.Category] = struct{}{}
		out = append(out, it.Category)
	}
	return out
}
