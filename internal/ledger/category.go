package ledger

// Category classifies transactions and budgets.
type Category string

const (
	CategoryFood          Category = "food"
	CategoryShopping      Category = "shopping"
	CategoryTransport     Category = "transport"
	CategoryEntertainment Category = "entertainment"
	CategoryBills         Category = "bills"
	CategoryHealth        Category = "health"
	CategorySmokeDrink    Category = "smoke-drink"
	CategoryOther         Category = "other"
)

// categoryOrder is the canonical ordering used for listings and tie-breaks.
var categoryOrder = []Category{
	CategoryFood,
	CategoryShopping,
	CategoryTransport,
	CategoryEntertainment,
	CategoryBills,
	CategoryHealth,
	CategorySmokeDrink,
	CategoryOther,
}

// Categories returns every category in canonical order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)

	return out
}

// Rank is the position of the category in canonical order, or len(Categories()) if unknown.
func (c Category) Rank() int {
	for i, cat := range categoryOrder {
		if cat == c {
			return i
		}
	}

	return len(categoryOrder)
}

func (c Category) Valid() bool {
	return c.Rank() < len(categoryOrder)
}

// Name is the human-readable label.
func (c Category) Name() string {
	switch c {
	case CategoryFood:
		return "Food & Dining"
	case CategoryShopping:
		return "Shopping"
	case CategoryTransport:
		return "Transportation"
	case CategoryEntertainment:
		return "Entertainment"
	case CategoryBills:
		return "Bills & Utilities"
	case CategoryHealth:
		return "Health & Medical"
	case CategorySmokeDrink:
		return "Smoke/Drink"
	case CategoryOther:
		return "Other"
	}

	return "Other"
}

// Icon is the Font Awesome icon name used by the web front end.
func (c Category) Icon() string {
	switch c {
	case CategoryFood:
		return "utensils"
	case CategoryShopping:
		return "shopping-bag"
	case CategoryTransport:
		return "bus"
	case CategoryEntertainment:
		return "film"
	case CategoryBills:
		return "file-invoice-dollar"
	case CategoryHealth:
		return "heartbeat"
	case CategorySmokeDrink:
		return "smoking"
	case CategoryOther:
		return "receipt"
	}

	return "receipt"
}
