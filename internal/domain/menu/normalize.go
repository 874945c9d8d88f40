package menu

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/tiffin-storefront/internal/jsonx"
)

const (
	// PlaceholderImage is shown for meals that come without an image.
	PlaceholderImage = "https://images.unsplash.com/photo-1504674900247-0877df9cc836?w=400&h=300&fit=crop"
	// DefaultCategory labels meals without a meal type.
	DefaultCategory = "Meal"
)

// RawMeal is a meal record as the kitchen API sends it, before defaults are
// applied. Absent and null fields stay at their zero values.
type RawMeal struct {
	ID          string
	Name        string
	Description string
	ImageURL    string
	MealType    string
	Price       decimal.Decimal
	HasPrice    bool
	// Unavailable is set only when is_available is literally false.
	Unavailable bool
}

// Normalize converts a raw meal into an Item.
//
// Veg and popular flags are not carried by the API, so every meal is
// reported as veg and not popular.
func Normalize(raw RawMeal) Item {
	image := raw.ImageURL
	if image == "" {
		image = PlaceholderImage
	}

	price := decimal.Zero
	if raw.HasPrice && raw.Price.IsPositive() {
		price = raw.Price
	}

	return Item{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: raw.Description,
		Price:       price,
		Image:       image,
		Category:    Category(raw.MealType),
		IsVeg:       true,
		IsAvailable: !raw.Unavailable,
		Popular:     false,
	}
}

// Category derives a display category from a raw meal type by upper-casing
// its first letter. The rest of the string is kept as is.
func Category(mealType string) string {
	if mealType == "" {
		return DefaultCategory
	}
	r, size := utf8.DecodeRuneInString(mealType)
	return string(unicode.ToUpper(r)) + mealType[size:]
}

// MealType is the inverse of Category for the values the kitchen API uses.
func MealType(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// DecodeRawMeal reads one meal object from d. Unknown fields are skipped.
func DecodeRawMeal(d *jx.Decoder) (RawMeal, error) {
	var m RawMeal
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			m.ID, err = jsonx.DecodeID(d)
		case "name":
			m.Name, err = optString(d)
		case "description":
			m.Description, err = optString(d)
		case "image_url":
			m.ImageURL, err = optString(d)
		case "meal_type":
			m.MealType, err = optString(d)
		case "price":
			m.Price, m.HasPrice, err = jsonx.DecodeDecimal(d)
		case "is_available":
			if d.Next() == jx.Bool {
				var v bool
				v, err = d.Bool()
				m.Unavailable = !v
			} else {
				err = d.Skip()
			}
		default:
			err = d.Skip()
		}
		return errors.Wrapf(err, "field %q", key)
	})
	return m, err
}

// DecodeMeals decodes a JSON array of meal records and normalizes them.
// Records without an identifier are dropped; the number dropped is returned.
func DecodeMeals(d *jx.Decoder) (items []Item, skipped int, err error) {
	items = []Item{}
	err = d.Arr(func(d *jx.Decoder) error {
		raw, err := DecodeRawMeal(d)
		if err != nil {
			return err
		}
		if raw.ID == "" {
			skipped++
			return nil
		}
		items = append(items, Normalize(raw))
		return nil
	})
	if err != nil {
		return nil, 0, errors.Wrap(err, "decode meals")
	}
	return items, skipped, nil
}

func optString(d *jx.Decoder) (string, error) {
	switch d.Next() {
	case jx.String:
		return d.Str()
	case jx.Null:
		return "", d.Null()
	default:
		// Numbers and other scalars are not meaningful text fields.
		return "", d.Skip()
	}
}
