package menu

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const unsplashPhoto = "https://images.unsplash.com/photo-%s?w=400&h=300&fit=crop"

type seedRow struct {
	id, name, description string
	price                 int64
	photo, category       string
	popular               bool
}

var seedRows = []seedRow{
	{"1", "Normal Thali", "Dal, Sabzi, Roti, Rice, Salad, Pickle, Sweet", 120, "1504674900247-0877df9cc836", "Thali", true},
	{"2", "Special Thali", "Dal Makhani, Paneer Sabzi, Butter Naan, Rice, Salad, Pickle, Sweet, Raita", 180, "1585937421612-70a008356fbe", "Thali", true},
	{"3", "Premium Thali", "Dal Makhani, Mix Veg, Paneer Butter Masala, Garlic Naan, Jeera Rice, Salad, Pickle, Sweet, Raita, Papad", 250, "1574894709920-11b28e7367e3", "Thali", true},
	{"4", "Special Paratha", "Stuffed paratha with your choice of filling (Aloo, Paneer, Gobi, Mix)", 80, "1563379091339-03246963d19d", "Paratha", false},
	{"5", "Aloo Fried Roti", "Crispy fried roti stuffed with spiced aloo", 70, "1555939594-58d7cb561ad1", "Paratha", false},
	{"6", "Paneer Paratha", "Soft paratha stuffed with spiced paneer", 90, "1565557623262-b51c2513a641", "Paratha", false},
	{"7", "Gobi Paratha", "Paratha stuffed with spiced cauliflower", 75, "1506084868230-bb9d95c24759", "Paratha", false},
	{"8", "Dal Makhani with Roti", "Creamy dal makhani served with 2 butter roti", 110, "1588166332193-c5ba3808159b", "Main Course", false},
	{"9", "Paneer Butter Masala with Naan", "Rich paneer curry with 2 butter naan", 140, "1596797038530-2c107229654b", "Main Course", false},
	{"10", "Chole Bhature", "Spicy chickpeas with fluffy bhature", 100, "1601050690597-df0568f70950", "Main Course", false},
	{"11", "Mix Veg Pulao", "Fragrant basmati rice with mixed vegetables", 90, "1603133872878-684f208fb84b", "Rice", false},
	{"12", "Jeera Rice with Dal", "Cumin rice served with yellow dal", 85, "1596797038530-2c107229654b", "Rice", false},
	{"13", "Vegetable Biryani", "Fragrant biryani with mixed vegetables and spices", 130, "1574894709920-11b28e7367e3", "Rice", false},
	{"14", "Rajma Chawal", "Red kidney beans curry with steamed rice", 95, "1504674900247-0877df9cc836", "Rice", false},
	{"15", "Poha", "Flattened rice cooked with onions, spices, and peanuts", 60, "1565557623262-b51c2513a641", "Breakfast", false},
	{"16", "Upma", "Semolina cooked with vegetables and spices", 55, "1506084868230-bb9d95c24759", "Breakfast", false},
	{"17", "Aloo Paratha with Curd", "Aloo stuffed paratha served with fresh curd", 85, "1555939594-58d7cb561ad1", "Breakfast", false},
	{"18", "Samosa (2 pcs)", "Crispy samosas with spiced potato filling", 40, "1588166332193-c5ba3808159b", "Snacks", false},
	{"19", "Dhokla", "Soft steamed dhokla with green chutney", 50, "1596797038530-2c107229654b", "Snacks", false},
	{"20", "Pav Bhaji", "Spicy mixed vegetable curry with buttered pav", 110, "1585937421612-70a008356fbe", "Snacks", false},
	{"21", "Kachori (2 pcs)", "Crispy kachoris with dal or aloo filling", 45, "1565557623262-b51c2513a641", "Snacks", false},
	{"22", "Gulab Jamun (2 pcs)", "Sweet milk dumplings in sugar syrup", 60, "1506084868230-bb9d95c24759", "Dessert", false},
	{"23", "Rasgulla (3 pcs)", "Soft cottage cheese balls in sugar syrup", 50, "1588166332193-c5ba3808159b", "Dessert", false},
	{"24", "Kheer", "Sweet rice pudding with nuts and cardamom", 55, "1596797038530-2c107229654b", "Dessert", false},
	{"25", "Lassi", "Sweet or salty yogurt drink", 40, "1504674900247-0877df9cc836", "Beverage", false},
}

// DefaultItems returns the built-in menu served when the catalog runs offline
// and nothing has been cached yet.
func DefaultItems() []Item {
	items := make([]Item, 0, len(seedRows))
	for _, r := range seedRows {
		items = append(items, Item{
			ID:          r.id,
			Name:        r.name,
			Description: r.description,
			Price:       decimal.NewFromInt(r.price),
			Image:       fmt.Sprintf(unsplashPhoto, r.photo),
			Category:    r.category,
			IsVeg:       true,
			IsAvailable: true,
			Popular:     r.popular,
		})
	}
	return items
}
