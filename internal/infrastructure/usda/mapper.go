package usda

import (
	"github.com/handycook/foodscan/internal/domain"
)

// USDA Nutrient IDs for the key nutrients attached to food classifications
const (
	NutrientIDEnergy       = 1008 // Calories (kcal)
	NutrientIDProtein      = 1003 // Protein (g)
	NutrientIDCarbohydrate = 1005 // Carbohydrates (g)
	NutrientIDTotalFat     = 1004 // Total Fat (g)
	NutrientIDFiber        = 1079 // Fiber, total dietary (g)
)

// categoryMap translates USDA category names into app categories. It
// covers both the standard nutrient-database names and the names the
// Branded tier actually returns.
var categoryMap = map[string]string{
	// Standard categories
	"Dairy and Egg Products":            "Dairy",
	"Beef Products":                     "Meat",
	"Pork Products":                     "Meat",
	"Poultry Products":                  "Meat",
	"Lamb, Veal, and Game Products":     "Meat",
	"Finfish and Shellfish Products":    "Seafood",
	"Fruits and Fruit Juices":           "Fruits",
	"Vegetables and Vegetable Products": "Vegetables",
	"Baked Products":                    "Bakery",
	"Cereal Grains and Pasta":           "Pantry Staples",
	"Beverages":                         "Beverages",
	"Fats and Oils":                     "Condiments",
	"Spices and Herbs":                  "Condiments",
	"Legumes and Legume Products":       "Pantry Staples",
	"Nut and Seed Products":             "Pantry Staples",
	"Snacks":                            "Pantry Staples",
	"Sweets":                            "Pantry Staples",
	"Soups, Sauces, and Gravies":        "Condiments",
	"Baby Foods":                        "Other",
	"Sausages and Luncheon Meats":       "Meat",

	// Branded food categories
	"Pre-Packaged Fruit & Vegetables": "Fruits",
	"Other Grains & Seeds":            "Pantry Staples",
	"Frozen Fruits":                   "Fruits",
	"Frozen Vegetables":               "Vegetables",
	"Fresh Vegetables":                "Vegetables",
	"Fresh Fruits":                    "Fruits",
	"Canned Vegetables":               "Vegetables",
	"Canned Fruit":                    "Fruits",
	"Cheese":                          "Dairy",
	"Milk":                            "Dairy",
	"Yogurt":                          "Dairy",
	"Eggs":                            "Dairy",
	"Butter & Margarine":              "Dairy",
	"Bread & Buns":                    "Bakery",
	"Cookies & Biscuits":              "Bakery",
	"Crackers":                        "Pantry Staples",
	"Pasta & Noodles":                 "Pantry Staples",
	"Rice":                            "Pantry Staples",
	"Cereal":                          "Pantry Staples",
	"Candy":                           "Pantry Staples",
	"Chocolate":                       "Pantry Staples",
	"Ice Cream & Frozen Dairy":        "Frozen",
	"Frozen Meals":                    "Frozen",
	"Frozen Pizza":                    "Frozen",
	"Chips, Pretzels & Snacks":        "Pantry Staples",
	"Nuts & Seeds":                    "Pantry Staples",
	"Dried Fruit":                     "Pantry Staples",
	"Juice & Juice Drinks":            "Beverages",
	"Soft Drinks":                     "Beverages",
	"Coffee":                          "Beverages",
	"Tea":                             "Beverages",
	"Water":                           "Beverages",
	"Condiments & Sauces":             "Condiments",
	"Salad Dressing":                  "Condiments",
	"Pickles & Relish":                "Condiments",
	"Meat":                            "Meat",
	"Poultry":                         "Meat",
	"Seafood":                         "Seafood",
	"Deli Meat":                       "Meat",
}

// MapCategory converts a USDA food category name into an app category.
// Unmapped names collapse to Other.
func MapCategory(usdaCategory string) string {
	if mapped, ok := categoryMap[usdaCategory]; ok {
		return mapped
	}
	return domain.CategoryOther
}

// ExtractNutrients pulls the key nutrients out of a USDA nutrient list.
// Returns nil when none of the tracked nutrients are present.
func ExtractNutrients(usdaNutrients []domain.USDANutrient) *domain.Nutrients {
	nutrients := domain.Nutrients{}
	found := false

	for _, nutrient := range usdaNutrients {
		switch nutrient.NutrientID {
		case NutrientIDEnergy:
			nutrients.Calories = nutrient.Value
		case NutrientIDProtein:
			nutrients.Protein = nutrient.Value
		case NutrientIDCarbohydrate:
			nutrients.Carbs = nutrient.Value
		case NutrientIDTotalFat:
			nutrients.Fat = nutrient.Value
		case NutrientIDFiber:
			nutrients.Fiber = nutrient.Value
		default:
			continue
		}
		found = true
	}

	if !found {
		return nil
	}
	return &nutrients
}
