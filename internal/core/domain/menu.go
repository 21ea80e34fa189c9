package domain

import "time"

type Category string

const (
	CategoryBreakfast Category = "Breakfast"
	CategoryMeals     Category = "Meals"
	CategorySnacks    Category = "Snacks"
	CategoryDrinks    Category = "Drinks"
)

// Categories lists the menu sections in display order.
var Categories = []Category{CategoryBreakfast, CategoryMeals, CategorySnacks, CategoryDrinks}

// AddOns are the customizations offered with every dish. Cart lines accept
// any label; these are the ones the kitchen knows.
var AddOns = []string{"Extra Cheese", "Crispy Bacon", "Fried Egg", "Avocado"}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// MenuItem is read-only from the client's point of view. Price is in cents.
type MenuItem struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Category    Category  `json:"category"`
	Image       string    `json:"image"`
	Popular     bool      `json:"popular"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"-"`
}
