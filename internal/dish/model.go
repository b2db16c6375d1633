package dish

import (
	"time"

	"github.com/gofrs/uuid"
)

type Category string

const (
	CategoryAppetizer  Category = "APPETIZER"
	CategoryMainCourse Category = "MAIN_COURSE"
	CategoryDessert    Category = "DESSERT"
	CategoryDrink      Category = "DRINK"
)

func (c Category) String() string {
	return string(c)
}

func (c Category) Valid() bool {
	switch c {
	case CategoryAppetizer, CategoryMainCourse, CategoryDessert, CategoryDrink:
		return true
	}
	return false
}

// Categories lists every accepted category, in menu order.
func Categories() []Category {
	return []Category{CategoryAppetizer, CategoryMainCourse, CategoryDessert, CategoryDrink}
}

type Dish struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Price       float64   `json:"price" db:"price"`
	Category    Category  `json:"category" db:"category"`
	Active      bool      `json:"active" db:"active"`
	Image       *string   `json:"image" db:"image"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}
