package models

// Category is one of a fixed set of post categories.
type Category string

const (
	CategoryTechnology   Category = "Technology"
	CategoryLifestyle    Category = "Lifestyle"
	CategoryTravel       Category = "Travel"
	CategoryFood         Category = "Food & Cooking"
	CategoryHealth       Category = "Health & Fitness"
	CategoryBusiness     Category = "Business"
	CategoryEducation    Category = "Education"
	CategoryEntertain    Category = "Entertainment"
	CategorySports       Category = "Sports"
	CategoryFashion      Category = "Fashion"
	CategoryPhotography  Category = "Photography"
	CategoryDIYAndCrafts Category = "DIY & Crafts"
)

var categories = []Category{
	CategoryTechnology,
	CategoryLifestyle,
	CategoryTravel,
	CategoryFood,
	CategoryHealth,
	CategoryBusiness,
	CategoryEducation,
	CategoryEntertain,
	CategorySports,
	CategoryFashion,
	CategoryPhotography,
	CategoryDIYAndCrafts,
}

// Categories returns the categories in their canonical order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Valid reports whether c is a known category. Matching is exact.
func (c Category) Valid() bool {
	for _, v := range categories {
		if v == c {
			return true
		}
	}
	return false
}
