package model

// Category is a Level-1 label together with the Level-2 vocabulary of its
// branch. Subcategories is empty for terminal categories.
type Category struct {
	Name          string   `json:"name"`
	Subcategories []string `json:"subcategories,omitempty"`
}
