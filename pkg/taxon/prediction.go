package taxon

import "github.com/crimson-sun/taxon/internal/model"

// Sentinel labels. They appear in Prediction fields in place of a real label.
const (
	Level1Unknown = model.Level1Unknown
	Level2Unknown = model.Level2Unknown
	NoSubCategory = model.NoSubCategory
)

// Status values of a Prediction.
const (
	StatusResolved      = string(model.StatusResolved)
	StatusLevel1Unknown = string(model.StatusLevel1Unknown)
	StatusNoBranch      = string(model.StatusNoBranch)
	StatusLevel2Unknown = string(model.StatusLevel2Unknown)
)

// Prediction is the label pair for one text.
type Prediction struct {
	Level1 string `json:"level1"`
	Level2 string `json:"level2"`
	Status string `json:"status"`
}

// Resolved reports whether both levels carry real labels.
func (p Prediction) Resolved() bool {
	return p.Status == StatusResolved
}

// Category is a Level-1 label and the Level-2 labels its branch can emit.
type Category struct {
	Name          string   `json:"name"`
	Subcategories []string `json:"subcategories,omitempty"`
}

// Summary counts the rows of a classified file by Status.
type Summary struct {
	Rows   int            `json:"rows"`
	Status map[string]int `json:"status"`
}

func predictionFromModel(p model.Prediction) Prediction {
	return Prediction{Level1: p.Level1, Level2: p.Level2, Status: string(p.Status)}
}
