package model

// Sentinel labels returned in place of a real label when a level cannot be
// resolved. They are user-visible output, not errors.
const (
	Level1Unknown = "Label1 unknown"
	Level2Unknown = "Label2 unknown"
	NoSubCategory = "No sub-category available"
)

// Status records which branch of the dispatcher produced a Prediction.
type Status string

const (
	StatusResolved      Status = "resolved"
	StatusLevel1Unknown Status = "level1_unknown"
	StatusNoBranch      Status = "no_branch"
	StatusLevel2Unknown Status = "level2_unknown"
)

// Prediction is the (level1, level2) label pair for one input.
type Prediction struct {
	Level1 string `json:"level1"`
	Level2 string `json:"level2"`
	Status Status `json:"status"`
}

// Resolved reports whether both levels carry real labels.
func (p Prediction) Resolved() bool {
	return p.Status == StatusResolved
}
