package model

// Record pairs a Prediction with the input it was made for.
type Record struct {
	Input  string `json:"input,omitempty"`
	Level1 string `json:"level1"`
	Level2 string `json:"level2"`
	Status Status `json:"status,omitempty"`
}

// NewRecord builds a Record from an input text and its Prediction.
func NewRecord(input string, p Prediction) Record {
	return Record{Input: input, Level1: p.Level1, Level2: p.Level2, Status: p.Status}
}
