package domain

import "time"

// Recipe represents a recipe extracted from a detail page and stored in the database
type Recipe struct {
	Title       string            `bson:"title" json:"title"`
	Link        string            `bson:"link" json:"link"`
	Category    map[string]string `bson:"category" json:"category"`
	Subcategory map[string]string `bson:"subcategory" json:"subcategory"`
	Image       string            `bson:"image" json:"image"`
	Description string            `bson:"description" json:"description"`
	Author      string            `bson:"author" json:"author"`
	Portions    int               `bson:"portions" json:"portions"`
	Ingredients []string          `bson:"ingredients" json:"ingredients"`

	// PreparationSteps keeps the steps in document order, keyed by their label.
	PreparationSteps Steps `bson:"preparation_steps" json:"preparation_steps"`

	// RunID and HarvestedAt are set by the harvest coordinator, not by extraction.
	RunID       string    `bson:"run_id,omitempty" json:"run_id,omitempty"`
	HarvestedAt time.Time `bson:"harvested_at" json:"harvested_at"`
}
