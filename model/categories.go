package model

import "github.com/google/uuid"

type categorySeed struct {
	name, icon, color string
}

var defaultIncomeCategories = []categorySeed{
	{"Salary", "account-cash", "#4CAF50"},
	{"Bonus", "gift", "#FF9800"},
	{"Investment", "trending-up", "#2196F3"},
	{"Other Income", "cash-plus", "#9C27B0"},
}

var defaultOutcomeCategories = []categorySeed{
	{"Food & Dining", "food", "#FF5722"},
	{"Transportation", "car", "#607D8B"},
	{"Accommodation", "bed", "#795548"},
	{"Entertainment", "movie", "#E91E63"},
	{"Shopping", "shopping", "#9C27B0"},
	{"Health & Medical", "medical-bag", "#009688"},
	{"Other Expenses", "cash-minus", "#757575"},
}

// DefaultCategories returns the categories every new trip starts with,
// each with a fresh ID.
func DefaultCategories(tripID uuid.UUID) []Category {
	out := make([]Category, 0, len(defaultIncomeCategories)+len(defaultOutcomeCategories))
	for _, s := range defaultIncomeCategories {
		out = append(out, Category{ID: uuid.New(), TripID: tripID, Type: Income, Name: s.name, Icon: s.icon, Color: s.color})
	}
	for _, s := range defaultOutcomeCategories {
		out = append(out, Category{ID: uuid.New(), TripID: tripID, Type: Outcome, Name: s.name, Icon: s.icon, Color: s.color})
	}
	return out
}
