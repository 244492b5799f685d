package models

import "fmt"

// Category identifies one independently scheduled data collection domain.
type Category string

const (
	CategoryBanks         Category = "banks"
	CategoryIndices       Category = "indices"
	CategoryGainersLosers Category = "gainers_losers"
	CategoryNews          Category = "news"
	CategoryFIIDII        Category = "fiidii"
)

// Categories returns all categories in declaration order.
func Categories() []Category {
	return []Category{
		CategoryBanks,
		CategoryIndices,
		CategoryGainersLosers,
		CategoryNews,
		CategoryFIIDII,
	}
}

// ParseCategory validates a category string.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	switch c {
	case CategoryBanks, CategoryIndices, CategoryGainersLosers, CategoryNews, CategoryFIIDII:
		return c, nil
	}
	return "", fmt.Errorf("unknown category: %q", s)
}

// OnceDaily reports whether the category fires once per day at start_time
// with no end-of-window concept.
func (c Category) OnceDaily() bool {
	return c == CategoryFIIDII
}

func (c Category) String() string { return string(c) }

// tabCategories maps every dashboard tab to its underlying schedule category.
// The mapping is exhaustive over both directions: each tab resolves to a
// known category, and each category is reachable from at least one tab.
var tabCategories = map[string]Category{
	"bank_stocks":    CategoryBanks,
	"bank_index":     CategoryBanks,
	"indices":        CategoryIndices,
	"index_detail":   CategoryIndices,
	"top_gainers":    CategoryGainersLosers,
	"top_losers":     CategoryGainersLosers,
	"movers":         CategoryGainersLosers,
	"news":           CategoryNews,
	"announcements":  CategoryNews,
	"fii_dii":        CategoryFIIDII,
	"fii_dii_detail": CategoryFIIDII,
}

// CategoryForTab resolves a dashboard tab name to its schedule category.
func CategoryForTab(tab string) (Category, bool) {
	c, ok := tabCategories[tab]
	return c, ok
}

func init() {
	// Every category must be reachable from the tab map; a new category
	// without a tab entry is a programming error, caught at startup.
	covered := make(map[Category]bool, len(tabCategories))
	for _, c := range tabCategories {
		covered[c] = true
	}
	for _, c := range Categories() {
		if !covered[c] {
			panic(fmt.Sprintf("models: category %s has no tab mapping", c))
		}
	}
}
