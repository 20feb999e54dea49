package models

// Category is a single-valued event classification. The empty code means "no category".
type Category string

const (
	CategoryNone          Category = ""
	CategoryCulture       Category = "CUL"
	CategoryMusic         Category = "MUS"
	CategorySport         Category = "SPR"
	CategoryArt           Category = "ART"
	CategoryHistory       Category = "HIS"
	CategoryEducation     Category = "EDU"
	CategoryActivism      Category = "ATT"
	CategoryProtest       Category = "PRO"
	CategoryHealth        Category = "HLT"
	CategoryEntertainment Category = "ENT"
	CategoryCommerce      Category = "COM"
)

var categoryLabels = map[Category]string{
	CategoryCulture:       "Culture",
	CategoryMusic:         "Music",
	CategorySport:         "Sport",
	CategoryArt:           "Art",
	CategoryHistory:       "History",
	CategoryEducation:     "Education",
	CategoryActivism:      "Activism",
	CategoryProtest:       "Protest",
	CategoryHealth:        "Health",
	CategoryEntertainment: "Entertainment",
	CategoryCommerce:      "Commerce",
	CategoryNone:          "No category",
}

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{
		CategoryCulture, CategoryMusic, CategorySport, CategoryArt, CategoryHistory,
		CategoryEducation, CategoryActivism, CategoryProtest, CategoryHealth,
		CategoryEntertainment, CategoryCommerce, CategoryNone,
	}
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

func (c Category) Label() string {
	return categoryLabels[c]
}
