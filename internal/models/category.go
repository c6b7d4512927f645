package models

// Category is one of the fixed realms player counts are partitioned by.
type Category string

const (
	CategoryBlack  Category = "black"
	CategoryGreen  Category = "green"
	CategoryRed    Category = "red"
	CategoryPurple Category = "purple"
	CategoryYellow Category = "yellow"
	CategoryCyan   Category = "cyan"
	CategoryBlue   Category = "blue"
)

// CategoryInfo keeps the display metadata of a category together.
type CategoryInfo struct {
	Key   Category
	Label string
	Color string
}

// categoryTable is ordered: reports and chart legends follow this order.
var categoryTable = [...]CategoryInfo{
	{Key: CategoryBlack, Label: "Black", Color: "#C4C4C4"},
	{Key: CategoryGreen, Label: "Green", Color: "#00A745"},
	{Key: CategoryRed, Label: "Red", Color: "#C22323"},
	{Key: CategoryPurple, Label: "Purple", Color: "#8E57CC"},
	{Key: CategoryYellow, Label: "Yellow", Color: "#FAC32D"},
	{Key: CategoryCyan, Label: "Cyan", Color: "#00C4D6"},
	{Key: CategoryBlue, Label: "Blue", Color: "#5B6CFF"},
}

var categoryIndex = func() map[Category]int {
	idx := make(map[Category]int, len(categoryTable))
	for i, info := range categoryTable {
		idx[info.Key] = i
	}
	return idx
}()

// Categories returns the fixed categories in display order.
func Categories() []Category {
	out := make([]Category, len(categoryTable))
	for i, info := range categoryTable {
		out[i] = info.Key
	}
	return out
}

// CategoryInfos returns the whole lookup table in display order.
func CategoryInfos() []CategoryInfo {
	out := make([]CategoryInfo, len(categoryTable))
	copy(out, categoryTable[:])
	return out
}

func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	_, ok := categoryIndex[c]
	return c, ok
}

func (c Category) Valid() bool {
	_, ok := categoryIndex[c]
	return ok
}

func (c Category) Info() CategoryInfo {
	if i, ok := categoryIndex[c]; ok {
		return categoryTable[i]
	}
	return CategoryInfo{Key: c, Label: string(c), Color: "#FFFFFF"}
}

func (c Category) Label() string {
	return c.Info().Label
}

func (c Category) Color() string {
	return c.Info().Color
}
