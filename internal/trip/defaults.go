package trip

// DefaultDurationMin returns the per-category duration estimate, in
// minutes, used when a skeleton block carries none.
func DefaultDurationMin(t BlockType) int {
	switch t {
	case BlockMeal:
		return 75
	case BlockActivity:
		return 120
	case BlockNightlife:
		return 120
	case BlockRest:
		return 60
	}
	return 60
}
