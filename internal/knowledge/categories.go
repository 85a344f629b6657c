package knowledge

// Category is one learning section of the client.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

var categories = []Category{
	{ID: "patterns", Name: "Patterns (Tuls)", Icon: "🥋", Description: "Learn the traditional forms"},
	{ID: "stances", Name: "Stances (Sogi)", Icon: "🧘", Description: "Master different positions"},
	{ID: "blocks", Name: "Blocks (Makgi)", Icon: "🛡️", Description: "Defense techniques"},
	{ID: "punches", Name: "Punches (Jirugi)", Icon: "👊", Description: "Strike techniques"},
	{ID: "hand_parts", Name: "Hand Parts", Icon: "✋", Description: "Parts used for striking"},
	{ID: "foot_parts", Name: "Foot Parts", Icon: "🦶", Description: "Parts used for kicking"},
	{ID: "kicks", Name: "Kicks (Chagi)", Icon: "🦵", Description: "Kicking techniques"},
}

// Categories returns a copy of the learning categories in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}
