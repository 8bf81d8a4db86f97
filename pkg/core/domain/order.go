package domain

// OrderUpdate assigns a new position to the entity with the given id
type OrderUpdate struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
}

// Starting rank of each ordered collection after a reorder
const (
	LinkOrderBase     = 0
	GroupOrderBase    = 1
	TimelineOrderBase = 0
)
