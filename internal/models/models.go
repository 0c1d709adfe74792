package models

// All lists every model in migration order, parents before children.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Property{},
		&Project{},
		&Document{},
	}
}

// EntityKind names a level of the ownership hierarchy.
type EntityKind string

const (
	KindProperty EntityKind = "property"
	KindProject  EntityKind = "project"
	KindDocument EntityKind = "document"
)
