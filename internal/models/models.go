package models

// All returns every model for AutoMigrate, in dependency order.
func All() []interface{} {
	return []interface{}{
		&Store{},
		&Tag{},
		&Product{},
		&Collection{},
		&EnvVar{},
		&SystemLog{},
	}
}
