package models

// All returns every model managed by the schema, in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Budget{},
		&Expense{},
		&AuditLog{},
	}
}
