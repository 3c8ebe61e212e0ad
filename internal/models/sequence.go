package models

// Sequence backs the human-readable yearly counters used for member and
// application numbers. Rows are bumped with an atomic UPDATE inside the
// owning transaction.
type Sequence struct {
	Name  string `gorm:"primaryKey;size:32"`
	Year  int    `gorm:"primaryKey"`
	Value int64  `gorm:"not null;default:0"`
}
