package models

// Counter backs atomic fetch-and-increment sequences (order numbers).
type Counter struct {
	Name  string `gorm:"column:name;primaryKey"`
	Value int64  `gorm:"column:value;not null;default:0"`
}
