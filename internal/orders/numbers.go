package orders

import (
	"fmt"

	"gorm.io/gorm"
)

const orderNumberCounter = "order_number"

// nextOrderNumber atomically bumps the order sequence and formats the new
// value. Running it inside the order transaction keeps failed creates from
// burning numbers.
func nextOrderNumber(tx *gorm.DB) (string, error) {
	var value int64
	err := tx.Raw(`
INSERT INTO counters (name, value) VALUES (?, 1)
ON CONFLICT (name) DO UPDATE SET value = counters.value + 1
RETURNING value`, orderNumberCounter).Scan(&value).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%04d", value), nil
}
