// model/book.go
package model

type Book struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	RentPerDay float64 `json:"rent_per_day"`
}
