// model/transaction.go
package model

import "time"

type TransactionStatus string

const (
	StatusIssued   TransactionStatus = "issued"
	StatusReturned TransactionStatus = "returned"
)

type Transaction struct {
	ID         int64             `json:"id"`
	BookID     int64             `json:"book_id"`
	UserID     int64             `json:"user_id"`
	IssueDate  time.Time         `json:"issue_date"`
	ReturnDate *time.Time        `json:"return_date,omitempty"`
	TotalRent  *float64          `json:"total_rent,omitempty"`
	Status     TransactionStatus `json:"status"`
}
