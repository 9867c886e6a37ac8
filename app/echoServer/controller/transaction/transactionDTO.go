package transaction

import (
	"fmt"
	"time"
)

type IssueReq struct {
	BookID    int64  `json:"book_id" validate:"required_without=BookName,omitempty,gt=0"`
	BookName  string `json:"book_name" validate:"required_without=BookID"`
	UserID    int64  `json:"user_id" validate:"required_without=UserName,omitempty,gt=0"`
	UserName  string `json:"user_name" validate:"required_without=UserID"`
	IssueDate string `json:"issue_date" validate:"required"`
}

type ReturnReq struct {
	TransactionID int64  `json:"transaction_id" validate:"required,gt=0"`
	ReturnDate    string `json:"return_date" validate:"required"`
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
