package domain

import "time"

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

func ValidTransactionType(t TransactionType) bool {
	return t == TransactionIncome || t == TransactionExpense
}

type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
	Category    string          `json:"category"`
	Type        TransactionType `json:"type"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TransactionFilter narrows listings. Zero values mean "no filter".
type TransactionFilter struct {
	Type     TransactionType
	Category string
	From     time.Time
	To       time.Time
	Skip     int
	Limit    int
}
