package domain

// Dataset is the tabular projection of persisted insight records consumed by
// the charting layer. Rows follow Columns order.
type Dataset struct {
	AccountID int        `json:"account_id"`
	UserID    int        `json:"user_id"`
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
}
