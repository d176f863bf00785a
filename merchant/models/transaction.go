package models

// Transaction is one generated BR Code kept in the history.
type Transaction struct {
	ID     string `json:"id" bson:"_id"`
	Amount string `json:"amount" bson:"amount"`
	// Date is an ISO-8601 UTC timestamp with milliseconds.
	Date   string `json:"date" bson:"date"`
	BRCode string `json:"brCode" bson:"brCode"`
}

type CreatePayload struct {
	Amount string `json:"amount"`
	// Cents interprets Amount as a digits-only keypad entry ("1050" is 10.50).
	Cents bool `json:"cents,omitempty"`
}

type VerifyPayload struct {
	BRCode string `json:"br_code"`
}
