package domain

const (
	EventTransactionCreated = "TransactionCreated"
	EventPaymentCaptured    = "PaymentCaptured"
	EventPaymentFailed      = "PaymentFailed"
)

type TransactionCreated struct {
	TransactionID string `json:"transaction_id"`
	ProductID     string `json:"product_id"`
	CustomerID    string `json:"customer_id"`
	Quantity      int    `json:"quantity"`
	Amount        string `json:"amount"`
}

type PaymentCaptured struct {
	TransactionID string `json:"transaction_id"`
	PaymentID     string `json:"payment_id"`
}

type PaymentFailed struct {
	TransactionID string `json:"transaction_id"`
	Reason        string `json:"reason"`
}
