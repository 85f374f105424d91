package calculator

import "go-chi-calculator/internal/history"

// ExpressionRequest is the JSON body for PUT /calculator/expression.
type ExpressionRequest struct {
	Expression string `json:"expression"`
}

// HistoryResponse is the JSON response for GET /calculator/history.
type HistoryResponse struct {
	Items []history.Item `json:"items"`
}
