package models

// GatewayResult is the binary outcome shared by both external providers.
type GatewayResult struct {
	Successful bool   `json:"successful"`
	Message    string `json:"message"`
}
