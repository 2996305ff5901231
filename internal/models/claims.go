package models

import "github.com/golang-jwt/jwt/v5"

// Claims are the JWT claims carried by API tokens
type Claims struct {
	Subject   string `json:"sub_name,omitempty"`
	AccountID string `json:"account_id,omitempty"`
	jwt.RegisteredClaims
}
