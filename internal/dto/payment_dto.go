package dto

import "time"

type SubmitPaymentRequest struct {
	TrxID  string `json:"trx_id"`
	Amount int64  `json:"amount"`
}

type PaymentResponse struct {
	ID            string    `json:"id"`
	TrxID         string    `json:"trx_id"`
	Amount        int64     `json:"amount"`
	PaymentMethod string    `json:"payment_method"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// AdminPaymentResponse joins a payment request with its submitter, the way
// the admin panel lists them.
type AdminPaymentResponse struct {
	PaymentResponse
	UserID    string `json:"user_id"`
	UserEmail string `json:"user_email"`
	UserName  string `json:"user_name"`
}

type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// SubscriptionStatusResponse is the resolver verdict returned to the
// dashboard.
type SubscriptionStatusResponse struct {
	IsPremium          bool       `json:"is_premium"`
	Status             string     `json:"status"`
	Source             string     `json:"source,omitempty"`
	PlanID             string     `json:"plan_id,omitempty"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	ShowPremiumWelcome bool       `json:"show_premium_welcome,omitempty"`
}

type AdminStatsResponse struct {
	UserCount   int64 `json:"user_count"`
	PageCount   int64 `json:"page_count"`
	ActiveSubs  int64 `json:"active_subs"`
	QRScanCount int64 `json:"qr_scan_count"`
}

type AdminUserResponse struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	FullName           string    `json:"full_name"`
	SubscriptionStatus string    `json:"subscription_status"`
	CreatedAt          time.Time `json:"created_at"`
}
