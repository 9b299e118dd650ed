package api

import (
	"fmt"
	"net/http"

	codelearn "github.com/Niavlys042/codelearn-journey-forge.github.io"
)

// Plans lists the subscription plans.
func (s *Service) Plans() *codelearn.Query[Page[Plan]] {
	return query[Page[Plan]](s, KeyPlans, "/payments/plans/", nil)
}

// Payments lists the user's payments, newest first.
func (s *Service) Payments() *codelearn.Query[Page[Payment]] {
	return query[Page[Payment]](s, KeyPayments, "/payments/payments/", nil)
}

// CreatePayment records a pending payment.
func (s *Service) CreatePayment() *codelearn.Mutation[PaymentRequest, Payment] {
	return mutation[PaymentRequest, Payment](s, call[PaymentRequest]{
		method: http.MethodPost,
		path:   fixed[PaymentRequest]("/payments/payments/"),
		body:   payload[PaymentRequest],
	}, KeyPayments)
}

// ProcessMobilePayment completes a mobile money payment. A plan payment
// starts a subscription and upgrades the user, so those keys are refreshed
// too.
func (s *Service) ProcessMobilePayment() *codelearn.Mutation[int, StatusMessage] {
	return mutation[int, StatusMessage](s, call[int]{
		method: http.MethodPost,
		path: func(id int) string {
			return fmt.Sprintf("/payments/payments/%d/process_mobile_payment/", id)
		},
		success: "Payment processed successfully.",
	}, KeyPayments, KeySubscriptions, KeyProfile)
}

// Subscriptions lists the user's subscriptions, newest first.
func (s *Service) Subscriptions() *codelearn.Query[Page[Subscription]] {
	return query[Page[Subscription]](s, KeySubscriptions, "/payments/subscriptions/", nil)
}

// Subscribe starts a subscription to a plan.
func (s *Service) Subscribe() *codelearn.Mutation[SubscriptionRequest, Subscription] {
	return mutation[SubscriptionRequest, Subscription](s, call[SubscriptionRequest]{
		method: http.MethodPost,
		path:   fixed[SubscriptionRequest]("/payments/subscriptions/"),
		body:   payload[SubscriptionRequest],
	}, KeySubscriptions)
}

// CancelSubscription turns off automatic renewal.
func (s *Service) CancelSubscription() *codelearn.Mutation[int, StatusMessage] {
	return mutation[int, StatusMessage](s, call[int]{
		method: http.MethodPost,
		path: func(id int) string {
			return fmt.Sprintf("/payments/subscriptions/%d/cancel/", id)
		},
		success: "Automatic renewal has been turned off.",
	}, KeySubscriptions)
}
