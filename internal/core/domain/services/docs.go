// Package services contains stateless domain services.
//
// GeoMatcher ranks couriers by great-circle distance for the dispatch
// orchestrator. WebhookVerifier authenticates payment-provider notifications
// before any state mutation is attempted.
package services
