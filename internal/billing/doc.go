// Package billing talks to Stripe: hosted checkout and portal sessions,
// recurring prices, and signed webhook events.
package billing
