// Package models defines the core domain models for Billdesk.
//
// # Models
//
//   - User: a registered account (customer, biller staff, or superuser)
//   - Biller: an organization that issues bills to customers
//   - Bill: an amount owed by a customer to a biller, with due date and status
//   - Payment: money applied against one or more bills in a single submission
//   - Group: a named set of permission codes assignable to users
//   - Notification: a per-user message (e.g. payment received)
//
// # Design Principles
//
// 1. **ID strings, not pointers**: relationships reference IDs to avoid
// circular references between models.
// 2. **Exact money**: all amounts are decimal.Decimal. Bill remainders must
// satisfy remaining = total - paid exactly, which rules out float64.
// 3. **Derived status**: a bill's status is recomputed from its amounts and
// due date rather than trusted from storage, so amounts stay authoritative
// when the stored status string lags behind a payment.
package models
