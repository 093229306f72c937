// Package models contains the GORM models for the invoicing tables.
// Domain entities carry no ORM tags; each model converts to and from its
// entity with ToDomain and a FromDomain constructor.
//
// Structure:
// - base.go: BaseModel and the versioned AggregateModel
// - invoicing.go: invoices, line items, payments, currencies, recipients,
//   exports and the yearly identifier sequence
package models
