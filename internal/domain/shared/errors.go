package shared

import (
	"errors"
	"fmt"
)

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// ValidationError signals a request that was rejected before any state change
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError signals an unknown entity id
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// IsNotFound reports whether err wraps a NotFoundError
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// NotOwnedError signals that the caller does not own the entity it targets
type NotOwnedError struct {
	Entity string
	ID     string
	UserID int
}

func (e *NotOwnedError) Error() string {
	return fmt.Sprintf("user %d does not own %s %s", e.UserID, e.Entity, e.ID)
}

func NewNotOwnedError(entity, id string, userID int) *NotOwnedError {
	return &NotOwnedError{Entity: entity, ID: id, UserID: userID}
}

// InsufficientResourcesError carries the shortfall per resource
type InsufficientResourcesError struct {
	*DomainError
	Resource  Resource
	Required  int
	Available int
}

func NewInsufficientResourcesError(resource Resource, required, available int) *InsufficientResourcesError {
	return &InsufficientResourcesError{
		DomainError: &DomainError{Message: fmt.Sprintf("insufficient %s: need %d, have %d", resource, required, available)},
		Resource:    resource,
		Required:    required,
		Available:   available,
	}
}

// CapacityExceededError signals a transfer that would overflow a capacity limit.
// Transfers are rejected whole; there is no partial application.
type CapacityExceededError struct {
	*DomainError
	Kind      string
	Requested int
	Capacity  int
	Used      int
}

func NewCapacityExceededError(kind string, requested, used, capacity int) *CapacityExceededError {
	return &CapacityExceededError{
		DomainError: &DomainError{Message: fmt.Sprintf("%s capacity exceeded: requested %d with %d/%d in use", kind, requested, used, capacity)},
		Kind:        kind,
		Requested:   requested,
		Capacity:    capacity,
		Used:        used,
	}
}

// DonationDelayError signals a donation attempted before the inter-donation
// delay elapsed. Minutes is rounded up so "wait 0 minutes" never appears.
type DonationDelayError struct {
	*DomainError
	Minutes int
}

func NewDonationDelayError(minutes int) *DonationDelayError {
	if minutes < 1 {
		minutes = 1
	}
	return &DonationDelayError{
		DomainError: &DomainError{Message: fmt.Sprintf("next donation allowed in %d minutes", minutes)},
		Minutes:     minutes,
	}
}

// VersionConflictError signals an optimistic-concurrency write that lost the
// race: the row's version moved between read and write.
type VersionConflictError struct {
	Entity string
	ID     string
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("concurrent modification of %s %s", e.Entity, e.ID)
}

func NewVersionConflictError(entity, id string) *VersionConflictError {
	return &VersionConflictError{Entity: entity, ID: id}
}
