package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// NotFoundError: the invoice, item, product or user does not exist.
type NotFoundError struct {
	Resource string
	ID       interface{}
}

func (e *NotFoundError) Error() string {
	if e.ID == nil {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

// InvalidStateError: the operation is not allowed in the invoice's status.
type InvalidStateError struct {
	Msg string
}

func (e *InvalidStateError) Error() string { return e.Msg }

// ValidationError: malformed input such as a non-positive quantity, a
// negative discount or an unparseable date.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string { return e.Msg }

// InactiveProductError: the product exists but is switched off.
type InactiveProductError struct {
	ProductName string
}

func (e *InactiveProductError) Error() string {
	return fmt.Sprintf("Product %s is not active", e.ProductName)
}

// InsufficientStockError: the product cannot cover the requested quantity.
type InsufficientStockError struct {
	ProductID   uint
	ProductName string
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Insufficient stock for %s. Available: %d", e.ProductName, e.Available)
}

// ConflictError: a unique value (email, barcode) is already taken.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string { return e.Msg }

// UnauthorizedError: bad credentials or a deactivated account.
type UnauthorizedError struct {
	Msg string
}

func (e *UnauthorizedError) Error() string { return e.Msg }

// PersistenceError wraps a storage failure. Clients only see a generic message.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *PersistenceError) Unwrap() error { return e.Err }

// domainError reports whether err already carries one of the typed errors
// above, in which case it must pass through a transaction unchanged.
func domainError(err error) bool {
	var (
		nf  *NotFoundError
		is  *InvalidStateError
		ve  *ValidationError
		ip  *InactiveProductError
		ise *InsufficientStockError
		ce  *ConflictError
		ue  *UnauthorizedError
		pe  *PersistenceError
	)
	return errors.As(err, &nf) || errors.As(err, &is) || errors.As(err, &ve) ||
		errors.As(err, &ip) || errors.As(err, &ise) || errors.As(err, &ce) ||
		errors.As(err, &ue) || errors.As(err, &pe)
}

// persistence wraps err as a PersistenceError unless it is already typed.
func persistence(op string, err error) error {
	if err == nil || domainError(err) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// notFound converts gorm.ErrRecordNotFound into a NotFoundError.
func notFound(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Resource: resource, ID: id}
	}
	return err
}
