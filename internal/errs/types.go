package errs

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

type NotFoundError struct {
	ErrorMessage
}

// DuplicateTransactionError is the idempotency guard: a record with the
// same messageId already exists.
type DuplicateTransactionError struct {
	ErrorMessage
}

// InvalidTransactionMessageError means extraction determined the text is
// not a parseable, completed transaction.
type InvalidTransactionMessageError struct {
	ErrorMessage
}

// ValidationError carries a field-keyed error tree alongside the message.
type ValidationError struct {
	ErrorMessage
	Fields map[string]string
}

// ProviderFailureError is raised only after every provider in the chain
// has failed. Cause aggregates the per-provider failures.
type ProviderFailureError struct {
	ErrorMessage
	Cause error
}

func (e *ProviderFailureError) Unwrap() error { return e.Cause }

type DatabaseError struct {
	ErrorMessage
	Operation string
	Cause     error
}

func (e *DatabaseError) Unwrap() error { return e.Cause }

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewDuplicateTransactionError(message string) *DuplicateTransactionError {
	return &DuplicateTransactionError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewInvalidTransactionMessageError(message string) *InvalidTransactionMessageError {
	return &InvalidTransactionMessageError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewFieldValidationError(message string, fields map[string]string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
		Fields:       fields,
	}
}

func NewProviderFailureError(message string, cause error) *ProviderFailureError {
	return &ProviderFailureError{
		ErrorMessage: ErrorMessage{Message: message},
		Cause:        cause,
	}
}

func NewDatabaseError(operation string, cause error) *DatabaseError {
	return &DatabaseError{
		ErrorMessage: ErrorMessage{Message: "database operation failed: " + operation},
		Operation:    operation,
		Cause:        cause,
	}
}
