package errs

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

type NotFoundError struct {
	ErrorMessage
}

type ValidationError struct {
	ErrorMessage
}

type PermissionDeniedError struct {
	ErrorMessage
}

// DatabaseError wraps a failed document-store operation.
type DatabaseError struct {
	ErrorMessage
	Operation string
	Err       error
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// UploadError reports a failed media pipeline run. Any single blob write or
// URL resolution failing fails the whole batch; no partial URL list exists.
type UploadError struct {
	ErrorMessage
	Err error
}

func (e *UploadError) Unwrap() error { return e.Err }

// CleanupError reports a cascading delete that removed the document but left
// one or more blobs behind. The orphans are not retried.
type CleanupError struct {
	ErrorMessage
	Orphaned []string
	Err      error
}

func (e *CleanupError) Unwrap() error { return e.Err }

// SubscriptionError reports a listener the store refused or dropped, e.g. a
// filter/order combination with no composite index.
type SubscriptionError struct {
	ErrorMessage
	Collection string
	Err        error
}

func (e *SubscriptionError) Unwrap() error { return e.Err }

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewPermissionDeniedError(message string) *PermissionDeniedError {
	return &PermissionDeniedError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewDatabaseError(operation, message string, err error) *DatabaseError {
	return &DatabaseError{
		ErrorMessage: ErrorMessage{Message: message},
		Operation:    operation,
		Err:          err,
	}
}

func NewUploadError(message string, err error) *UploadError {
	return &UploadError{
		ErrorMessage: ErrorMessage{Message: message},
		Err:          err,
	}
}

func NewCleanupError(message string, orphaned []string, err error) *CleanupError {
	return &CleanupError{
		ErrorMessage: ErrorMessage{Message: message},
		Orphaned:     orphaned,
		Err:          err,
	}
}

func NewSubscriptionError(collection string, err error) *SubscriptionError {
	return &SubscriptionError{
		ErrorMessage: ErrorMessage{Message: "listener failed on " + collection},
		Collection:   collection,
		Err:          err,
	}
}
