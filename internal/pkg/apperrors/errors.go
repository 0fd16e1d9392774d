package apperrors

import "errors"

// Authentication errors
var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrAccountInactive        = errors.New("account is inactive")
)

// Authorization errors
var (
	ErrUnauthorized = errors.New("operation not permitted for this account")
)

// User errors
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already exists")
)

// Course errors
var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrDuplicateCode      = errors.New("course code already exists")
	ErrFacultyNotFound    = errors.New("faculty member not found")
	ErrSeatsBelowEnrolled = errors.New("total seats cannot drop below current enrollment")
)

// Enrollment errors
var (
	ErrStudentNotFound = errors.New("student not found")
	ErrAlreadyEnrolled = errors.New("student is already enrolled in this course")
	ErrNotEnrolled     = errors.New("student is not enrolled in this course")
	ErrCourseFull      = errors.New("course has no free seats")
)

// Protocol errors
var (
	ErrMalformedRequest = errors.New("malformed request")
	ErrUnknownCommand   = errors.New("unknown command")
)

// Persistence errors
var (
	ErrIOFailure = errors.New("i/o failure")
)

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}
