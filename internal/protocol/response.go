package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/emirk/academia/internal/app/models"
	"github.com/emirk/academia/internal/pkg/apperrors"
)

// Status keywords
const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// codes maps the error taxonomy to its stable wire tokens. The token is
// machine-readable; the message that follows it on the line is for humans.
var codes = []struct {
	err  error
	code string
}{
	{apperrors.ErrAuthenticationRequired, "AuthenticationRequired"},
	{apperrors.ErrInvalidCredentials, "InvalidCredentials"},
	{apperrors.ErrAccountInactive, "AccountInactive"},
	{apperrors.ErrUnauthorized, "Unauthorized"},
	{apperrors.ErrDuplicateUsername, "DuplicateUsername"},
	{apperrors.ErrDuplicateCode, "DuplicateCourseCode"},
	{apperrors.ErrUserNotFound, "UnknownUser"},
	{apperrors.ErrCourseNotFound, "UnknownCourse"},
	{apperrors.ErrFacultyNotFound, "UnknownFaculty"},
	{apperrors.ErrStudentNotFound, "UnknownStudent"},
	{apperrors.ErrAlreadyEnrolled, "AlreadyEnrolled"},
	{apperrors.ErrNotEnrolled, "NotEnrolled"},
	{apperrors.ErrCourseFull, "CourseFull"},
	{apperrors.ErrSeatsBelowEnrolled, "SeatsBelowEnrolled"},
	{apperrors.ErrMalformedRequest, "MalformedRequest"},
	{apperrors.ErrUnknownCommand, "UnknownCommand"},
	{apperrors.ErrIOFailure, "IOFailure"},
}

// OK formats a success response line
func OK(tokens ...string) string {
	if len(tokens) == 0 {
		return StatusOK
	}
	return StatusOK + " " + strings.Join(tokens, " ")
}

// ErrorLine formats an error response line as "ERROR <Code> <message>"
func ErrorLine(err error) string {
	return StatusError + " " + ErrorCode(err) + " " + err.Error()
}

// ErrorCode resolves the wire token for an error. Errors outside the
// taxonomy can only come from the persistence path, so they surface as
// IOFailure.
func ErrorCode(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "IOFailure"
}

// List responses stay on one line: "OK <count> <items>", items joined by
// ';', fields within an item joined by '|'. Only the final field of an item
// (the course name) may contain spaces, so a client splits the line once on
// the second space and then on ';' and '|'.

// OKList formats a list response line
func OKList(items []string) string {
	if len(items) == 0 {
		return OK("0")
	}
	return OK(strconv.Itoa(len(items)), strings.Join(items, ";"))
}

// FormatUser encodes a user as a list item (the password never leaves the
// server)
func FormatUser(u models.User) string {
	return fmt.Sprintf("%d|%s|%s|%s", u.ID, u.Username, u.Role, activeToken(u.Active))
}

// FormatCourse encodes a course as a list item; the name comes last because
// it may contain spaces
func FormatCourse(c models.Course) string {
	return fmt.Sprintf("%d|%s|%d|%d|%d|%s", c.ID, c.Code, c.FacultyID, c.EnrolledCount, c.TotalSeats, c.Name)
}

// FormatEnrollment encodes an enrollment pair as a list item
func FormatEnrollment(e models.Enrollment) string {
	return fmt.Sprintf("%d|%d", e.StudentID, e.CourseID)
}

func activeToken(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}
