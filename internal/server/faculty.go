package server

import (
	"github.com/emirk/academia/internal/app/models"
	"github.com/emirk/academia/internal/pkg/apperrors"
	"github.com/emirk/academia/internal/protocol"
)

// Faculty command handlers.

// myCourses resolves MY_COURSES for the caller's role
func (c *conn) myCourses() []models.Course {
	if c.identity.Role == models.RoleFaculty {
		return c.server.store.ListCoursesForFaculty(c.identity.UserID)
	}
	return c.server.store.ListEnrollmentsForStudent(c.identity.UserID)
}

// handleRoster lists the students on one of the caller's own courses:
// ROSTER <courseId>. Ownership is an authorization check on top of the role
// gate: a faculty member may not read another member's roster.
func (c *conn) handleRoster(args []string) string {
	courseID, err := protocol.ParseID(args[0])
	if err != nil {
		return protocol.ErrorLine(err)
	}

	course, err := c.server.store.FindCourseByID(courseID)
	if err != nil {
		return protocol.ErrorLine(err)
	}
	if course.FacultyID != c.identity.UserID {
		return protocol.ErrorLine(apperrors.NewCustomError(apperrors.ErrUnauthorized, "course belongs to another faculty member"))
	}

	roster, err := c.server.store.ListRosterForCourse(courseID)
	if err != nil {
		return protocol.ErrorLine(err)
	}

	items := make([]string, 0, len(roster))
	for _, student := range roster {
		items = append(items, protocol.FormatUser(student))
	}
	return protocol.OKList(items)
}
