package server

import (
	"github.com/emirk/academia/internal/protocol"
)

// Student command handlers.

// handleListCourses lists the course catalog with seat usage. Shared by
// students (to pick a course) and administrators (to inspect the catalog).
func (c *conn) handleListCourses() string {
	courses := c.server.store.ListCourses()
	items := make([]string, 0, len(courses))
	for _, course := range courses {
		items = append(items, protocol.FormatCourse(course))
	}
	return protocol.OKList(items)
}

// handleEnroll registers the caller on a course: ENROLL <courseId>
func (c *conn) handleEnroll(args []string) string {
	courseID, err := protocol.ParseID(args[0])
	if err != nil {
		return protocol.ErrorLine(err)
	}

	if err := c.server.store.Enroll(c.identity.UserID, courseID); err != nil {
		return protocol.ErrorLine(err)
	}
	if err := c.server.persist(); err != nil {
		return protocol.ErrorLine(err)
	}

	c.logger.Info().Int64("course_id", courseID).Msg("Enrolled")
	return protocol.OK()
}

// handleDrop removes the caller's registration: DROP <courseId>
func (c *conn) handleDrop(args []string) string {
	courseID, err := protocol.ParseID(args[0])
	if err != nil {
		return protocol.ErrorLine(err)
	}

	if err := c.server.store.Drop(c.identity.UserID, courseID); err != nil {
		return protocol.ErrorLine(err)
	}
	if err := c.server.persist(); err != nil {
		return protocol.ErrorLine(err)
	}

	c.logger.Info().Int64("course_id", courseID).Msg("Dropped")
	return protocol.OK()
}

// handleMyCourses lists the caller's registrations (student) or the courses
// the caller teaches (faculty).
func (c *conn) handleMyCourses() string {
	var items []string
	for _, course := range c.myCourses() {
		items = append(items, protocol.FormatCourse(course))
	}
	return protocol.OKList(items)
}
