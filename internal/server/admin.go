package server

import (
	"strconv"

	"github.com/emirk/academia/internal/app/models"
	"github.com/emirk/academia/internal/pkg/apperrors"
	"github.com/emirk/academia/internal/protocol"
)

// Administrator command handlers. Role gating happened in dispatch; these
// only validate arguments, call the store, and persist.

// handleAddUser creates an account: ADD_USER <username> <password> <role>
func (c *conn) handleAddUser(args []string) string {
	if err := protocol.ValidateText(args[0]); err != nil {
		return protocol.ErrorLine(err)
	}
	role, err := models.ParseRoleType(args[2])
	if err != nil {
		return protocol.ErrorLine(apperrors.NewCustomError(apperrors.ErrMalformedRequest, err.Error()))
	}

	user, err := c.server.store.CreateUser(args[0], args[1], role)
	if err != nil {
		return protocol.ErrorLine(err)
	}
	if err := c.server.persist(); err != nil {
		return protocol.ErrorLine(err)
	}

	c.logger.Info().Str("username", user.Username).Str("role", string(user.Role)).Msg("User created")
	return protocol.OK(formatID(user.ID))
}

// handleSetUserActive services ACTIVATE_USER and DEACTIVATE_USER
func (c *conn) handleSetUserActive(args []string, active bool) string {
	id, err := protocol.ParseID(args[0])
	if err != nil {
		return protocol.ErrorLine(err)
	}

	if err := c.server.store.SetUserActive(id, active); err != nil {
		return protocol.ErrorLine(err)
	}
	if err := c.server.persist(); err != nil {
		return protocol.ErrorLine(err)
	}
	return protocol.OK()
}

// handleAddCourse creates a course:
// ADD_COURSE <code> <facultyId> <totalSeats> <name…>
func (c *conn) handleAddCourse(args []string) string {
	if err := protocol.ValidateText(args[0]); err != nil {
		return protocol.ErrorLine(err)
	}
	facultyID, err := protocol.ParseID(args[1])
	if err != nil {
		return protocol.ErrorLine(err)
	}
	seats, err := protocol.ParseSeats(args[2])
	if err != nil {
		return protocol.ErrorLine(err)
	}
	if err := protocol.ValidateText(args[3]); err != nil {
		return protocol.ErrorLine(err)
	}

	course, err := c.server.store.CreateCourse(args[0], args[3], facultyID, seats)
	if err != nil {
		return protocol.ErrorLine(err)
	}
	if err := c.server.persist(); err != nil {
		return protocol.ErrorLine(err)
	}

	c.logger.Info().Str("code", course.Code).Int("seats", course.TotalSeats).Msg("Course created")
	return protocol.OK(formatID(course.ID))
}

// handleEditCourse updates name and seats:
// EDIT_COURSE <id> <totalSeats> <name…>
func (c *conn) handleEditCourse(args []string) string {
	id, err := protocol.ParseID(args[0])
	if err != nil {
		return protocol.ErrorLine(err)
	}
	seats, err := protocol.ParseSeats(args[1])
	if err != nil {
		return protocol.ErrorLine(err)
	}
	if err := protocol.ValidateText(args[2]); err != nil {
		return protocol.ErrorLine(err)
	}

	if _, err := c.server.store.UpdateCourse(id, args[2], seats); err != nil {
		return protocol.ErrorLine(err)
	}
	if err := c.server.persist(); err != nil {
		return protocol.ErrorLine(err)
	}
	return protocol.OK()
}

func (c *conn) handleListUsers() string {
	users := c.server.store.ListUsers()
	items := make([]string, 0, len(users))
	for _, u := range users {
		items = append(items, protocol.FormatUser(u))
	}
	return protocol.OKList(items)
}

func (c *conn) handleListEnrollments() string {
	enrollments := c.server.store.ListEnrollments()
	items := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		items = append(items, protocol.FormatEnrollment(e))
	}
	return protocol.OKList(items)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
