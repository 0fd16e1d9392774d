// Package protocol defines the line-oriented wire grammar: one request per
// line, a verb followed by space-separated positional arguments, answered by
// one OK or ERROR line. The grammar is an explicit verb table so malformed
// input is rejected up front and never tears down the connection.
package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/emirk/academia/internal/app/models"
	"github.com/emirk/academia/internal/pkg/apperrors"
)

// Verb keywords
const (
	VerbLogin  = "LOGIN"
	VerbLogout = "LOGOUT"
	VerbQuit   = "QUIT"
	VerbWhoAmI = "WHOAMI"
	VerbPasswd = "PASSWD"

	VerbAddUser         = "ADD_USER"
	VerbActivateUser    = "ACTIVATE_USER"
	VerbDeactivateUser  = "DEACTIVATE_USER"
	VerbAddCourse       = "ADD_COURSE"
	VerbEditCourse      = "EDIT_COURSE"
	VerbListUsers       = "LIST_USERS"
	VerbListCourses     = "LIST_COURSES"
	VerbListEnrollments = "LIST_ENROLLMENTS"

	VerbEnroll    = "ENROLL"
	VerbDrop      = "DROP"
	VerbMyCourses = "MY_COURSES"

	VerbRoster = "ROSTER"
)

// Spec describes the grammar of one verb: its argument count, whether the
// final argument swallows the rest of the line, whether it may be issued
// before login, and which roles may issue it (empty = any authenticated
// role).
type Spec struct {
	Argc      int
	Trailing  bool
	Anonymous bool
	Roles     []models.RoleType
}

// AllowsRole reports whether the verb is available to the given role
func (s Spec) AllowsRole(role models.RoleType) bool {
	if len(s.Roles) == 0 {
		return true
	}
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Commands is the verb table. The exact verb list is a configuration point
// of the design; the cross-table invariants hold for any verb set.
var Commands = map[string]Spec{
	VerbLogin:  {Argc: 2, Anonymous: true},
	VerbQuit:   {Argc: 0, Anonymous: true},
	VerbLogout: {Argc: 0},
	VerbWhoAmI: {Argc: 0},
	VerbPasswd: {Argc: 1},

	VerbAddUser:         {Argc: 3, Roles: []models.RoleType{models.RoleAdmin}},
	VerbActivateUser:    {Argc: 1, Roles: []models.RoleType{models.RoleAdmin}},
	VerbDeactivateUser:  {Argc: 1, Roles: []models.RoleType{models.RoleAdmin}},
	VerbAddCourse:       {Argc: 4, Trailing: true, Roles: []models.RoleType{models.RoleAdmin}},
	VerbEditCourse:      {Argc: 3, Trailing: true, Roles: []models.RoleType{models.RoleAdmin}},
	VerbListUsers:       {Argc: 0, Roles: []models.RoleType{models.RoleAdmin}},
	VerbListCourses:     {Argc: 0, Roles: []models.RoleType{models.RoleAdmin, models.RoleStudent}},
	VerbListEnrollments: {Argc: 0, Roles: []models.RoleType{models.RoleAdmin}},

	VerbEnroll:    {Argc: 1, Roles: []models.RoleType{models.RoleStudent}},
	VerbDrop:      {Argc: 1, Roles: []models.RoleType{models.RoleStudent}},
	VerbMyCourses: {Argc: 0, Roles: []models.RoleType{models.RoleStudent, models.RoleFaculty}},

	VerbRoster: {Argc: 1, Roles: []models.RoleType{models.RoleFaculty}},
}

// Request is one parsed command line
type Request struct {
	Verb string
	Args []string
}

// Parse tokenizes a request line against the verb table. It returns
// ErrUnknownCommand for verbs outside the table and ErrMalformedRequest when
// the argument count does not match the verb's grammar.
func Parse(line string) (Request, Spec, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Request{}, Spec{}, apperrors.NewCustomError(apperrors.ErrMalformedRequest, "empty request")
	}

	fields := strings.Fields(line)
	verb := strings.ToUpper(fields[0])
	spec, ok := Commands[verb]
	if !ok {
		return Request{}, Spec{}, apperrors.NewCustomError(apperrors.ErrUnknownCommand, fmt.Sprintf("unknown command %s", verb))
	}

	var args []string
	if spec.Trailing {
		// The final argument is free text and keeps its interior spaces.
		// Fixed positionals come from fields so repeated spaces between
		// tokens never shift an empty token into a positional slot.
		if len(fields) < spec.Argc+1 {
			return Request{}, Spec{}, arityError(verb, spec)
		}
		args = append(args, fields[1:spec.Argc]...)
		args = append(args, trailingText(line, spec.Argc))
	} else {
		args = fields[1:]
		if len(args) != spec.Argc {
			return Request{}, Spec{}, arityError(verb, spec)
		}
	}

	return Request{Verb: verb, Args: args}, spec, nil
}

// ParseID parses a positional argument that must be a positive integer id
func ParseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewCustomError(apperrors.ErrMalformedRequest, fmt.Sprintf("bad id %q", arg))
	}
	return id, nil
}

// ValidateText rejects free-text arguments containing the list-response
// delimiters, which would corrupt LIST_* encoding.
func ValidateText(arg string) error {
	if strings.ContainsAny(arg, "|;") {
		return apperrors.NewCustomError(apperrors.ErrMalformedRequest, fmt.Sprintf("%q contains reserved characters", arg))
	}
	return nil
}

// ParseSeats parses a seat count argument, which must be non-negative
func ParseSeats(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 0 {
		return 0, apperrors.NewCustomError(apperrors.ErrMalformedRequest, fmt.Sprintf("bad seat count %q", arg))
	}
	return n, nil
}

// trailingText returns what remains of line after the verb and the first
// skip-1 arguments, with surrounding whitespace trimmed.
func trailingText(line string, skip int) string {
	rest := line
	for i := 0; i < skip; i++ {
		rest = strings.TrimLeft(rest, " \t")
		cut := strings.IndexAny(rest, " \t")
		if cut < 0 {
			return ""
		}
		rest = rest[cut:]
	}
	return strings.TrimSpace(rest)
}

func arityError(verb string, spec Spec) error {
	return apperrors.NewCustomError(apperrors.ErrMalformedRequest,
		fmt.Sprintf("%s takes %d argument(s)", verb, spec.Argc))
}
