package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emirk/academia/internal/app/models"
	"github.com/emirk/academia/internal/pkg/apperrors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantVerb string
		wantArgs []string
		wantErr  error
	}{
		{
			name:     "login",
			line:     "LOGIN admin admin123",
			wantVerb: VerbLogin,
			wantArgs: []string{"admin", "admin123"},
		},
		{
			name:     "lowercase verb accepted",
			line:     "login admin admin123",
			wantVerb: VerbLogin,
			wantArgs: []string{"admin", "admin123"},
		},
		{
			name:     "no-arg verb",
			line:     "LIST_COURSES",
			wantVerb: VerbListCourses,
			wantArgs: []string{},
		},
		{
			name:     "trailing name keeps spaces",
			line:     "ADD_COURSE CS513 2 10 System Software Mini Project",
			wantVerb: VerbAddCourse,
			wantArgs: []string{"CS513", "2", "10", "System Software Mini Project"},
		},
		{
			name:     "edit course trailing",
			line:     "EDIT_COURSE 1 15 Advanced System Software",
			wantVerb: VerbEditCourse,
			wantArgs: []string{"1", "15", "Advanced System Software"},
		},
		{
			name:     "repeated spaces between fixed args",
			line:     "ADD_COURSE CS513  2  10 Intro to Systems",
			wantVerb: VerbAddCourse,
			wantArgs: []string{"CS513", "2", "10", "Intro to Systems"},
		},
		{
			name:     "repeated spaces without trailing text",
			line:     "LOGIN  admin   admin123",
			wantVerb: VerbLogin,
			wantArgs: []string{"admin", "admin123"},
		},
		{
			name:    "unknown verb",
			line:    "FROBNICATE 1 2",
			wantErr: apperrors.ErrUnknownCommand,
		},
		{
			name:    "too few args",
			line:    "LOGIN admin",
			wantErr: apperrors.ErrMalformedRequest,
		},
		{
			name:    "too many args",
			line:    "ENROLL 1 2",
			wantErr: apperrors.ErrMalformedRequest,
		},
		{
			name:    "trailing verb without name",
			line:    "ADD_COURSE CS513 2 10",
			wantErr: apperrors.ErrMalformedRequest,
		},
		{
			name:    "empty line",
			line:    "   ",
			wantErr: apperrors.ErrMalformedRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _, err := Parse(tt.line)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVerb, req.Verb)
			assert.ElementsMatch(t, tt.wantArgs, req.Args)
		})
	}
}

func TestSpecAllowsRole(t *testing.T) {
	assert.True(t, Commands[VerbAddUser].AllowsRole(models.RoleAdmin))
	assert.False(t, Commands[VerbAddUser].AllowsRole(models.RoleStudent))
	assert.True(t, Commands[VerbMyCourses].AllowsRole(models.RoleFaculty))
	assert.False(t, Commands[VerbRoster].AllowsRole(models.RoleStudent))

	// No role restriction means every authenticated role.
	assert.True(t, Commands[VerbWhoAmI].AllowsRole(models.RoleFaculty))
	assert.True(t, Commands[VerbLogout].AllowsRole(models.RoleStudent))
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"x", "0", "-3", "4.5", ""} {
		_, err := ParseID(bad)
		assert.ErrorIs(t, err, apperrors.ErrMalformedRequest, "input %q", bad)
	}
}

func TestValidateText(t *testing.T) {
	assert.NoError(t, ValidateText("System Software Mini Project"))
	assert.ErrorIs(t, ValidateText("bad|name"), apperrors.ErrMalformedRequest)
	assert.ErrorIs(t, ValidateText("bad;name"), apperrors.ErrMalformedRequest)
}

func TestParseSeats(t *testing.T) {
	n, err := ParseSeats("0")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = ParseSeats("-1")
	assert.ErrorIs(t, err, apperrors.ErrMalformedRequest)
}

func TestResponseFormatting(t *testing.T) {
	assert.Equal(t, "OK", OK())
	assert.Equal(t, "OK 3 STUDENT", OK("3", "STUDENT"))

	line := ErrorLine(apperrors.ErrCourseFull)
	assert.Equal(t, "ERROR CourseFull course has no free seats", line)

	assert.Equal(t, "AuthenticationRequired", ErrorCode(apperrors.ErrAuthenticationRequired))
	assert.Equal(t, "Unauthorized", ErrorCode(apperrors.ErrUnauthorized))

	// Wrapped errors resolve through errors.Is.
	wrapped := apperrors.NewCustomError(apperrors.ErrMalformedRequest, "ENROLL takes 1 argument(s)")
	assert.Equal(t, "MalformedRequest", ErrorCode(wrapped))
	assert.Equal(t, "ERROR MalformedRequest ENROLL takes 1 argument(s)", ErrorLine(wrapped))
}
