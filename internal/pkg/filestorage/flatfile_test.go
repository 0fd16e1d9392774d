package filestorage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emirk/academia/internal/app/models"
)

func newTestStore(t *testing.T) *FlatFileStore {
	t.Helper()
	fs, err := NewFlatFileStore(t.TempDir())
	require.NoError(t, err)
	return fs
}

func TestLoadMissingFiles(t *testing.T) {
	fs := newTestStore(t)

	users, courses, enrollments, err := fs.Load()
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.Empty(t, courses)
	assert.Empty(t, enrollments)
	assert.False(t, fs.UsersFileExists())
}

// TestSaveLoadRoundTrip checks that a save followed by a load reproduces the
// tables field for field, including course names containing spaces.
func TestSaveLoadRoundTrip(t *testing.T) {
	fs := newTestStore(t)

	users := []models.User{
		{ID: 1, Username: "admin", Password: "admin123", Role: models.RoleAdmin, Active: true},
		{ID: 2, Username: "prof", Password: "secret", Role: models.RoleFaculty, Active: true},
		{ID: 3, Username: "alice", Password: "pw", Role: models.RoleStudent, Active: false},
	}
	courses := []models.Course{
		{ID: 1, Code: "CS513", Name: "System Software Mini Project", FacultyID: 2, TotalSeats: 10, EnrolledCount: 1},
	}
	enrollments := []models.Enrollment{
		{StudentID: 3, CourseID: 1},
	}

	require.NoError(t, fs.Save(users, courses, enrollments))
	assert.True(t, fs.UsersFileExists())

	gotUsers, gotCourses, gotEnrollments, err := fs.Load()
	require.NoError(t, err)
	assert.Equal(t, users, gotUsers)
	assert.Equal(t, courses, gotCourses)
	assert.Equal(t, enrollments, gotEnrollments)
}

func TestSaveRewritesInFull(t *testing.T) {
	fs := newTestStore(t)

	users := []models.User{
		{ID: 1, Username: "admin", Password: "admin123", Role: models.RoleAdmin, Active: true},
		{ID: 2, Username: "bob", Password: "pw", Role: models.RoleStudent, Active: true},
	}
	require.NoError(t, fs.Save(users, nil, nil))

	// A second save with fewer rows must not leave stale lines behind.
	require.NoError(t, fs.Save(users[:1], nil, nil))

	gotUsers, _, _, err := fs.Load()
	require.NoError(t, err)
	require.Len(t, gotUsers, 1)
	assert.Equal(t, "admin", gotUsers[0].Username)
}

// TestLoadSkipsMalformedLines verifies the parse-failure-tolerant loader:
// bad lines are dropped, good lines survive.
func TestLoadSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFlatFileStore(dir)
	require.NoError(t, err)

	usersContent := "1 admin admin123 ADMIN 1\n" +
		"garbage line\n" +
		"2 alice pw STUDENT maybe\n" +
		"3 bob pw WIZARD 1\n" +
		"4 carol pw STUDENT 0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.txt"), []byte(usersContent), 0o644))

	coursesContent := "1 CS513 2 10 1 System Software\n" +
		"2 CS601 x 10 0 Broken Faculty\n" +
		"3 CS602 2 5 9 Overfull Course\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "courses.txt"), []byte(coursesContent), 0o644))

	enrollmentsContent := "4 1\nnot numbers\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "enrollments.txt"), []byte(enrollmentsContent), 0o644))

	users, courses, enrollments, err := fs.Load()
	require.NoError(t, err)

	require.Len(t, users, 2)
	assert.Equal(t, "admin", users[0].Username)
	assert.Equal(t, "carol", users[1].Username)

	require.Len(t, courses, 1)
	assert.Equal(t, "CS513", courses[0].Code)

	require.Len(t, enrollments, 1)
	assert.Equal(t, int64(4), enrollments[0].StudentID)
}

func TestCourseNameKeepsSpaces(t *testing.T) {
	fs := newTestStore(t)

	courses := []models.Course{
		{ID: 1, Code: "CS731", Name: "Advanced Operating Systems and Virtualization", FacultyID: 2, TotalSeats: 3},
	}
	require.NoError(t, fs.Save(nil, courses, nil))

	_, got, _, err := fs.Load()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, courses[0].Name, got[0].Name)
}
