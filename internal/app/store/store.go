// Package store owns the three in-memory tables (users, courses,
// enrollments) behind one coarse-grained mutex. Every multi-field invariant
// (seat capacity vs. enrollment rows, uniqueness of usernames, codes and
// enrollment pairs) is established inside a single critical section, so no
// caller can ever observe a torn intermediate state.
package store

import (
	"sync"

	"github.com/emirk/academia/internal/app/models"
	"github.com/emirk/academia/internal/pkg/apperrors"
)

// Store is the shared data store. All access to the tables goes through its
// methods; each method holds the mutex for its whole duration and never
// across network I/O.
type Store struct {
	mu sync.Mutex

	users       []models.User
	courses     []models.Course
	enrollments []models.Enrollment

	nextUserID   int64
	nextCourseID int64
}

// New creates an empty store
func New() *Store {
	return &Store{
		nextUserID:   1,
		nextCourseID: 1,
	}
}

// Replace installs previously loaded tables, discarding current contents.
// ID counters resume past the highest loaded ID.
func (s *Store) Replace(users []models.User, courses []models.Course, enrollments []models.Enrollment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = append([]models.User(nil), users...)
	s.courses = append([]models.Course(nil), courses...)
	s.enrollments = append([]models.Enrollment(nil), enrollments...)

	s.nextUserID = 1
	for _, u := range s.users {
		if u.ID >= s.nextUserID {
			s.nextUserID = u.ID + 1
		}
	}
	s.nextCourseID = 1
	for _, c := range s.courses {
		if c.ID >= s.nextCourseID {
			s.nextCourseID = c.ID + 1
		}
	}
}

// Snapshot returns copies of all three tables taken under the lock, suitable
// for handing to the flat-file store without further synchronization.
func (s *Store) Snapshot() (users []models.User, courses []models.Course, enrollments []models.Enrollment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users = append([]models.User(nil), s.users...)
	courses = append([]models.Course(nil), s.courses...)
	enrollments = append([]models.Enrollment(nil), s.enrollments...)
	return users, courses, enrollments
}

// FindUserByUsername returns the user with the given username
func (s *Store) FindUserByUsername(username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, apperrors.ErrUserNotFound
}

// FindUserByID returns the user with the given id
func (s *Store) FindUserByID(id int64) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u := s.userByID(id); u != nil {
		return *u, nil
	}
	return models.User{}, apperrors.ErrUserNotFound
}

// FindCourseByID returns the course with the given id
func (s *Store) FindCourseByID(id int64) (models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c := s.courseByID(id); c != nil {
		return *c, nil
	}
	return models.Course{}, apperrors.ErrCourseNotFound
}

// FindCourseByCode returns the course with the given code
func (s *Store) FindCourseByCode(code string) (models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.courses {
		if c.Code == code {
			return c, nil
		}
	}
	return models.Course{}, apperrors.ErrCourseNotFound
}

// CreateUser adds a new active user account
func (s *Store) CreateUser(username, password string, role models.RoleType) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return models.User{}, apperrors.ErrDuplicateUsername
		}
	}

	user := models.User{
		ID:       s.nextUserID,
		Username: username,
		Password: password,
		Role:     role,
		Active:   true,
	}
	s.nextUserID++
	s.users = append(s.users, user)
	return user, nil
}

// SetUserActive flips the activation flag of an account. Deactivation is the
// deletion surrogate: the row stays so historical enrollments keep resolving.
func (s *Store) SetUserActive(id int64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.userByID(id)
	if u == nil {
		return apperrors.ErrUserNotFound
	}
	u.Active = active
	return nil
}

// ChangePassword replaces the password of an account
func (s *Store) ChangePassword(id int64, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.userByID(id)
	if u == nil {
		return apperrors.ErrUserNotFound
	}
	u.Password = newPassword
	return nil
}

// CreateCourse adds a course owned by an active faculty member
func (s *Store) CreateCourse(code, name string, facultyID int64, totalSeats int) (models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.courses {
		if c.Code == code {
			return models.Course{}, apperrors.ErrDuplicateCode
		}
	}

	faculty := s.userByID(facultyID)
	if faculty == nil || faculty.Role != models.RoleFaculty || !faculty.Active {
		return models.Course{}, apperrors.ErrFacultyNotFound
	}

	course := models.Course{
		ID:         s.nextCourseID,
		Code:       code,
		Name:       name,
		FacultyID:  facultyID,
		TotalSeats: totalSeats,
	}
	s.nextCourseID++
	s.courses = append(s.courses, course)
	return course, nil
}

// UpdateCourse changes the name and seat capacity of a course. Shrinking the
// capacity below the current enrollment is rejected so the capacity invariant
// cannot be violated by an edit.
func (s *Store) UpdateCourse(id int64, name string, totalSeats int) (models.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.courseByID(id)
	if c == nil {
		return models.Course{}, apperrors.ErrCourseNotFound
	}
	if totalSeats < c.EnrolledCount {
		return models.Course{}, apperrors.ErrSeatsBelowEnrolled
	}

	c.Name = name
	c.TotalSeats = totalSeats
	return *c, nil
}

// Enroll registers a student on a course. The capacity check, the row insert
// and the count increment form one critical section: of two concurrent calls
// racing for the last seat exactly one succeeds.
func (s *Store) Enroll(studentID, courseID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	student := s.userByID(studentID)
	if student == nil || student.Role != models.RoleStudent {
		return apperrors.ErrStudentNotFound
	}
	course := s.courseByID(courseID)
	if course == nil {
		return apperrors.ErrCourseNotFound
	}
	if s.enrolled(studentID, courseID) {
		return apperrors.ErrAlreadyEnrolled
	}
	if course.EnrolledCount >= course.TotalSeats {
		return apperrors.ErrCourseFull
	}

	s.enrollments = append(s.enrollments, models.Enrollment{StudentID: studentID, CourseID: courseID})
	course.EnrolledCount++
	return nil
}

// Drop removes a registration and decrements the owning course's count
func (s *Store) Drop(studentID, courseID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			s.enrollments = append(s.enrollments[:i], s.enrollments[i+1:]...)
			if course := s.courseByID(courseID); course != nil {
				course.EnrolledCount--
			}
			return nil
		}
	}
	return apperrors.ErrNotEnrolled
}

// ListUsers returns a copy of the user table
func (s *Store) ListUsers() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.User(nil), s.users...)
}

// ListCourses returns a copy of the course table
func (s *Store) ListCourses() []models.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Course(nil), s.courses...)
}

// ListEnrollments returns a copy of the enrollment table
func (s *Store) ListEnrollments() []models.Enrollment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Enrollment(nil), s.enrollments...)
}

// ListCoursesForFaculty returns the courses owned by one faculty member
func (s *Store) ListCoursesForFaculty(facultyID int64) []models.Course {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Course
	for _, c := range s.courses {
		if c.FacultyID == facultyID {
			out = append(out, c)
		}
	}
	return out
}

// ListEnrollmentsForStudent returns the courses a student is registered on
func (s *Store) ListEnrollmentsForStudent(studentID int64) []models.Course {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Course
	for _, e := range s.enrollments {
		if e.StudentID != studentID {
			continue
		}
		if c := s.courseByID(e.CourseID); c != nil {
			out = append(out, *c)
		}
	}
	return out
}

// ListRosterForCourse returns the students registered on a course
func (s *Store) ListRosterForCourse(courseID int64) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.courseByID(courseID) == nil {
		return nil, apperrors.ErrCourseNotFound
	}

	var out []models.User
	for _, e := range s.enrollments {
		if e.CourseID != courseID {
			continue
		}
		if u := s.userByID(e.StudentID); u != nil {
			out = append(out, *u)
		}
	}
	return out, nil
}

// Counts reports the table sizes, used by the metrics gauges
func (s *Store) Counts() (users, courses, enrollments int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), len(s.courses), len(s.enrollments)
}

// Callers below must hold s.mu.

func (s *Store) userByID(id int64) *models.User {
	for i := range s.users {
		if s.users[i].ID == id {
			return &s.users[i]
		}
	}
	return nil
}

func (s *Store) courseByID(id int64) *models.Course {
	for i := range s.courses {
		if s.courses[i].ID == id {
			return &s.courses[i]
		}
	}
	return nil
}

func (s *Store) enrolled(studentID, courseID int64) bool {
	for _, e := range s.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			return true
		}
	}
	return false
}
