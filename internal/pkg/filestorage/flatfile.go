// Package filestorage persists the portal tables as line-oriented text
// files, one row per entity with space-separated fields. It is pure
// serialization: the caller hands it immutable snapshots and it never
// touches the live tables.
package filestorage

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/emirk/academia/internal/app/models"
	"github.com/emirk/academia/internal/pkg/logger"
)

const (
	usersFile       = "users.txt"
	coursesFile     = "courses.txt"
	enrollmentsFile = "enrollments.txt"
)

// FlatFileStore reads and writes the three table files under one data
// directory. Saves serialize through an internal mutex so two concurrent
// saves cannot interleave their rewrites.
type FlatFileStore struct {
	mu      sync.Mutex
	dataDir string
}

// NewFlatFileStore creates a FlatFileStore rooted at dataDir, creating the
// directory if needed.
func NewFlatFileStore(dataDir string) (*FlatFileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}
	return &FlatFileStore{dataDir: dataDir}, nil
}

// UsersFileExists reports whether a users file is already present, which
// decides whether the bootstrap administrator must be synthesized.
func (fs *FlatFileStore) UsersFileExists() bool {
	_, err := os.Stat(filepath.Join(fs.dataDir, usersFile))
	return err == nil
}

// Load reads all three files. A missing file yields an empty table;
// malformed lines are logged and skipped rather than failing the load.
func (fs *FlatFileStore) Load() ([]models.User, []models.Course, []models.Enrollment, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var users []models.User
	if err := fs.readLines(usersFile, func(line string) error {
		u, err := parseUserLine(line)
		if err != nil {
			return err
		}
		users = append(users, u)
		return nil
	}); err != nil {
		return nil, nil, nil, err
	}

	var courses []models.Course
	if err := fs.readLines(coursesFile, func(line string) error {
		c, err := parseCourseLine(line)
		if err != nil {
			return err
		}
		courses = append(courses, c)
		return nil
	}); err != nil {
		return nil, nil, nil, err
	}

	var enrollments []models.Enrollment
	if err := fs.readLines(enrollmentsFile, func(line string) error {
		e, err := parseEnrollmentLine(line)
		if err != nil {
			return err
		}
		enrollments = append(enrollments, e)
		return nil
	}); err != nil {
		return nil, nil, nil, err
	}

	return users, courses, enrollments, nil
}

// Save rewrites all three files in full from the given snapshots. Each file
// is written to a temp file first and renamed into place.
func (fs *FlatFileStore) Save(users []models.User, courses []models.Course, enrollments []models.Enrollment) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := fs.writeLines(usersFile, func(w *bufio.Writer) error {
		for _, u := range users {
			if _, err := fmt.Fprintf(w, "%d %s %s %s %s\n",
				u.ID, u.Username, u.Password, u.Role, formatActive(u.Active)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if err := fs.writeLines(coursesFile, func(w *bufio.Writer) error {
		for _, c := range courses {
			if _, err := fmt.Fprintf(w, "%d %s %d %d %d %s\n",
				c.ID, c.Code, c.FacultyID, c.TotalSeats, c.EnrolledCount, c.Name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	return fs.writeLines(enrollmentsFile, func(w *bufio.Writer) error {
		for _, e := range enrollments {
			if _, err := fmt.Fprintf(w, "%d %d\n", e.StudentID, e.CourseID); err != nil {
				return err
			}
		}
		return nil
	})
}

// readLines feeds every non-empty line of the named file to parse. A parse
// failure skips the line; a missing file is not an error.
func (fs *FlatFileStore) readLines(name string, parse func(string) error) error {
	path := filepath.Join(fs.dataDir, name)
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := parse(line); err != nil {
			logger.Warn().Err(err).Str("file", name).Int("line", lineNo).Msg("Skipping malformed line")
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

// writeLines rewrites the named file through a temp file in the same
// directory so a crashed save never leaves a half-written table behind.
func (fs *FlatFileStore) writeLines(name string, write func(*bufio.Writer) error) error {
	path := filepath.Join(fs.dataDir, name)

	tmp, err := os.CreateTemp(fs.dataDir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := write(w); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file for %s: %w", name, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}

// parseUserLine parses "id username password ROLE active"
func parseUserLine(line string) (models.User, error) {
	fields := strings.Fields(line)
	if len(fields) != 5 {
		return models.User{}, fmt.Errorf("expected 5 fields, got %d", len(fields))
	}

	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return models.User{}, fmt.Errorf("bad user id %q: %w", fields[0], err)
	}
	role, err := models.ParseRoleType(fields[3])
	if err != nil {
		return models.User{}, err
	}
	active, err := parseActive(fields[4])
	if err != nil {
		return models.User{}, err
	}

	return models.User{
		ID:       id,
		Username: fields[1],
		Password: fields[2],
		Role:     role,
		Active:   active,
	}, nil
}

// parseCourseLine parses "id code facultyId totalSeats enrolledCount name",
// where name is the remainder of the line and may contain spaces.
func parseCourseLine(line string) (models.Course, error) {
	parts := strings.SplitN(line, " ", 6)
	if len(parts) != 6 {
		return models.Course{}, fmt.Errorf("expected 6 fields, got %d", len(parts))
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return models.Course{}, fmt.Errorf("bad course id %q: %w", parts[0], err)
	}
	facultyID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return models.Course{}, fmt.Errorf("bad faculty id %q: %w", parts[2], err)
	}
	totalSeats, err := strconv.Atoi(parts[3])
	if err != nil {
		return models.Course{}, fmt.Errorf("bad total seats %q: %w", parts[3], err)
	}
	enrolledCount, err := strconv.Atoi(parts[4])
	if err != nil {
		return models.Course{}, fmt.Errorf("bad enrolled count %q: %w", parts[4], err)
	}
	if enrolledCount < 0 || enrolledCount > totalSeats {
		return models.Course{}, fmt.Errorf("enrolled count %d outside seat bounds 0..%d", enrolledCount, totalSeats)
	}

	return models.Course{
		ID:            id,
		Code:          parts[1],
		Name:          parts[5],
		FacultyID:     facultyID,
		TotalSeats:    totalSeats,
		EnrolledCount: enrolledCount,
	}, nil
}

// parseEnrollmentLine parses "studentId courseId"
func parseEnrollmentLine(line string) (models.Enrollment, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return models.Enrollment{}, fmt.Errorf("expected 2 fields, got %d", len(fields))
	}

	studentID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return models.Enrollment{}, fmt.Errorf("bad student id %q: %w", fields[0], err)
	}
	courseID, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return models.Enrollment{}, fmt.Errorf("bad course id %q: %w", fields[1], err)
	}

	return models.Enrollment{StudentID: studentID, CourseID: courseID}, nil
}

func formatActive(active bool) string {
	if active {
		return "1"
	}
	return "0"
}

func parseActive(s string) (bool, error) {
	switch s {
	case "1":
		return true, nil
	case "0":
		return false, nil
	default:
		return false, fmt.Errorf("bad active flag %q", s)
	}
}
