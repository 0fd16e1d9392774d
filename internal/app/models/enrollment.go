package models

// Enrollment is one (student, course) registration. The pair is unique and
// every row is mirrored by exactly one increment of the owning course's
// EnrolledCount.
type Enrollment struct {
	StudentID int64 `json:"studentId"`
	CourseID  int64 `json:"courseId"`
}
