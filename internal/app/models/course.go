package models

// Course defines a course offering. EnrolledCount is owned by the store's
// enroll/drop operations and is never set directly from a client request.
type Course struct {
	ID            int64  `json:"id"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	FacultyID     int64  `json:"facultyId"`
	TotalSeats    int    `json:"totalSeats"`
	EnrolledCount int    `json:"enrolledCount"`
}

// SeatsLeft returns the number of free seats on the course
func (c *Course) SeatsLeft() int {
	return c.TotalSeats - c.EnrolledCount
}
