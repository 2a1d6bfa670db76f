package store

// Role classifies a user. Advisory only; roles are not a security
// boundary in this system, and a user's role never changes after
// creation by convention.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// AttendanceStatus is the per-day marking for a student and subject.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
	StatusLate    AttendanceStatus = "late"
	StatusHoliday AttendanceStatus = "holiday"
)

// User is any account: admin, teacher, or student. The role-specific
// fields are only populated for the matching role.
type User struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Role          Role   `json:"role"`
	Phone         string `json:"phone,omitempty"`
	Subject       string `json:"subject,omitempty"`
	AssignedClass string `json:"assignedClass,omitempty"`
	RollNo        string `json:"rollNo,omitempty"`
	Course        string `json:"course,omitempty"`
	Department    string `json:"department,omitempty"`
	Section       string `json:"section,omitempty"`
	EmpID         string `json:"empId,omitempty"`
}

// Attendance records one student's status for one subject on one day.
// Uniqueness of (studentId, date, subjectId) is not enforced here;
// callers check before inserting or duplicates accumulate.
type Attendance struct {
	ID           string           `json:"id"`
	StudentID    string           `json:"studentId"`
	Date         string           `json:"date"` // ISO day, e.g. "2024-01-10"
	Status       AttendanceStatus `json:"status"`
	SubjectID    string           `json:"subjectId"`
	DepartmentID string           `json:"departmentId,omitempty"`
	SectionID    string           `json:"sectionId,omitempty"`
	MarkedBy     string           `json:"markedBy,omitempty"`
	MarkedAt     string           `json:"markedAt,omitempty"` // RFC 3339
}

// Subject ties a catalog subject to one teacher and class.
type Subject struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	TeacherID string `json:"teacherId"`
	ClassName string `json:"className"`
}

// Announcement is a teacher notice. The teacher name/subject/department
// fields are a snapshot taken at creation time and are deliberately
// never refreshed when the teacher's profile later changes.
type Announcement struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Content           string `json:"content"`
	TeacherID         string `json:"teacherId"`
	Date              string `json:"date"`
	TeacherName       string `json:"teacherName,omitempty"`
	TeacherSubject    string `json:"teacherSubject,omitempty"`
	TeacherDepartment string `json:"teacherDepartment,omitempty"`
}

// TimetableSlot is one period in the weekly grid. No overlap validation
// happens; two slots can exist for the same teacher and time.
type TimetableSlot struct {
	ID        string `json:"id"`
	Time      string `json:"time"` // "HH:MM-HH:MM"
	SubjectID string `json:"subjectId"`
	TeacherID string `json:"teacherId"`
	ClassName string `json:"className"`
	Day       string `json:"day"`
	Room      string `json:"room,omitempty"`
	Section   string `json:"section,omitempty"`
}

// Department is an organizational unit. Users reference departments by
// name, not id; several readers resolve through that.
type Department struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
}

// Section is a class group within a department.
type Section struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	DepartmentID string `json:"departmentId"`
	Description  string `json:"description,omitempty"`
}

// MasterSubject is the catalog entry for a subject, independent of any
// teacher or class assignment.
type MasterSubject struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	DepartmentID string `json:"departmentId"`
	Description  string `json:"description,omitempty"`
}

// CourseRegistration is an open/closed registration window for a
// department and term.
type CourseRegistration struct {
	ID           string `json:"id"`
	Semester     string `json:"semester"`
	Year         string `json:"year"`
	DepartmentID string `json:"departmentId"`
	IsOpen       bool   `json:"isOpen"`
	Deadline     string `json:"deadline,omitempty"`
}

// RegisteredCourses holds the master-subject ids one student registered
// for. One record per student.
type RegisteredCourses struct {
	StudentID string   `json:"studentId"`
	CourseIDs []string `json:"courseIds"`
}

// LiveAttendanceCode is the single active self-marking session. Each
// set overwrites the previous one; it is treated as absent once
// ExpiresAt has passed, checked lazily on read.
type LiveAttendanceCode struct {
	Code      string `json:"code"`
	SubjectID string `json:"subjectId"`
	TeacherID string `json:"teacherId"`
	Timestamp int64  `json:"timestamp"`
	ExpiresAt int64  `json:"expiresAt"`
}
