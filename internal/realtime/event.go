// Package realtime fans change events out to every listening context.
// One independent channel exists per entity type; delivery is
// best-effort, at-most-once, with no replay for late subscribers.
package realtime

// ChangeType describes the kind of mutation behind an event.
type ChangeType string

const (
	ChangeAdd    ChangeType = "add"
	ChangeUpdate ChangeType = "update"
	ChangeDelete ChangeType = "delete"
)

// Entity tags the record category a channel carries.
type Entity string

const (
	EntityUser               Entity = "user"
	EntityAttendance         Entity = "attendance"
	EntitySubject            Entity = "subject"
	EntityAnnouncement       Entity = "announcement"
	EntityTimetable          Entity = "timetable"
	EntityDepartment         Entity = "department"
	EntitySection            Entity = "section"
	EntityMasterSubject      Entity = "masterSubject"
	EntityCourseRegistration Entity = "course-registration"
	EntityRegisteredCourse   Entity = "registeredCourse"
)

// Entities lists every channel in a fixed order.
var Entities = []Entity{
	EntityUser,
	EntityAttendance,
	EntitySubject,
	EntityAnnouncement,
	EntityTimetable,
	EntityDepartment,
	EntitySection,
	EntityMasterSubject,
	EntityCourseRegistration,
	EntityRegisteredCourse,
}

// Event describes one mutation to a named entity type.
//
// Data carries the event-specific payload: the affected record for adds
// and deletes, an old/new pair for updates. Events received over the
// redis bus have Data decoded generically (map[string]any).
type Event struct {
	Type      ChangeType `json:"type"`
	Entity    Entity     `json:"entityType"`
	Data      any        `json:"data"`
	Timestamp int64      `json:"timestamp"`
	UserID    string     `json:"userId,omitempty"`
	Source    string     `json:"source,omitempty"`
}
