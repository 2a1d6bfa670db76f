package store

// Fixed storage keys, one per collection.
const (
	keyUsers               = "aams_users"
	keyCurrentUser         = "aams_current_user"
	keySessionTimestamp    = "aams_session_timestamp"
	keySessionActive       = "aams_session_active"
	keyAttendance          = "aams_attendance"
	keySubjects            = "aams_subjects"
	keyAnnouncements       = "aams_announcements"
	keyTimetable           = "aams_timetable"
	keyLiveAttendanceCode  = "aams_live_attendance_code"
	keyDepartments         = "aams_departments"
	keySections            = "aams_sections"
	keyMasterSubjects      = "aams_master_subjects"
	keyCourseRegistrations = "aams_course_registrations"
	keyRegisteredCourses   = "aams_registered_courses"
)
