package store

// Seed writes the demo dataset on a fresh storage and reports whether it
// ran. Guarded on the users key, so calling it again is a no-op and no
// migration path exists between seed versions. Seeding never broadcasts.
func (s *Store) Seed() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kv.Has(keyUsers) {
		return false, nil
	}

	if err := writeList(s, keyUsers, seedUsers()); err != nil {
		return false, err
	}
	if err := writeList(s, keySubjects, seedSubjects()); err != nil {
		return false, err
	}
	if err := writeList(s, keyAttendance, []Attendance{}); err != nil {
		return false, err
	}
	if err := writeList(s, keyAnnouncements, []Announcement{}); err != nil {
		return false, err
	}
	if err := writeList(s, keyTimetable, []TimetableSlot{}); err != nil {
		return false, err
	}
	if err := writeList(s, keyDepartments, seedDepartments()); err != nil {
		return false, err
	}
	if err := writeList(s, keySections, seedSections()); err != nil {
		return false, err
	}
	if err := writeList(s, keyMasterSubjects, seedMasterSubjects()); err != nil {
		return false, err
	}
	s.log.Info("seeded demo data")
	return true, nil
}

func seedUsers() []User {
	return []User{
		{ID: "admin1", Name: "Admin User", Email: "aman@aams.com", Password: "aman@aams", Role: RoleAdmin, Phone: "9876543210"},
		{ID: "teacher1", Name: "Dr. John Smith", Email: "john@aams.com", Password: "teacher123", Role: RoleTeacher, Phone: "9876543211",
			Subject: "Mathematics", AssignedClass: "B.Tech CSE - A"},
		{ID: "teacher2", Name: "Prof. Sarah Johnson", Email: "sarah@aams.com", Password: "teacher123", Role: RoleTeacher, Phone: "9876543212",
			Subject: "Physics", AssignedClass: "B.Tech CSE - B"},
		{ID: "student1", Name: "Rajesh Kumar", Email: "rajesh@aams.com", Password: "student123", Role: RoleStudent, Phone: "9876543213",
			RollNo: "CSE001", Course: "B.Tech CSE - A", Department: "Computer Science & Engineering", Section: "A"},
		{ID: "student2", Name: "Priya Sharma", Email: "priya@aams.com", Password: "student123", Role: RoleStudent, Phone: "9876543214",
			RollNo: "CSE002", Course: "B.Tech CSE - B", Department: "Computer Science & Engineering", Section: "B"},
		{ID: "student3", Name: "Amit Patel", Email: "amit@aams.com", Password: "student123", Role: RoleStudent, Phone: "9876543215",
			RollNo: "CSE003", Course: "B.Tech CSE - A", Department: "Computer Science & Engineering", Section: "A"},
	}
}

func seedSubjects() []Subject {
	return []Subject{
		{ID: "sub1", Name: "Mathematics", Code: "CS101", TeacherID: "teacher1", ClassName: "B.Tech CSE - A"},
		{ID: "sub2", Name: "Physics", Code: "CS102", TeacherID: "teacher2", ClassName: "B.Tech CSE - B"},
	}
}

func seedDepartments() []Department {
	return []Department{
		{ID: "dept1", Name: "Computer Science & Engineering", Code: "CSE", Description: "Department of Computer Science and Engineering"},
		{ID: "dept2", Name: "Electrical & Electronics Engineering", Code: "EEE", Description: "Department of Electrical and Electronics Engineering"},
		{ID: "dept3", Name: "Mechanical Engineering", Code: "ME", Description: "Department of Mechanical Engineering"},
		{ID: "dept4", Name: "Civil Engineering", Code: "CE", Description: "Department of Civil Engineering"},
		{ID: "dept5", Name: "Information Technology", Code: "IT", Description: "Department of Information Technology"},
	}
}

func seedSections() []Section {
	return []Section{
		{ID: "sec1", Name: "Section A", Code: "A", DepartmentID: "dept1", Description: "First section of CSE department"},
		{ID: "sec2", Name: "Section B", Code: "B", DepartmentID: "dept1", Description: "Second section of CSE department"},
	}
}

func seedMasterSubjects() []MasterSubject {
	return []MasterSubject{
		{ID: "msub1", Name: "Mathematics", Code: "CS101", DepartmentID: "dept1", Description: "Basic Mathematics for Engineering"},
		{ID: "msub2", Name: "Physics", Code: "CS102", DepartmentID: "dept1", Description: "Engineering Physics"},
		{ID: "msub3", Name: "Chemistry", Code: "CS103", DepartmentID: "dept1", Description: "Engineering Chemistry"},
	}
}
