package store

import "aams/internal/realtime"

// CourseRegistrationChange is the update-event payload on the
// course-registration channel.
type CourseRegistrationChange struct {
	Old CourseRegistration `json:"old"`
	New CourseRegistration `json:"new"`
}

// RegisteredCoursesChange is the payload for register/unregister events.
type RegisteredCoursesChange struct {
	StudentID  string   `json:"studentId"`
	CourseIDs  []string `json:"courseIds"`
	OldCourses []string `json:"oldCourses,omitempty"`
	NewCourses []string `json:"newCourses,omitempty"`
}

// CourseRegistrationUpdate carries the fields a window update may touch.
type CourseRegistrationUpdate struct {
	Semester     *string `json:"semester,omitempty"`
	Year         *string `json:"year,omitempty"`
	DepartmentID *string `json:"departmentId,omitempty"`
	IsOpen       *bool   `json:"isOpen,omitempty"`
	Deadline     *string `json:"deadline,omitempty"`
}

// CourseRegistrations returns every registration window.
func (s *Store) CourseRegistrations() ([]CourseRegistration, error) {
	return readList[CourseRegistration](s, keyCourseRegistrations)
}

// OpenCourseRegistrations returns windows currently marked open.
func (s *Store) OpenCourseRegistrations() ([]CourseRegistration, error) {
	regs, err := s.CourseRegistrations()
	out := make([]CourseRegistration, 0, len(regs))
	for _, r := range regs {
		if r.IsOpen {
			out = append(out, r)
		}
	}
	return out, err
}

// CourseRegistrationsByDepartment filters windows by department id.
func (s *Store) CourseRegistrationsByDepartment(departmentID string) ([]CourseRegistration, error) {
	regs, err := s.CourseRegistrations()
	out := make([]CourseRegistration, 0, len(regs))
	for _, r := range regs {
		if r.DepartmentID == departmentID {
			out = append(out, r)
		}
	}
	return out, err
}

// AddCourseRegistration appends the window and broadcasts the addition.
func (s *Store) AddCourseRegistration(reg CourseRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	regs := readListFallback[CourseRegistration](s, keyCourseRegistrations)
	regs = append(regs, reg)
	if err := writeList(s, keyCourseRegistrations, regs); err != nil {
		return err
	}
	s.publish(realtime.Event{Type: realtime.ChangeAdd, Entity: realtime.EntityCourseRegistration, Data: reg})
	return nil
}

// UpdateCourseRegistration shallow-merges upd into the window with the id.
func (s *Store) UpdateCourseRegistration(id string, upd CourseRegistrationUpdate) (*CourseRegistration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	regs := readListFallback[CourseRegistration](s, keyCourseRegistrations)
	for i := range regs {
		if regs[i].ID != id {
			continue
		}
		old := regs[i]
		if upd.Semester != nil {
			regs[i].Semester = *upd.Semester
		}
		if upd.Year != nil {
			regs[i].Year = *upd.Year
		}
		if upd.DepartmentID != nil {
			regs[i].DepartmentID = *upd.DepartmentID
		}
		if upd.IsOpen != nil {
			regs[i].IsOpen = *upd.IsOpen
		}
		if upd.Deadline != nil {
			regs[i].Deadline = *upd.Deadline
		}
		if err := writeList(s, keyCourseRegistrations, regs); err != nil {
			return nil, err
		}
		merged := regs[i]
		s.publish(realtime.Event{
			Type:   realtime.ChangeUpdate,
			Entity: realtime.EntityCourseRegistration,
			Data:   CourseRegistrationChange{Old: old, New: merged},
		})
		return &merged, nil
	}
	return nil, ErrNotFound
}

// DeleteCourseRegistration removes the window with the id.
func (s *Store) DeleteCourseRegistration(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	regs := readListFallback[CourseRegistration](s, keyCourseRegistrations)
	var deleted *CourseRegistration
	filtered := regs[:0]
	for i := range regs {
		if regs[i].ID == id {
			r := regs[i]
			deleted = &r
			continue
		}
		filtered = append(filtered, regs[i])
	}
	if deleted == nil {
		return ErrNotFound
	}
	if err := writeList(s, keyCourseRegistrations, filtered); err != nil {
		return err
	}
	s.publish(realtime.Event{Type: realtime.ChangeDelete, Entity: realtime.EntityCourseRegistration, Data: *deleted})
	return nil
}

// RegisteredCoursesAll returns every student's registered-courses record.
func (s *Store) RegisteredCoursesAll() ([]RegisteredCourses, error) {
	return readList[RegisteredCourses](s, keyRegisteredCourses)
}

// RegisteredCoursesForStudent returns the student's record or nil.
func (s *Store) RegisteredCoursesForStudent(studentID string) (*RegisteredCourses, error) {
	records, err := s.RegisteredCoursesAll()
	for i := range records {
		if records[i].StudentID == studentID {
			return &records[i], err
		}
	}
	return nil, err
}

// RegisterCourses replaces the student's course set (upsert by student
// id). Whether the registration window is open is the caller's check;
// the two steps are not atomic.
func (s *Store) RegisterCourses(studentID string, courseIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := readListFallback[RegisteredCourses](s, keyRegisteredCourses)
	found := false
	for i := range records {
		if records[i].StudentID == studentID {
			records[i].CourseIDs = courseIDs
			found = true
			break
		}
	}
	if !found {
		records = append(records, RegisteredCourses{StudentID: studentID, CourseIDs: courseIDs})
	}
	if err := writeList(s, keyRegisteredCourses, records); err != nil {
		return err
	}
	s.publish(realtime.Event{
		Type:   realtime.ChangeAdd,
		Entity: realtime.EntityRegisteredCourse,
		Data:   RegisteredCoursesChange{StudentID: studentID, CourseIDs: courseIDs},
	})
	return nil
}

// UnregisterCourses drops the listed courses from the student's record.
// Unknown students are a silent no-op, matching register's upsert shape.
func (s *Store) UnregisterCourses(studentID string, courseIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := readListFallback[RegisteredCourses](s, keyRegisteredCourses)
	for i := range records {
		if records[i].StudentID != studentID {
			continue
		}
		old := records[i].CourseIDs
		drop := make(map[string]bool, len(courseIDs))
		for _, id := range courseIDs {
			drop[id] = true
		}
		kept := make([]string, 0, len(old))
		for _, id := range old {
			if !drop[id] {
				kept = append(kept, id)
			}
		}
		records[i].CourseIDs = kept
		if err := writeList(s, keyRegisteredCourses, records); err != nil {
			return err
		}
		s.publish(realtime.Event{
			Type:   realtime.ChangeDelete,
			Entity: realtime.EntityRegisteredCourse,
			Data:   RegisteredCoursesChange{StudentID: studentID, CourseIDs: courseIDs, OldCourses: old, NewCourses: kept},
		})
		return nil
	}
	return nil
}
