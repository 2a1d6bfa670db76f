package store

import (
	"time"

	"aams/internal/realtime"
)

// AttendanceChange is the update-event payload on the attendance channel.
type AttendanceChange struct {
	ID        string           `json:"id"`
	OldStatus AttendanceStatus `json:"oldStatus"`
	NewStatus AttendanceStatus `json:"newStatus"`
	Record    Attendance       `json:"record"`
}

// AllAttendance returns every attendance record.
func (s *Store) AllAttendance() ([]Attendance, error) {
	return readList[Attendance](s, keyAttendance)
}

// AddAttendance appends the record, filling MarkedBy with the current
// session's user and MarkedAt with now when the caller left them empty.
func (s *Store) AddAttendance(rec Attendance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := readListFallback[Attendance](s, keyAttendance)
	if rec.MarkedBy == "" {
		if actor, _ := s.CurrentUser(); actor != nil {
			rec.MarkedBy = actor.ID
		}
	}
	if rec.MarkedAt == "" {
		rec.MarkedAt = s.now().UTC().Format(time.RFC3339)
	}
	records = append(records, rec)
	if err := writeList(s, keyAttendance, records); err != nil {
		return err
	}
	s.publish(realtime.Event{Type: realtime.ChangeAdd, Entity: realtime.EntityAttendance, Data: rec})
	return nil
}

// UpdateAttendance changes only the status (and the MarkedAt stamp) of
// the record with the given id.
func (s *Store) UpdateAttendance(id string, status AttendanceStatus) (*Attendance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := readListFallback[Attendance](s, keyAttendance)
	for i := range records {
		if records[i].ID != id {
			continue
		}
		oldStatus := records[i].Status
		records[i].Status = status
		records[i].MarkedAt = s.now().UTC().Format(time.RFC3339)
		if err := writeList(s, keyAttendance, records); err != nil {
			return nil, err
		}
		updated := records[i]
		s.publish(realtime.Event{
			Type:   realtime.ChangeUpdate,
			Entity: realtime.EntityAttendance,
			Data:   AttendanceChange{ID: id, OldStatus: oldStatus, NewStatus: status, Record: updated},
		})
		return &updated, nil
	}
	return nil, ErrNotFound
}

// DeleteAttendance removes the record with the given id.
func (s *Store) DeleteAttendance(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := readListFallback[Attendance](s, keyAttendance)
	var deleted *Attendance
	filtered := records[:0]
	for i := range records {
		if records[i].ID == id {
			rec := records[i]
			deleted = &rec
			continue
		}
		filtered = append(filtered, records[i])
	}
	if deleted == nil {
		return ErrNotFound
	}
	if err := writeList(s, keyAttendance, filtered); err != nil {
		return err
	}
	s.publish(realtime.Event{Type: realtime.ChangeDelete, Entity: realtime.EntityAttendance, Data: *deleted})
	return nil
}

// StudentAttendance filters by student id.
func (s *Store) StudentAttendance(studentID string) ([]Attendance, error) {
	return s.filterAttendance(func(a Attendance) bool { return a.StudentID == studentID })
}

// AttendanceByDepartment filters by department id.
func (s *Store) AttendanceByDepartment(departmentID string) ([]Attendance, error) {
	return s.filterAttendance(func(a Attendance) bool { return a.DepartmentID == departmentID })
}

// AttendanceBySection filters by section id.
func (s *Store) AttendanceBySection(sectionID string) ([]Attendance, error) {
	return s.filterAttendance(func(a Attendance) bool { return a.SectionID == sectionID })
}

// AttendanceByDepartmentAndDate filters by department id and ISO day.
func (s *Store) AttendanceByDepartmentAndDate(departmentID, date string) ([]Attendance, error) {
	return s.filterAttendance(func(a Attendance) bool {
		return a.DepartmentID == departmentID && a.Date == date
	})
}

// filterAttendance is a pure scan over the full collection; no index is
// maintained.
func (s *Store) filterAttendance(keep func(Attendance) bool) ([]Attendance, error) {
	records, err := s.AllAttendance()
	out := make([]Attendance, 0, len(records))
	for _, rec := range records {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out, err
}
