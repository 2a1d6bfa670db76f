package store

import "aams/internal/realtime"

// TimetableChange is the update-event payload on the timetable channel.
type TimetableChange struct {
	ID  string        `json:"id"`
	Old TimetableSlot `json:"oldSlot"`
	New TimetableSlot `json:"newSlot"`
}

// TimetableUpdate carries the fields a slot update may touch.
type TimetableUpdate struct {
	Time      *string `json:"time,omitempty"`
	SubjectID *string `json:"subjectId,omitempty"`
	TeacherID *string `json:"teacherId,omitempty"`
	ClassName *string `json:"className,omitempty"`
	Day       *string `json:"day,omitempty"`
	Room      *string `json:"room,omitempty"`
	Section   *string `json:"section,omitempty"`
}

func (t *TimetableSlot) apply(upd TimetableUpdate) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&t.Time, upd.Time)
	set(&t.SubjectID, upd.SubjectID)
	set(&t.TeacherID, upd.TeacherID)
	set(&t.ClassName, upd.ClassName)
	set(&t.Day, upd.Day)
	set(&t.Room, upd.Room)
	set(&t.Section, upd.Section)
}

// Timetable returns every slot.
func (s *Store) Timetable() ([]TimetableSlot, error) {
	return readList[TimetableSlot](s, keyTimetable)
}

// AddTimetableSlot appends the slot and broadcasts the addition.
func (s *Store) AddTimetableSlot(slot TimetableSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slots := readListFallback[TimetableSlot](s, keyTimetable)
	slots = append(slots, slot)
	if err := writeList(s, keyTimetable, slots); err != nil {
		return err
	}
	s.publish(realtime.Event{Type: realtime.ChangeAdd, Entity: realtime.EntityTimetable, Data: slot})
	return nil
}

// UpdateTimetableSlot shallow-merges upd into the slot with the given id.
func (s *Store) UpdateTimetableSlot(id string, upd TimetableUpdate) (*TimetableSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slots := readListFallback[TimetableSlot](s, keyTimetable)
	for i := range slots {
		if slots[i].ID != id {
			continue
		}
		old := slots[i]
		slots[i].apply(upd)
		if err := writeList(s, keyTimetable, slots); err != nil {
			return nil, err
		}
		merged := slots[i]
		s.publish(realtime.Event{
			Type:   realtime.ChangeUpdate,
			Entity: realtime.EntityTimetable,
			Data:   TimetableChange{ID: id, Old: old, New: merged},
		})
		return &merged, nil
	}
	return nil, ErrNotFound
}

// DeleteTimetableSlot removes the slot with the given id.
func (s *Store) DeleteTimetableSlot(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	slots := readListFallback[TimetableSlot](s, keyTimetable)
	var deleted *TimetableSlot
	filtered := slots[:0]
	for i := range slots {
		if slots[i].ID == id {
			slot := slots[i]
			deleted = &slot
			continue
		}
		filtered = append(filtered, slots[i])
	}
	if deleted == nil {
		return ErrNotFound
	}
	if err := writeList(s, keyTimetable, filtered); err != nil {
		return err
	}
	s.publish(realtime.Event{Type: realtime.ChangeDelete, Entity: realtime.EntityTimetable, Data: *deleted})
	return nil
}

// StudentTimetable filters slots by the student's class name.
func (s *Store) StudentTimetable(student User) ([]TimetableSlot, error) {
	slots, err := s.Timetable()
	out := make([]TimetableSlot, 0, len(slots))
	for _, slot := range slots {
		if slot.ClassName == student.Course {
			out = append(out, slot)
		}
	}
	return out, err
}

// TeacherTimetable filters slots by teacher id.
func (s *Store) TeacherTimetable(teacherID string) ([]TimetableSlot, error) {
	slots, err := s.Timetable()
	out := make([]TimetableSlot, 0, len(slots))
	for _, slot := range slots {
		if slot.TeacherID == teacherID {
			out = append(out, slot)
		}
	}
	return out, err
}
