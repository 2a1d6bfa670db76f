package store

import "aams/internal/realtime"

// Subjects returns every teacher/class subject instance.
func (s *Store) Subjects() ([]Subject, error) {
	return readList[Subject](s, keySubjects)
}

// SubjectByID returns the subject or nil when absent.
func (s *Store) SubjectByID(id string) (*Subject, error) {
	subjects, err := s.Subjects()
	for i := range subjects {
		if subjects[i].ID == id {
			return &subjects[i], err
		}
	}
	return nil, err
}

// AddSubject appends the subject and broadcasts the addition.
func (s *Store) AddSubject(sub Subject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	subjects := readListFallback[Subject](s, keySubjects)
	subjects = append(subjects, sub)
	if err := writeList(s, keySubjects, subjects); err != nil {
		return err
	}
	s.publish(realtime.Event{Type: realtime.ChangeAdd, Entity: realtime.EntitySubject, Data: sub})
	return nil
}

// TeacherSubjects filters by teacher id.
func (s *Store) TeacherSubjects(teacherID string) ([]Subject, error) {
	subjects, err := s.Subjects()
	out := make([]Subject, 0, len(subjects))
	for _, sub := range subjects {
		if sub.TeacherID == teacherID {
			out = append(out, sub)
		}
	}
	return out, err
}
