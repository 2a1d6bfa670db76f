package store

import "aams/internal/realtime"

// Announcements returns every announcement.
func (s *Store) Announcements() ([]Announcement, error) {
	return readList[Announcement](s, keyAnnouncements)
}

// AddAnnouncement appends the announcement. When the denormalized
// teacher fields are empty they are snapshotted from the teacher's
// current profile; the snapshot is never refreshed afterwards.
func (s *Store) AddAnnouncement(a Announcement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.TeacherName == "" && a.TeacherID != "" {
		if teacher, _ := s.UserByID(a.TeacherID); teacher != nil {
			a.TeacherName = teacher.Name
			a.TeacherSubject = teacher.Subject
			a.TeacherDepartment = teacher.Department
		}
	}
	announcements := readListFallback[Announcement](s, keyAnnouncements)
	announcements = append(announcements, a)
	if err := writeList(s, keyAnnouncements, announcements); err != nil {
		return err
	}
	s.publish(realtime.Event{Type: realtime.ChangeAdd, Entity: realtime.EntityAnnouncement, Data: a})
	return nil
}

// DeleteAnnouncement removes the announcement with the given id. The
// delete event carries only the id.
func (s *Store) DeleteAnnouncement(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	announcements := readListFallback[Announcement](s, keyAnnouncements)
	filtered := announcements[:0]
	found := false
	for i := range announcements {
		if announcements[i].ID == id {
			found = true
			continue
		}
		filtered = append(filtered, announcements[i])
	}
	if !found {
		return ErrNotFound
	}
	if err := writeList(s, keyAnnouncements, filtered); err != nil {
		return err
	}
	s.publish(realtime.Event{
		Type:   realtime.ChangeDelete,
		Entity: realtime.EntityAnnouncement,
		Data:   map[string]string{"id": id},
	})
	return nil
}

// TeacherAnnouncements filters by author.
func (s *Store) TeacherAnnouncements(teacherID string) ([]Announcement, error) {
	announcements, err := s.Announcements()
	out := make([]Announcement, 0, len(announcements))
	for _, a := range announcements {
		if a.TeacherID == teacherID {
			out = append(out, a)
		}
	}
	return out, err
}

// StudentAnnouncements returns every announcement; students see all of
// them.
func (s *Store) StudentAnnouncements() ([]Announcement, error) {
	return s.Announcements()
}
