package store

import "aams/internal/realtime"

// Master data: departments, sections, and the subject catalog. Deletes
// never cascade; removing a department leaves its sections behind.

// DepartmentChange is the update-event payload on the department channel.
type DepartmentChange struct {
	ID  string     `json:"id"`
	Old Department `json:"oldDept"`
	New Department `json:"newDept"`
}

// SectionChange is the update-event payload on the section channel.
type SectionChange struct {
	ID  string  `json:"id"`
	Old Section `json:"oldSection"`
	New Section `json:"newSection"`
}

// MasterSubjectChange is the update-event payload on the masterSubject
// channel.
type MasterSubjectChange struct {
	ID  string        `json:"id"`
	Old MasterSubject `json:"oldSubject"`
	New MasterSubject `json:"newSubject"`
}

// CatalogUpdate carries the fields shared by all master-data updates.
type CatalogUpdate struct {
	Name        *string `json:"name,omitempty"`
	Code        *string `json:"code,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Departments returns every department.
func (s *Store) Departments() ([]Department, error) {
	return readList[Department](s, keyDepartments)
}

// DepartmentByID returns the department or nil when absent.
func (s *Store) DepartmentByID(id string) (*Department, error) {
	departments, err := s.Departments()
	for i := range departments {
		if departments[i].ID == id {
			return &departments[i], err
		}
	}
	return nil, err
}

// AddDepartment appends the department and broadcasts the addition.
func (s *Store) AddDepartment(d Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	departments := readListFallback[Department](s, keyDepartments)
	departments = append(departments, d)
	if err := writeList(s, keyDepartments, departments); err != nil {
		return err
	}
	s.publish(realtime.Event{Type: realtime.ChangeAdd, Entity: realtime.EntityDepartment, Data: d})
	return nil
}

// UpdateDepartment shallow-merges upd into the department with the id.
func (s *Store) UpdateDepartment(id string, upd CatalogUpdate) (*Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	departments := readListFallback[Department](s, keyDepartments)
	for i := range departments {
		if departments[i].ID != id {
			continue
		}
		old := departments[i]
		if upd.Name != nil {
			departments[i].Name = *upd.Name
		}
		if upd.Code != nil {
			departments[i].Code = *upd.Code
		}
		if upd.Description != nil {
			departments[i].Description = *upd.Description
		}
		if err := writeList(s, keyDepartments, departments); err != nil {
			return nil, err
		}
		merged := departments[i]
		s.publish(realtime.Event{
			Type:   realtime.ChangeUpdate,
			Entity: realtime.EntityDepartment,
			Data:   DepartmentChange{ID: id, Old: old, New: merged},
		})
		return &merged, nil
	}
	return nil, ErrNotFound
}

// DeleteDepartment removes the department with the id.
func (s *Store) DeleteDepartment(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	departments := readListFallback[Department](s, keyDepartments)
	var deleted *Department
	filtered := departments[:0]
	for i := range departments {
		if departments[i].ID == id {
			d := departments[i]
			deleted = &d
			continue
		}
		filtered = append(filtered, departments[i])
	}
	if deleted == nil {
		return ErrNotFound
	}
	if err := writeList(s, keyDepartments, filtered); err != nil {
		return err
	}
	s.publish(realtime.Event{Type: realtime.ChangeDelete, Entity: realtime.EntityDepartment, Data: *deleted})
	return nil
}

// Sections returns every section.
func (s *Store) Sections() ([]Section, error) {
	return readList[Section](s, keySections)
}

// SectionByID returns the section or nil when absent.
func (s *Store) SectionByID(id string) (*Section, error) {
	sections, err := s.Sections()
	for i := range sections {
		if sections[i].ID == id {
			return &sections[i], err
		}
	}
	return nil, err
}

// SectionsByDepartment filters sections by department id.
func (s *Store) SectionsByDepartment(departmentID string) ([]Section, error) {
	sections, err := s.Sections()
	out := make([]Section, 0, len(sections))
	for _, sec := range sections {
		if sec.DepartmentID == departmentID {
			out = append(out, sec)
		}
	}
	return out, err
}

// AddSection appends the section and broadcasts the addition.
func (s *Store) AddSection(sec Section) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sections := readListFallback[Section](s, keySections)
	sections = append(sections, sec)
	if err := writeList(s, keySections, sections); err != nil {
		return err
	}
	s.publish(realtime.Event{Type: realtime.ChangeAdd, Entity: realtime.EntitySection, Data: sec})
	return nil
}

// UpdateSection shallow-merges upd into the section with the id.
func (s *Store) UpdateSection(id string, upd CatalogUpdate) (*Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sections := readListFallback[Section](s, keySections)
	for i := range sections {
		if sections[i].ID != id {
			continue
		}
		old := sections[i]
		if upd.Name != nil {
			sections[i].Name = *upd.Name
		}
		if upd.Code != nil {
			sections[i].Code = *upd.Code
		}
		if upd.Description != nil {
			sections[i].Description = *upd.Description
		}
		if err := writeList(s, keySections, sections); err != nil {
			return nil, err
		}
		merged := sections[i]
		s.publish(realtime.Event{
			Type:   realtime.ChangeUpdate,
			Entity: realtime.EntitySection,
			Data:   SectionChange{ID: id, Old: old, New: merged},
		})
		return &merged, nil
	}
	return nil, ErrNotFound
}

// DeleteSection removes the section with the id.
func (s *Store) DeleteSection(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sections := readListFallback[Section](s, keySections)
	var deleted *Section
	filtered := sections[:0]
	for i := range sections {
		if sections[i].ID == id {
			sec := sections[i]
			deleted = &sec
			continue
		}
		filtered = append(filtered, sections[i])
	}
	if deleted == nil {
		return ErrNotFound
	}
	if err := writeList(s, keySections, filtered); err != nil {
		return err
	}
	s.publish(realtime.Event{Type: realtime.ChangeDelete, Entity: realtime.EntitySection, Data: *deleted})
	return nil
}

// MasterSubjects returns the subject catalog.
func (s *Store) MasterSubjects() ([]MasterSubject, error) {
	return readList[MasterSubject](s, keyMasterSubjects)
}

// MasterSubjectsByDepartment filters catalog entries by department id.
func (s *Store) MasterSubjectsByDepartment(departmentID string) ([]MasterSubject, error) {
	subjects, err := s.MasterSubjects()
	out := make([]MasterSubject, 0, len(subjects))
	for _, sub := range subjects {
		if sub.DepartmentID == departmentID {
			out = append(out, sub)
		}
	}
	return out, err
}

// AddMasterSubject appends the catalog entry and broadcasts the addition.
func (s *Store) AddMasterSubject(sub MasterSubject) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	subjects := readListFallback[MasterSubject](s, keyMasterSubjects)
	subjects = append(subjects, sub)
	if err := writeList(s, keyMasterSubjects, subjects); err != nil {
		return err
	}
	s.publish(realtime.Event{Type: realtime.ChangeAdd, Entity: realtime.EntityMasterSubject, Data: sub})
	return nil
}

// UpdateMasterSubject shallow-merges upd into the entry with the id.
func (s *Store) UpdateMasterSubject(id string, upd CatalogUpdate) (*MasterSubject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subjects := readListFallback[MasterSubject](s, keyMasterSubjects)
	for i := range subjects {
		if subjects[i].ID != id {
			continue
		}
		old := subjects[i]
		if upd.Name != nil {
			subjects[i].Name = *upd.Name
		}
		if upd.Code != nil {
			subjects[i].Code = *upd.Code
		}
		if upd.Description != nil {
			subjects[i].Description = *upd.Description
		}
		if err := writeList(s, keyMasterSubjects, subjects); err != nil {
			return nil, err
		}
		merged := subjects[i]
		s.publish(realtime.Event{
			Type:   realtime.ChangeUpdate,
			Entity: realtime.EntityMasterSubject,
			Data:   MasterSubjectChange{ID: id, Old: old, New: merged},
		})
		return &merged, nil
	}
	return nil, ErrNotFound
}

// DeleteMasterSubject removes the catalog entry with the id.
func (s *Store) DeleteMasterSubject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	subjects := readListFallback[MasterSubject](s, keyMasterSubjects)
	var deleted *MasterSubject
	filtered := subjects[:0]
	for i := range subjects {
		if subjects[i].ID == id {
			sub := subjects[i]
			deleted = &sub
			continue
		}
		filtered = append(filtered, subjects[i])
	}
	if deleted == nil {
		return ErrNotFound
	}
	if err := writeList(s, keyMasterSubjects, filtered); err != nil {
		return err
	}
	s.publish(realtime.Event{Type: realtime.ChangeDelete, Entity: realtime.EntityMasterSubject, Data: *deleted})
	return nil
}
