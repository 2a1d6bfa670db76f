package store

import "aams/internal/realtime"

// UserChange is the update-event payload on the user channel.
type UserChange struct {
	ID  string `json:"id"`
	Old User   `json:"oldUser"`
	New User   `json:"newUser"`
}

// UserUpdate carries the fields a user update may touch. Nil means leave
// unchanged. Role is deliberately absent: roles are immutable once set.
type UserUpdate struct {
	Name          *string `json:"name,omitempty"`
	Email         *string `json:"email,omitempty"`
	Password      *string `json:"password,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Subject       *string `json:"subject,omitempty"`
	AssignedClass *string `json:"assignedClass,omitempty"`
	RollNo        *string `json:"rollNo,omitempty"`
	Course        *string `json:"course,omitempty"`
	Department    *string `json:"department,omitempty"`
	Section       *string `json:"section,omitempty"`
	EmpID         *string `json:"empId,omitempty"`
}

func (u *User) apply(upd UserUpdate) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&u.Name, upd.Name)
	set(&u.Email, upd.Email)
	set(&u.Password, upd.Password)
	set(&u.Phone, upd.Phone)
	set(&u.Subject, upd.Subject)
	set(&u.AssignedClass, upd.AssignedClass)
	set(&u.RollNo, upd.RollNo)
	set(&u.Course, upd.Course)
	set(&u.Department, upd.Department)
	set(&u.Section, upd.Section)
	set(&u.EmpID, upd.EmpID)
}

// Users returns every account.
func (s *Store) Users() ([]User, error) {
	return readList[User](s, keyUsers)
}

// Students returns users with the student role.
func (s *Store) Students() ([]User, error) {
	return s.usersByRole(RoleStudent)
}

// Teachers returns users with the teacher role.
func (s *Store) Teachers() ([]User, error) {
	return s.usersByRole(RoleTeacher)
}

func (s *Store) usersByRole(role Role) ([]User, error) {
	users, err := s.Users()
	out := make([]User, 0, len(users))
	for _, u := range users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, err
}

// UserByID returns the user or nil when absent.
func (s *Store) UserByID(id string) (*User, error) {
	users, err := s.Users()
	for i := range users {
		if users[i].ID == id {
			return &users[i], err
		}
	}
	return nil, err
}

// StudentsByDepartment resolves the department id to its name and
// matches students on that name. Users store department names, not ids.
func (s *Store) StudentsByDepartment(departmentID string) ([]User, error) {
	dept, err := s.DepartmentByID(departmentID)
	if err != nil || dept == nil {
		return []User{}, err
	}
	students, err := s.Students()
	out := make([]User, 0, len(students))
	for _, u := range students {
		if u.Department == dept.Name {
			out = append(out, u)
		}
	}
	return out, err
}

// StudentsBySection matches students on the section's code.
func (s *Store) StudentsBySection(sectionID string) ([]User, error) {
	sec, err := s.SectionByID(sectionID)
	if err != nil || sec == nil {
		return []User{}, err
	}
	students, err := s.Students()
	out := make([]User, 0, len(students))
	for _, u := range students {
		if u.Section == sec.Code {
			out = append(out, u)
		}
	}
	return out, err
}

// AddUser appends the user and broadcasts the addition.
func (s *Store) AddUser(user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := readListFallback[User](s, keyUsers)
	users = append(users, user)
	if err := writeList(s, keyUsers, users); err != nil {
		return err
	}
	s.publish(realtime.Event{Type: realtime.ChangeAdd, Entity: realtime.EntityUser, Data: user})
	return nil
}

// UpdateUser shallow-merges upd into the user with the given id and
// returns the merged record. ErrNotFound when the id is unknown.
func (s *Store) UpdateUser(id string, upd UserUpdate) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := readListFallback[User](s, keyUsers)
	for i := range users {
		if users[i].ID != id {
			continue
		}
		old := users[i]
		users[i].apply(upd)
		if err := writeList(s, keyUsers, users); err != nil {
			return nil, err
		}
		merged := users[i]
		s.publish(realtime.Event{
			Type:   realtime.ChangeUpdate,
			Entity: realtime.EntityUser,
			Data:   UserChange{ID: id, Old: old, New: merged},
		})
		return &merged, nil
	}
	return nil, ErrNotFound
}

// DeleteUser removes the user. Nothing is written or broadcast when the
// id is unknown.
func (s *Store) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := readListFallback[User](s, keyUsers)
	var deleted *User
	filtered := users[:0]
	for i := range users {
		if users[i].ID == id {
			u := users[i]
			deleted = &u
			continue
		}
		filtered = append(filtered, users[i])
	}
	if deleted == nil {
		return ErrNotFound
	}
	if err := writeList(s, keyUsers, filtered); err != nil {
		return err
	}
	s.publish(realtime.Event{Type: realtime.ChangeDelete, Entity: realtime.EntityUser, Data: *deleted})
	return nil
}
