package classroom

import (
	"github.com/trezcool/smartlearn/core"
	"github.com/trezcool/smartlearn/core/user"
)

// inGroup reports whether `studentID` already belongs to a group of the course.
func inGroup(groups []Group, courseID, studentID string) bool {
	for _, g := range groups {
		if g.CourseID == courseID && g.HasMember(studentID) {
			return true
		}
	}
	return false
}

// CreateGroup creates a study group with the signed-in student as its only member.
func (svc *Service) CreateGroup(ng NewGroup) (Group, error) {
	ng.Name = core.CleanString(ng.Name)
	if err := svc.validate.Struct(ng); err != nil {
		return Group{}, err
	}

	var grp Group
	err := svc.write(func(t *tx) error {
		me, err := authorize(&t.state, user.RoleStudent)
		if err != nil {
			return err
		}
		if _, _, ok := findCourse(t.courses, ng.CourseID); !ok {
			return ErrNotFound
		}
		if inGroup(t.groups, ng.CourseID, me.ID) {
			return ErrAlreadyInGroup
		}
		grp = Group{
			ID:          newID("group"),
			CourseID:    ng.CourseID,
			Name:        ng.Name,
			Description: ng.Description,
			MemberIDs:   []string{me.ID},
		}
		t.groups = appendTo(t.groups, grp)
		t.touch(KeyGroups)
		return nil
	})
	if err != nil {
		return Group{}, err
	}
	return grp.clone(), nil
}

// JoinGroup adds the signed-in student to a group.
// A student may only be in one group per course.
func (svc *Service) JoinGroup(groupID string) error {
	return svc.write(func(t *tx) error {
		me, err := authorize(&t.state, user.RoleStudent)
		if err != nil {
			return err
		}
		i, ok := indexOf(t.groups, func(g Group) bool { return g.ID == groupID })
		if !ok {
			return ErrNotFound
		}
		grp := t.groups[i]
		if grp.HasMember(me.ID) {
			return nil
		}
		if inGroup(t.groups, grp.CourseID, me.ID) {
			return ErrAlreadyInGroup
		}
		grp.MemberIDs = appendTo(grp.MemberIDs, me.ID)
		t.groups = replaceAt(t.groups, i, grp)
		t.touch(KeyGroups)
		return nil
	})
}

// LeaveGroup removes the signed-in user from a group. The last member leaving deletes it.
func (svc *Service) LeaveGroup(groupID string) error {
	return svc.write(func(t *tx) error {
		me, err := authorize(&t.state)
		if err != nil {
			return err
		}
		i, ok := indexOf(t.groups, func(g Group) bool { return g.ID == groupID })
		if !ok {
			return ErrNotFound
		}
		grp := t.groups[i]
		if !grp.HasMember(me.ID) {
			return nil
		}
		grp.MemberIDs = filter(grp.MemberIDs, func(id string) bool { return id != me.ID })
		if len(grp.MemberIDs) == 0 {
			t.groups = filter(t.groups, func(g Group) bool { return g.ID != groupID })
		} else {
			t.groups = replaceAt(t.groups, i, grp)
		}
		t.touch(KeyGroups)
		return nil
	})
}

// SendChatMessage posts to a group chat. Members and the course teacher may post.
func (svc *Service) SendChatMessage(groupID, content string) (ChatMessage, error) {
	content = core.CleanString(content)
	if content == "" {
		return ChatMessage{}, core.NewValidationError(ErrEmptyMessage, core.FieldError{Field: "content", Error: ErrEmptyMessage.Error()})
	}

	var msg ChatMessage
	err := svc.write(func(t *tx) error {
		me, err := authorize(&t.state)
		if err != nil {
			return err
		}
		i, ok := indexOf(t.groups, func(g Group) bool { return g.ID == groupID })
		if !ok {
			return ErrNotFound
		}
		grp := t.groups[i]
		if !grp.HasMember(me.ID) {
			course, _, ok := findCourse(t.courses, grp.CourseID)
			if !ok || course.TeacherID != me.ID {
				return ErrPermissionDenied
			}
		}
		msg = ChatMessage{
			ID:        newID("msg"),
			GroupID:   grp.ID,
			AuthorID:  me.ID,
			Content:   content,
			Timestamp: now(),
		}
		t.chatMessages = appendTo(t.chatMessages, msg)
		t.touch(KeyChatMessages)
		return nil
	})
	if err != nil {
		return ChatMessage{}, err
	}
	return msg, nil
}
