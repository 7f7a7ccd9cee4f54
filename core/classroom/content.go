package classroom

import (
	"fmt"

	"github.com/trezcool/smartlearn/core"
	"github.com/trezcool/smartlearn/core/user"
)

// UploadMaterial stores a course file and notifies the enrolled students.
func (svc *Service) UploadMaterial(courseID string, f File) (Material, error) {
	if svc.files == nil {
		return Material{}, ErrNoFileStore
	}
	url, ct, err := svc.files.Put(f)
	if err != nil {
		return Material{}, err
	}

	var mat Material
	err = svc.write(func(t *tx) error {
		if _, err := authorize(&t.state, user.RoleTeacher); err != nil {
			return err
		}
		course, _, ok := findCourse(t.courses, courseID)
		if !ok {
			return ErrNotFound
		}
		mat = Material{
			ID:         newID("mat"),
			CourseID:   course.ID,
			FileName:   f.Name,
			FileType:   ct,
			FileURL:    url,
			UploadedAt: now(),
		}
		t.materials = appendTo(t.materials, mat)
		t.touch(KeyMaterials)
		t.notify(course.StudentIDs, fmt.Sprintf("New material %q uploaded to %q.", mat.FileName, course.Title), courseLink(course.ID))
		return nil
	})
	if err != nil {
		svc.files.Release(url)
		return Material{}, err
	}
	return mat, nil
}

func (svc *Service) DeleteMaterial(id string) error {
	var url string
	err := svc.write(func(t *tx) error {
		if _, err := authorize(&t.state, user.RoleTeacher); err != nil {
			return err
		}
		i, ok := indexOf(t.materials, func(m Material) bool { return m.ID == id })
		if !ok {
			return ErrNotFound
		}
		url = t.materials[i].FileURL
		t.materials = filter(t.materials, func(m Material) bool { return m.ID != id })
		t.touch(KeyMaterials)
		return nil
	})
	if err != nil {
		return err
	}
	if svc.files != nil && url != "" {
		svc.files.Release(url)
	}
	return nil
}

func (svc *Service) CreateAnnouncement(na NewAnnouncement) (Announcement, error) {
	na.Title = core.CleanString(na.Title)
	if err := svc.validate.Struct(na); err != nil {
		return Announcement{}, err
	}

	var ann Announcement
	err := svc.write(func(t *tx) error {
		me, err := authorize(&t.state, user.RoleTeacher)
		if err != nil {
			return err
		}
		course, _, ok := findCourse(t.courses, na.CourseID)
		if !ok {
			return ErrNotFound
		}
		ann = Announcement{
			ID:        newID("announce"),
			CourseID:  course.ID,
			Title:     na.Title,
			Content:   na.Content,
			AuthorID:  me.ID,
			CreatedAt: now(),
		}
		t.announcements = appendTo(t.announcements, ann)
		t.touch(KeyAnnouncements)
		t.notify(course.StudentIDs, fmt.Sprintf("New announcement in %q: %s", course.Title, ann.Title), courseLink(course.ID))
		return nil
	})
	if err != nil {
		return Announcement{}, err
	}
	return ann, nil
}

// CreateDiscussionPost adds a post (or a reply when ParentID is set) to the course board.
// Student posts notify the course teacher.
func (svc *Service) CreateDiscussionPost(np NewDiscussionPost) (DiscussionPost, error) {
	if err := svc.validate.Struct(np); err != nil {
		return DiscussionPost{}, err
	}

	var post DiscussionPost
	err := svc.write(func(t *tx) error {
		me, err := authorize(&t.state)
		if err != nil {
			return err
		}
		course, _, ok := findCourse(t.courses, np.CourseID)
		if !ok {
			return ErrNotFound
		}
		if np.ParentID != "" {
			if _, ok := indexOf(t.discussionPosts, func(p DiscussionPost) bool {
				return p.ID == np.ParentID && p.CourseID == course.ID
			}); !ok {
				return ErrNotFound
			}
		}
		post = DiscussionPost{
			ID:        newID("post"),
			CourseID:  course.ID,
			AuthorID:  me.ID,
			Content:   np.Content,
			CreatedAt: now(),
			ParentID:  np.ParentID,
		}
		t.discussionPosts = appendTo(t.discussionPosts, post)
		t.touch(KeyDiscussionPosts)
		if me.IsStudent() && course.TeacherID != me.ID {
			t.notify([]string{course.TeacherID}, fmt.Sprintf("%s posted in the %q discussion.", me.Name, course.Title), courseLink(course.ID))
		}
		return nil
	})
	if err != nil {
		return DiscussionPost{}, err
	}
	return post, nil
}
