package classroom

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/smartlearn/core/user"
)

// UploadVideoMaterial stores a lecture video with a generated transcript.
// Nothing is recorded when the transcript cannot be generated.
func (svc *Service) UploadVideoMaterial(ctx context.Context, courseID string, f File) (VideoMaterial, error) {
	// fail fast before the slow calls
	st := svc.store.snapshot()
	if _, err := authorize(&st, user.RoleTeacher); err != nil {
		return VideoMaterial{}, err
	}
	if _, _, ok := findCourse(st.courses, courseID); !ok {
		return VideoMaterial{}, ErrNotFound
	}
	if svc.files == nil {
		return VideoMaterial{}, ErrNoFileStore
	}
	if svc.generator == nil {
		return VideoMaterial{}, ErrNoGenerator
	}

	transcript, err := svc.generator.GenerateVideoTranscript(ctx, f.Name)
	if err != nil {
		return VideoMaterial{}, errors.Wrap(err, "generating transcript")
	}
	url, ct, err := svc.files.Put(f)
	if err != nil {
		return VideoMaterial{}, err
	}

	var video VideoMaterial
	err = svc.write(func(t *tx) error {
		if _, err := authorize(&t.state, user.RoleTeacher); err != nil {
			return err
		}
		course, _, ok := findCourse(t.courses, courseID)
		if !ok {
			return ErrNotFound
		}
		video = VideoMaterial{
			ID:         newID("video"),
			CourseID:   course.ID,
			FileName:   f.Name,
			FileType:   ct,
			FileURL:    url,
			UploadedAt: now(),
			Transcript: transcript,
		}
		t.videoMaterials = appendTo(t.videoMaterials, video)
		t.touch(KeyVideoMaterials)
		t.notify(course.StudentIDs, fmt.Sprintf("New video %q uploaded to %q.", video.FileName, course.Title), courseLink(course.ID))
		return nil
	})
	if err != nil {
		svc.files.Release(url)
		return VideoMaterial{}, err
	}
	return video, nil
}

// DeleteVideoMaterial removes a video together with every note taken on it.
func (svc *Service) DeleteVideoMaterial(id string) error {
	var url string
	err := svc.write(func(t *tx) error {
		if _, err := authorize(&t.state, user.RoleTeacher); err != nil {
			return err
		}
		i, ok := indexOf(t.videoMaterials, func(v VideoMaterial) bool { return v.ID == id })
		if !ok {
			return ErrNotFound
		}
		url = t.videoMaterials[i].FileURL
		t.videoMaterials = filter(t.videoMaterials, func(v VideoMaterial) bool { return v.ID != id })
		t.touch(KeyVideoMaterials)

		notes := filter(t.videoNotes, func(n VideoNote) bool { return n.VideoID != id })
		if len(notes) != len(t.videoNotes) {
			t.videoNotes = notes
			t.touch(KeyVideoNotes)
		}
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

func (svc *Service) CreateVideoNote(nn NewVideoNote) (VideoNote, error) {
	if err := svc.validate.Struct(nn); err != nil {
		return VideoNote{}, err
	}

	var note VideoNote
	err := svc.write(func(t *tx) error {
		me, err := authorize(&t.state)
		if err != nil {
			return err
		}
		if _, ok := indexOf(t.videoMaterials, func(v VideoMaterial) bool { return v.ID == nn.VideoID }); !ok {
			return ErrNotFound
		}
		note = VideoNote{
			ID:        newID("vnote"),
			VideoID:   nn.VideoID,
			StudentID: me.ID,
			Content:   nn.Content,
			Timestamp: nn.Timestamp,
			CreatedAt: now(),
		}
		t.videoNotes = appendTo(t.videoNotes, note)
		t.touch(KeyVideoNotes)
		return nil
	})
	if err != nil {
		return VideoNote{}, err
	}
	return note, nil
}

// AskAboutVideo answers a question from the video's transcript.
func (svc *Service) AskAboutVideo(ctx context.Context, videoID, question string) (string, error) {
	st := svc.store.snapshot()
	if _, err := authorize(&st); err != nil {
		return "", err
	}
	i, ok := indexOf(st.videoMaterials, func(v VideoMaterial) bool { return v.ID == videoID })
	if !ok {
		return "", ErrNotFound
	}
	if svc.generator == nil {
		return "", ErrNoGenerator
	}
	return svc.generator.AnswerVideoQuestion(ctx, st.videoMaterials[i].Transcript, question)
}
