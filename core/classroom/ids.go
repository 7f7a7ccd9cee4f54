package classroom

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var NowFunc = time.Now // mockable

func now() time.Time { return NowFunc().UTC() }

// today returns the current UTC calendar date as YYYY-MM-DD.
func today() string { return now().Format(dateLayout) }

const dateLayout = "2006-01-02"

// newID builds "{kind}-{unixMillis}-{random}".
// The random part keeps ids unique when two records of a kind are created in the same millisecond.
func newID(kind string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%d-%s", kind, now().UnixMilli(), suffix)
}

// attendanceID is deterministic: at most one record exists per (course, student, date).
func attendanceID(studentID, courseID, date string) string {
	return fmt.Sprintf("att-%s-%s-%s", studentID, courseID, date)
}
