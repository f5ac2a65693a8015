package buddy

import (
	"fmt"
	"sync"
)

// recordingEnvironment is a test-only Environment: it counts lock
// acquisitions and buffers Printf lines so tests can assert on them
// without scraping stderr. Panic behaves like the production
// Environment (it panics with a *PanicError) so test code uses the
// standard recover()/require.Panics pattern rather than a second
// error-reporting path.
type recordingEnvironment struct {
	mu sync.Mutex

	locks int
	lines []string
}

func newRecordingEnvironment() *recordingEnvironment {
	return &recordingEnvironment{}
}

func (e *recordingEnvironment) Lock() {
	e.mu.Lock()
	e.locks++
}

func (e *recordingEnvironment) Unlock() {
	e.mu.Unlock()
}

func (e *recordingEnvironment) Panic(reason PanicReason, format string, args ...any) {
	panic(&PanicError{Reason: reason, Message: fmt.Sprintf(format, args...)})
}

func (e *recordingEnvironment) Printf(format string, args ...any) {
	e.lines = append(e.lines, fmt.Sprintf(format, args...))
}

func (e *recordingEnvironment) lockCount() int {
	return e.locks
}

func (e *recordingEnvironment) printed() []string {
	return e.lines
}
