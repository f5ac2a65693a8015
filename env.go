package buddy

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// PanicReason names why Free panicked, per §7's memory-safety-violation
// class, so callers (and tests) can pattern-match on the cause instead of
// string-matching the panic message.
type PanicReason int

const (
	ReasonNilPointer PanicReason = iota
	ReasonMisaligned
	ReasonOutOfRange
	ReasonNotAllocated
	ReasonDoubleFree
)

func (r PanicReason) String() string {
	switch r {
	case ReasonNilPointer:
		return "nil pointer"
	case ReasonMisaligned:
		return "misaligned pointer"
	case ReasonOutOfRange:
		return "pointer out of range"
	case ReasonNotAllocated:
		return "pointer not at an allocation boundary"
	case ReasonDoubleFree:
		return "double free"
	default:
		return "unknown"
	}
}

// PanicError is the value Environment.Panic's default implementation
// panics with. Recovering a panic raised by Free and asserting on its
// Reason is the documented way for a test to check *why* Free rejected a
// pointer, without depending on message text.
type PanicError struct {
	Reason  PanicReason
	Message string
}

func (e *PanicError) Error() string { return e.Message }

// Environment is the small set of collaborators the allocator borrows
// from its host rather than implementing itself: the lock discipline
// protecting the critical section, the fatal-error mechanism, and the
// diagnostic output channel. In the original kernel these are a spinlock,
// panic(), and printf(); here they are an interface so the allocator never
// imports sync or log/slog directly and tests can substitute recording
// fakes.
type Environment interface {
	// Lock acquires the allocator's single critical-section lock. Stands
	// in for the kernel spinlock's acquire(), interrupt-masking included
	// by contract (see DESIGN.md for why a hosted Go process can't
	// actually honor that half of the contract).
	Lock()
	// Unlock releases the lock acquired by Lock.
	Unlock()
	// Panic reports a fatal, non-recoverable misuse and does not return
	// to the caller (it must panic, or otherwise abort the calling
	// goroutine, exactly once per call).
	Panic(reason PanicReason, format string, args ...any)
	// Printf emits a single-line diagnostic message. Used only for the
	// resource-exhaustion case (§7 class 2); never for caller-misuse,
	// which is silent by contract.
	Printf(format string, args ...any)
}

// productionEnvironment is the default Environment: a sync.Mutex standing
// in for the spinlock, Go's built-in panic wrapping a *PanicError, and
// log/slog for diagnostics.
type productionEnvironment struct {
	mu     sync.Mutex
	logger *slog.Logger
}

// NewEnvironment returns the default, production Environment: mutex-based
// locking and slog-based diagnostics written to os.Stderr.
func NewEnvironment() Environment {
	return &productionEnvironment{
		logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (e *productionEnvironment) Lock()   { e.mu.Lock() }
func (e *productionEnvironment) Unlock() { e.mu.Unlock() }

func (e *productionEnvironment) Panic(reason PanicReason, format string, args ...any) {
	panic(&PanicError{Reason: reason, Message: fmt.Sprintf(format, args...)})
}

func (e *productionEnvironment) Printf(format string, args ...any) {
	e.logger.Warn(fmt.Sprintf(format, args...))
}
