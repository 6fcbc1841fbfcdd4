package failure

import (
	"errors"
	"fmt"
	"runtime"

	pkgerrors "github.com/pkg/errors"
)

// Named is an error that you can read a name from
type Named interface {
	Name() string
}

// WithStackTrace is an error that you can read a stack trace from
type WithStackTrace interface {
	Stack() string
}

type Failure interface {
	error
	Named
}

type NamedWithStackTrace interface {
	Named
	WithStackTrace
}

type namedWithStackTrace struct {
	name  string
	stack pkgerrors.StackTrace
}

func (n namedWithStackTrace) Name() string {
	return n.name
}

func (n namedWithStackTrace) Stack() string {
	return fmt.Sprintf("%+v", n.stack)
}

// NamedWithCurrentStackTrace captures the stack of the caller of the error
// constructor that invokes it.
func NamedWithCurrentStackTrace(name string) NamedWithStackTrace {
	const depth = 32

	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])

	f := make(pkgerrors.StackTrace, n)
	for i := 0; i < n; i++ {
		f[i] = pkgerrors.Frame(pcs[i])
	}

	return namedWithStackTrace{name, f}
}

// Model is the serializable form of a failure, suitable for returning to a
// remote caller.
type Model struct {
	Name    *string `json:"name,omitempty"`
	Message string  `json:"message"`
	Stack   *string `json:"stack,omitempty"`
}

func (m Model) Error() string {
	return m.Message
}

// FromError builds a [Model] from any error. The name is taken from the first
// error in the chain that is [Named].
func FromError(err error) Model {
	model := Model{Message: err.Error()}
	var named Named
	if errors.As(err, &named) {
		name := named.Name()
		model.Name = &name
	}
	var withStackTrace WithStackTrace
	if errors.As(err, &withStackTrace) {
		stack := withStackTrace.Stack()
		model.Stack = &stack
	}
	return model
}

// NameOf returns the name of the first [Named] error in the chain, or the
// empty string.
func NameOf(err error) string {
	var named Named
	if errors.As(err, &named) {
		return named.Name()
	}
	return ""
}
