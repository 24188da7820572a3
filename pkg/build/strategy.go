package build

import (
	"github.com/hashicorp/go-hclog"
)

var (
	log hclog.Logger

	initcallbacks []func()

	factories map[Kind]Factory
)

func init() {
	factories = make(map[Kind]Factory)
	log = hclog.L()
}

// SetLogger injects a logger into this package to allow setting up a
// logger tree.
func SetLogger(l hclog.Logger) {
	log = l.Named("strategy")
}

// ParseKind validates a strategy name.  "docker" is accepted as an
// alias of container.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case None, Chroot, Container:
		return Kind(s), nil
	case "docker":
		return Container, nil
	default:
		return "", NewErrUnknownStrategy(s)
	}
}

// RegisterInitCallback allows a sub pkg to defer initialization until
// after certain very early init has happened such as loading config
// files and configuring loggers.
func RegisterInitCallback(f func()) {
	initcallbacks = append(initcallbacks, f)
}

// DoCallbacks is used to invoke all callbacks and perform phase one
// setup which will register the handlers to the map of factories.
func DoCallbacks() {
	for _, cb := range initcallbacks {
		cb()
	}
}

// RegisterStrategyFactory stores the factory for one of the known
// kinds.  Anything outside the closed set is refused.
func RegisterStrategyFactory(k Kind, f Factory) {
	if _, err := ParseKind(string(k)); err != nil {
		log.Error("Refusing to register unknown strategy", "kind", k)
		return
	}
	factories[k] = f
	log.Debug("Registered strategy", "kind", k)
}

// ConstructStrategy attempts to initialize the requested strategy.
func ConstructStrategy(k Kind, env Env) (Strategy, error) {
	f, ok := factories[k]
	if !ok {
		log.Warn("Tried to initialize with bogus strategy name", "name", k)
		return nil, NewErrUnknownStrategy(string(k))
	}
	return f(log, env)
}
