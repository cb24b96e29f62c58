package ocr

import (
	"context"
	"fmt"
	"sync"
)

var (
	defaultMu     sync.RWMutex
	defaultEngine Engine = Unavailable("no OCR backend registered")
	registry             = map[string]Engine{}
)

// Register makes engine available under name for Lookup. Backends register
// themselves from init.
func Register(name string, engine Engine) {
	if engine == nil {
		panic("ocr: Register engine is nil")
	}
	defaultMu.Lock()
	registry[name] = engine
	defaultMu.Unlock()
}

// Lookup returns the engine registered under name. Unknown names yield the
// unavailable null engine.
func Lookup(name string) Engine {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	if e, ok := registry[name]; ok {
		return e
	}
	return Unavailable(fmt.Sprintf("backend %q not registered", name))
}

// Registered lists the registered backend names in no particular order.
func Registered() []string {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// DefaultEngine returns the process-wide default OCR engine. Without a
// registered backend it is the unavailable null engine.
func DefaultEngine() Engine {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultEngine
}

// SetDefaultEngine sets the process-wide default OCR engine. Backends call it
// from init so that a blank import is enough to enable them.
func SetDefaultEngine(engine Engine) {
	if engine == nil {
		engine = Unavailable("no OCR backend registered")
	}
	defaultMu.Lock()
	defaultEngine = engine
	defaultMu.Unlock()
}

// Probe checks whether engine can run. Engines that do not implement Prober
// are assumed to be usable.
func Probe(ctx context.Context, engine Engine) (Capabilities, error) {
	if engine == nil {
		return Capabilities{}, fmt.Errorf("%w: no engine configured", ErrUnavailable)
	}
	if p, ok := engine.(Prober); ok {
		caps, err := p.Probe(ctx)
		if caps.Engine == "" {
			caps.Engine = engine.Name()
		}
		return caps, err
	}
	return Capabilities{Engine: engine.Name()}, nil
}

// Unavailable returns a null engine that fails every call with
// ErrUnavailable, carrying reason in the error text.
func Unavailable(reason string) Engine {
	return unavailableEngine{reason: reason}
}

type unavailableEngine struct {
	reason string
}

func (u unavailableEngine) Name() string { return "unavailable" }

func (u unavailableEngine) Recognize(_ context.Context, input Input) (Result, error) {
	return Result{InputID: input.ID}, u.err()
}

func (u unavailableEngine) Probe(context.Context) (Capabilities, error) {
	return Capabilities{Engine: u.Name()}, u.err()
}

func (u unavailableEngine) err() error {
	if u.reason == "" {
		return ErrUnavailable
	}
	return fmt.Errorf("%w: %s", ErrUnavailable, u.reason)
}
