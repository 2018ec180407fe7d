package compute

import (
	"fmt"
	"sort"
	"sync"

	"github.com/nicholaskarlsen/mdcouple/internal/tools"
	"github.com/nicholaskarlsen/mdcouple/internal/worker"
)

// Params carries the evaluator settings a factory may use. Factories
// ignore fields that do not apply to their kind.
type Params struct {
	Command []string
	WorkDir string
	Runner  tools.CommandRunner
	Epsilon float64
	Sigma   float64
	Cutoff  float64
}

// Factory builds an evaluator from its settings.
type Factory func(p Params) (worker.Evaluator, error)

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	registry[kind] = f
}

func Lookup(kind string) (Factory, bool) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := registry[kind]
	return f, ok
}

func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func init() {
	Register("lj", func(p Params) (worker.Evaluator, error) {
		lj := DefaultLennardJones()
		if p.Epsilon > 0 {
			lj.Epsilon = p.Epsilon
		}
		if p.Sigma > 0 {
			lj.Sigma = p.Sigma
		}
		if p.Cutoff > 0 {
			lj.Cutoff = p.Cutoff
		}
		return lj, nil
	})
	Register("exec", func(p Params) (worker.Evaluator, error) {
		if len(p.Command) == 0 {
			return nil, fmt.Errorf("compute: exec evaluator requires a command")
		}
		return ExternalEvaluator{
			Command: p.Command,
			WorkDir: p.WorkDir,
			Runner:  p.Runner,
		}, nil
	})
}
