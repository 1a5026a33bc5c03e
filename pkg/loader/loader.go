package loader

import (
	"context"
	"log/slog"

	"github.com/foodrandom/recipebox/pkg/db"
	"github.com/google/uuid"
)

// Finder looks up a single recipe. A nil recipe with a nil error means not found.
type Finder interface {
	FindByID(ctx context.Context, id int64) (*db.Recipe, error)
}

// Outcome classifies a load result
type Outcome int

const (
	OutcomeFound Outcome = iota
	OutcomeNotFound
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "failed"
	}
}

// Result is what a load delivers: a recipe, an absence, or an error
type Result struct {
	ID     int64
	Recipe *db.Recipe
	Err    error
}

// Outcome reports which of the three results r holds
func (r Result) Outcome() Outcome {
	switch {
	case r.Err != nil:
		return OutcomeFailed
	case r.Recipe == nil:
		return OutcomeNotFound
	default:
		return OutcomeFound
	}
}

// Loader reads recipes in the background and delivers them on a Looper
type Loader struct {
	finder Finder
	looper *Looper
}

// New creates a loader that reads through finder and delivers on looper
func New(finder Finder, looper *Looper) *Loader {
	return &Loader{finder: finder, looper: looper}
}

// Load reads recipe id on a new goroutine and calls deliver with the result on the
// looper. Failures are delivered as they are, without retry. If scope is closed
// before the result arrives, deliver is never called.
func (l *Loader) Load(scope *Scope, id int64, deliver func(Result)) *Task {
	loadID := uuid.NewString()
	slog.Info("loader_load_start", "load_id", loadID, "recipe_id", id)

	return Go(l.looper, scope, func(ctx context.Context) Result {
		rec, err := l.finder.FindByID(ctx, id)
		result := Result{ID: id, Recipe: rec, Err: err}
		if err != nil {
			slog.Error("loader_load_failed", "load_id", loadID, "recipe_id", id, "error", err)
		} else {
			slog.Info("loader_load_complete", "load_id", loadID, "recipe_id", id, "outcome", result.Outcome().String())
		}
		return result
	}, deliver)
}
