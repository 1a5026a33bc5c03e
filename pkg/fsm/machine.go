// Package fsm implements the recipe batch import workflow.
// It downloads a batch document from S3, validates it, and stores its recipes,
// using the superfly/fsm library for durable, resumable transitions.
package fsm

import (
	"context"

	"github.com/foodrandom/recipebox/pkg/errors"
	"github.com/superfly/fsm"
)

// Register registers the recipe import FSM
func (m *Machine) Register(ctx context.Context, manager *fsm.Manager) (fsm.Start[ImportRequest, ImportResponse], fsm.Resume, error) {
	start, resume, err := fsm.Register[ImportRequest, ImportResponse](manager, "recipe-import").
		Start(StateFetch, m.handleFetch).
		To(StateValidate, m.handleValidate).
		To(StateStore, m.handleStore).
		To(StateComplete, m.handleComplete).
		End(StateFailed).
		Build(ctx)

	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to register FSM")
	}

	return start, resume, nil
}
