package main

import (
	"github.com/hibiken/asynq"

	"researchequals-backend/internal/domains/publication/job"
	"researchequals-backend/internal/shared"
	"researchequals-backend/pkg/container"
)

// HandlerRegistry maps task types to their handlers.
type HandlerRegistry struct {
	publication *job.Handler
}

func NewHandlerRegistry(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		publication: job.NewHandler(c.PublishService),
	}
}

// RegisterHandlers wires every task type into the mux.
func (r *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeIndexResync, r.publication.HandleIndexResync)
	mux.HandleFunc(shared.TypeIndexReconcile, r.publication.HandleIndexReconcile)
}
