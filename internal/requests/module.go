// Package requests provides the request intake and business-rules module.
package requests

import (
	"requesthub_backend/internal/events"
	apphttp "requesthub_backend/internal/http"
	"requesthub_backend/internal/requests/archival"
	"requesthub_backend/internal/requests/assignment"
	"requesthub_backend/internal/requests/handler"
	"requesthub_backend/internal/requests/merging"
	"requesthub_backend/internal/requests/orchestration"
	"requesthub_backend/internal/requests/ports"
	"requesthub_backend/internal/requests/pricing"
	"requesthub_backend/internal/requests/repository"
	"requesthub_backend/internal/requests/scheduling"
	"requesthub_backend/internal/requests/scoring"
	"requesthub_backend/internal/requests/status"
	"requesthub_backend/platform/config"
	"requesthub_backend/platform/logger"
	"requesthub_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ModuleConfig combines the config interfaces the request engines consume.
type ModuleConfig interface {
	config.AssignmentConfig
	config.BusinessHoursConfig
}

// Deps bundles the external collaborators for NewModule. Reminders,
// Contacts, and Props may be nil; the affected behavior degrades rather
// than failing.
type Deps struct {
	Pool       *pgxpool.Pool
	Bus        events.Bus
	Reminders  ports.ReminderScheduler
	Candidates ports.CandidateProvider
	Contacts   ports.ContactValidator
	Props      ports.PropertyValidator
	Validator  *validator.Validator
	Config     ModuleConfig
	Log        *logger.Logger
}

// Module represents the requests domain module.
type Module struct {
	handler      *handler.Handler
	orchestrator *orchestration.Orchestrator
	repo         *repository.Repository
}

// NewModule creates the requests module with all engines wired.
func NewModule(deps Deps) *Module {
	repo := repository.New(deps.Pool)

	followUps := scheduling.NewService(repo, deps.Reminders, deps.Bus, deps.Log)
	scoringSvc := scoring.NewService(repo, deps.Config, deps.Log)
	assigningSvc := assignment.NewService(repo, deps.Candidates, followUps, deps.Bus, deps.Config, deps.Log)
	pricingSvc := pricing.NewService(repo, followUps, deps.Log)
	statusValidator := status.NewValidator(repo, deps.Config)
	mergingSvc := merging.NewService(repo, deps.Bus, deps.Log)
	archivalSvc := archival.NewService(repo, deps.Bus, deps.Log)

	orchestrator := orchestration.NewOrchestrator(orchestration.OrchestratorDeps{
		Repo:      repo,
		Scoring:   scoringSvc,
		Assigning: assigningSvc,
		Pricing:   pricingSvc,
		Status:    statusValidator,
		Merging:   mergingSvc,
		Archival:  archivalSvc,
		FollowUps: followUps,
		Contacts:  deps.Contacts,
		Props:     deps.Props,
		Bus:       deps.Bus,
		Log:       deps.Log,
	})

	return &Module{
		handler:      handler.New(orchestrator, deps.Validator),
		orchestrator: orchestrator,
		repo:         repo,
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "requests"
}

// Orchestrator exposes the request operations for non-HTTP entry points
// (CLI tools, workers).
func (m *Module) Orchestrator() *orchestration.Orchestrator {
	return m.orchestrator
}

// Repository exposes the store for adapters that read agents or requests.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/requests"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
