// Package adapters bridges the request engines' collaborator ports to
// concrete infrastructure.
package adapters

import (
	"context"
	"fmt"

	"requesthub_backend/internal/requests/ports"
	"requesthub_backend/internal/requests/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Workload counts are one query per agent; cap the fan-out so a large
// directory does not exhaust the pool.
const workloadQueryConcurrency = 8

// AgentCandidateProvider supplies assignment candidates from the agent
// directory, with workload derived from active assignments.
type AgentCandidateProvider struct {
	agents repository.AgentReader
}

func NewAgentCandidateProvider(agents repository.AgentReader) *AgentCandidateProvider {
	return &AgentCandidateProvider{agents: agents}
}

func (p *AgentCandidateProvider) Candidates(ctx context.Context) ([]ports.Candidate, error) {
	agents, err := p.agents.ListAvailableAgents(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]ports.Candidate, len(agents))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workloadQueryConcurrency)
	for i, agent := range agents {
		g.Go(func() error {
			workload, err := p.agents.CountActiveAssignments(gctx, agent.ID)
			if err != nil {
				return err
			}
			candidates[i] = toCandidate(agent, workload)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return candidates, nil
}

func (p *AgentCandidateProvider) CandidateByID(ctx context.Context, id uuid.UUID) (ports.Candidate, error) {
	agent, err := p.agents.GetAgentByID(ctx, id)
	if err != nil {
		return ports.Candidate{}, err
	}
	if !agent.Available {
		return ports.Candidate{}, fmt.Errorf("agent %s is not available", id)
	}

	workload, err := p.agents.CountActiveAssignments(ctx, id)
	if err != nil {
		return ports.Candidate{}, err
	}
	return toCandidate(agent, workload), nil
}

func toCandidate(agent repository.Agent, workload int) ports.Candidate {
	return ports.Candidate{
		ID:           agent.ID,
		Name:         agent.Name,
		Role:         agent.Role,
		Specialties:  agent.Specialties,
		ServiceAreas: agent.ServiceAreas,
		Workload:     workload,
	}
}

// Compile-time check.
var _ ports.CandidateProvider = (*AgentCandidateProvider)(nil)
