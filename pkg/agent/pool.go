package agent

import (
	"fmt"

	srvErrors "github.com/mptyl/thoth-sqlgen/pkg/errors"
	"github.com/mptyl/thoth-sqlgen/pkg/orchestrator/level"
)

// Pool is the workspace's configured set of agents, keyed by Role. Slots
// left unset (nil) are a workspace's way of saying that functionality was
// never configured; some slots are structurally required and their
// absence is a CRITICAL_ERROR, others degrade.
type Pool struct {
	agents map[Role]*Agent
}

// NewPool builds an empty Pool; callers populate it with Set.
func NewPool() *Pool {
	return &Pool{agents: make(map[Role]*Agent)}
}

// Set registers agent under its own Role.
func (p *Pool) Set(a *Agent) {
	p.agents[a.Role] = a
}

// Get returns the agent registered for role, or nil if unconfigured.
func (p *Pool) Get(role Role) *Agent {
	return p.agents[role]
}

// RequireValidator returns the question validator agent or a CRITICAL
// ConfigurationError — validation is structurally required.
func (p *Pool) RequireValidator() (*Agent, error) {
	a := p.Get(RoleQuestionValidator)
	if a == nil {
		return nil, srvErrors.NewValidatorUnavailableError()
	}
	return a, nil
}

// RequireKeywordExtraction returns the keyword extraction agent or a
// CRITICAL ConfigurationError.
func (p *Pool) RequireKeywordExtraction() (*Agent, error) {
	a := p.Get(RoleKeywordExtraction)
	if a == nil {
		return nil, srvErrors.NewKeywordAgentMissingError()
	}
	return a, nil
}

// sqlAgentRole maps a functionality level to its agent slot.
func sqlAgentRole(lvl level.Level) Role {
	switch lvl {
	case level.Basic:
		return RoleSQLBasic
	case level.Advanced:
		return RoleSQLAdvanced
	case level.Expert:
		return RoleSQLExpert
	default:
		return ""
	}
}

// RequireSQLAgent returns the SQL-generation agent configured for lvl, or
// a CRITICAL ConfigurationError if that level's slot is unconfigured.
func (p *Pool) RequireSQLAgent(lvl level.Level) (*Agent, error) {
	role := sqlAgentRole(lvl)
	if role == "" {
		return nil, fmt.Errorf("agent: unknown functionality level %q", lvl)
	}
	a := p.Get(role)
	if a == nil {
		return nil, srvErrors.NewAgentMissingForLevelError(string(lvl))
	}
	return a, nil
}

// TestGenerators returns every configured test_gen_agent_N, in role order.
func (p *Pool) TestGenerators() []*Agent {
	var out []*Agent
	for _, role := range []Role{RoleTestGen1, RoleTestGen2} {
		if a := p.Get(role); a != nil {
			out = append(out, a)
		}
	}
	return out
}
