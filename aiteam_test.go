package aiteam

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onlyoneaman/ai-team/config"
	"github.com/onlyoneaman/ai-team/core"
	"github.com/onlyoneaman/ai-team/runtime"
	"github.com/onlyoneaman/ai-team/session"
	"github.com/onlyoneaman/ai-team/workforce"
)

func testData() *config.CompanyData {
	return &config.CompanyData{
		Company: config.Company{
			Name:       "Solaris Energy",
			Mission:    "Affordable solar",
			BrandVoice: "warm",
		},
		MarketResearch: map[string]any{"trends": []any{"storage"}},
	}
}

func TestNew_BuildsDefaultTeam(t *testing.T) {
	team, err := New(testData(), &runtime.ScriptedRuntime{Output: "ok"})
	require.NoError(t, err)
	assert.Equal(t, workforce.RoleFounder, team.Workforce().Hierarchy.Entry())
}

func TestTeam_Run(t *testing.T) {
	rt := &runtime.ScriptedRuntime{
		Steps: []runtime.ScriptStep{
			{Transfer: &runtime.ScriptTransfer{
				To:       workforce.RoleMarketResearcher,
				Envelope: core.NewEnvelope(core.KindTask, map[string]any{"message": "research"}),
			}},
			{Transfer: &runtime.ScriptTransfer{
				To:       workforce.RoleFounder,
				Envelope: core.NewEnvelope(core.KindResult, map[string]any{"message": "findings"}),
			}},
		},
		Output: "Here is the research.",
	}
	team, err := New(testData(), rt)
	require.NoError(t, err)

	result, err := team.Run(context.Background(), "research trends")
	require.NoError(t, err)
	assert.Equal(t, session.StateCompleted, result.State)
	assert.Equal(t, "Here is the research.", result.Response)
	assert.Contains(t, result.RolesInvolved, workforce.RoleMarketResearcher)
}

func TestTeam_RunStream(t *testing.T) {
	team, err := New(testData(), &runtime.ScriptedRuntime{Output: "streamed"})
	require.NoError(t, err)

	s, events := team.RunStream(context.Background(), "hello")
	var types []core.EventType
	for ev := range events {
		types = append(types, ev.Type)
	}
	assert.Equal(t, core.EventStart, types[0])
	assert.Contains(t, types, core.EventComplete)
	assert.Equal(t, session.StateCompleted, s.State())
}

func TestTeam_SessionsAreSingleUse(t *testing.T) {
	team, err := New(testData(), &runtime.ScriptedRuntime{Output: "ok"})
	require.NoError(t, err)

	first := team.NewSession()
	second := team.NewSession()
	assert.NotEqual(t, first.ID(), second.ID())
}
