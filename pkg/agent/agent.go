// Package agent implements the pool of typed prompt templates: each agent
// binds a text/template prompt, an llm.Client and a result schema
// together, and the pool diversifies SQL-candidate agents across
// generation method and temperature band.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/mptyl/thoth-sqlgen/pkg/llm"
)

// Role names the structural slot an agent fills in the pool.
type Role string

const (
	RoleQuestionValidator  Role = "question_validator_agent"
	RoleQuestionTranslator Role = "question_translator_agent"
	RoleKeywordExtraction  Role = "keyword_extraction_agent"
	RoleSQLBasic           Role = "sql_basic_agent"
	RoleSQLAdvanced        Role = "sql_advanced_agent"
	RoleSQLExpert          Role = "sql_expert_agent"
	RoleTestGen1           Role = "test_gen_agent_1"
	RoleTestGen2           Role = "test_gen_agent_2"
	RoleTestReducer        Role = "test_reducer_agent"
	RoleTestEvaluator      Role = "test_evaluator_agent"
	RoleSQLExplainer       Role = "sql_explainer_agent"
	RoleAskHuman           Role = "ask_human_agent"
)

// Method is a SQL-generation reasoning strategy; candidates round-robin
// through these as they're generated.
type Method string

const (
	MethodQueryPlan        Method = "query_plan"
	MethodStepByStep       Method = "step_by_step"
	MethodDivideAndConquer Method = "divide_and_conquer"
)

var methodRotation = []Method{MethodQueryPlan, MethodStepByStep, MethodDivideAndConquer}

// temperatureBands are the three round-robin temperature groups;
// MethodForCandidate/TemperatureForCandidate derive both from the same
// candidate index so that method and temperature rotate in lockstep.
var temperatureBands = [3][3]float64{
	{0.1, 0.2, 0.3},
	{0.5, 0.6, 0.7},
	{0.8, 0.9, 1.0},
}

// MethodForCandidate returns the generation method for the i-th (0-based)
// SQL candidate, cycling through methodRotation.
func MethodForCandidate(i int) Method {
	return methodRotation[i%len(methodRotation)]
}

// TemperatureForCandidate returns the diversified temperature for the i-th
// (0-based) SQL candidate out of n total candidates. For n == 1 the
// temperature is fixed at 0.5.
func TemperatureForCandidate(i, n int) float64 {
	if n <= 1 {
		return 0.5
	}
	band := temperatureBands[i%len(temperatureBands)]
	return band[(i/len(temperatureBands))%len(band)]
}

// Agent binds a prompt template, an LLM client and a JSON result schema
// together.
type Agent struct {
	Role     Role
	Client   llm.Client
	Template *template.Template

	// Schema is an empty value of the expected JSON result shape. Run does
	// not read it; callers decode Run's output with Decode into their own
	// target value.
	Schema any
}

// New compiles promptText under name and binds it to client.
func New(role Role, client llm.Client, promptText string, schema any) (*Agent, error) {
	tmpl, err := template.New(string(role)).Parse(promptText)
	if err != nil {
		return nil, fmt.Errorf("agent %s: parse template: %w", role, err)
	}
	return &Agent{Role: role, Client: client, Template: tmpl, Schema: schema}, nil
}

// Render executes the agent's prompt template against vars.
func (a *Agent) Render(vars any) (string, error) {
	var buf bytes.Buffer
	if err := a.Template.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("agent %s: render template: %w", a.Role, err)
	}
	return buf.String(), nil
}

// Run renders the prompt and calls the model. It returns the raw
// llm.Response, so callers can still inspect usage/latency, together with
// the response text as bytes, undecoded; callers pass those bytes to
// Decode.
func (a *Agent) Run(ctx context.Context, vars any, temperature float64, maxTokens int) (llm.Response, []byte, error) {
	prompt, err := a.Render(vars)
	if err != nil {
		return llm.Response{}, nil, err
	}

	resp, err := a.Client.Generate(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: prompt},
		},
		Temperature: &temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return llm.Response{}, nil, err
	}
	return resp, []byte(resp.Content), nil
}

// Decode unmarshals raw JSON text into dst, typically a pointer to the
// agent's declared result shape.
func Decode(raw []byte, dst any) error {
	return json.Unmarshal(raw, dst)
}
