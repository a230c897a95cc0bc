package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"marlang/agent"
	"marlang/cmd/api/dto"
	"marlang/cmd/api/trace"
	"marlang/config"
	"marlang/models"
	"marlang/repositories"
)

var ErrInvalidAgentConfig = errors.New("invalid agent config")

// AgentRunner 는 *agent.Runner 가 구현한다.
type AgentRunner interface {
	Run(ctx context.Context, trigger agent.Trigger) (agent.Result, error)
}

// patchableFields 는 PATCH /agent 가 건드릴 수 있는 최상위 필드다.
var patchableFields = map[string]bool{
	"name":               true,
	"bio":                true,
	"personality":        true,
	"modelConfig":        true,
	"scheduledPosting":   true,
	"thumbnailGenConfig": true,
}

// timeFields 는 JSON 문자열로 들어오면 time.Time 으로 바꿔 저장할 경로다.
var timeFields = map[string]bool{
	agent.LastRunField: true,
}

// AgentService 는 페르소나 문서 관리와 수동 실행을 담당한다.
type AgentService struct {
	agents  repositories.AgentStore
	runner  AgentRunner
	agentID string
	now     func() time.Time
}

func NewAgentService(agents repositories.AgentStore, runner AgentRunner, agentID string) *AgentService {
	if agentID == "" {
		agentID = "main"
	}
	return &AgentService{agents: agents, runner: runner, agentID: agentID, now: time.Now}
}

func (s *AgentService) Get(ctx context.Context) (*models.AgentConfig, error) {
	return s.agents.GetAgent(ctx, s.agentID)
}

// Replace writes cfg as the whole agent document, creating it if needed.
func (s *AgentService) Replace(ctx context.Context, cfg models.AgentConfig) (*models.AgentConfig, error) {
	if err := validateAgent(cfg); err != nil {
		return nil, err
	}
	cfg.ID = s.agentID
	cfg.UpdatedAt = s.now().UTC()
	if err := s.agents.PutAgent(ctx, &cfg); err != nil {
		return nil, err
	}
	return s.agents.GetAgent(ctx, s.agentID)
}

// Patch merges body into the agent document. Nested objects are flattened to
// dotted paths, so {"scheduledPosting":{"enabled":false}} leaves the schedule
// and lastRun untouched.
func (s *AgentService) Patch(ctx context.Context, body map[string]any) (*models.AgentConfig, error) {
	fields := map[string]any{}
	for k, v := range body {
		top := strings.SplitN(k, ".", 2)[0]
		if !patchableFields[top] {
			return nil, fmt.Errorf("%w: field %q cannot be updated", ErrInvalidAgentConfig, k)
		}
		flattenPatch(k, v, fields)
	}
	if len(fields) == 0 {
		return nil, ErrEmptyUpdate
	}
	for path := range fields {
		if !timeFields[path] {
			continue
		}
		if str, ok := fields[path].(string); ok {
			t, err := time.Parse(time.RFC3339, str)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidAgentConfig, path, err)
			}
			fields[path] = t.UTC()
		}
	}
	fields["updatedAt"] = s.now().UTC()

	if err := s.agents.MergeUpdateAgent(ctx, s.agentID, fields); err != nil {
		return nil, err
	}
	cfg, err := s.agents.GetAgent(ctx, s.agentID)
	if err != nil {
		return nil, err
	}
	if err := validateAgent(*cfg); err != nil {
		config.Logger.Warnf("agent %s saved with invalid config after patch: %v", s.agentID, err)
	}
	return cfg, nil
}

// Run triggers one manual run and maps it to a response DTO.
func (s *AgentService) Run(ctx context.Context) (dto.RunResultDTO, error) {
	trace.NextSpan(ctx)
	config.InfoWithFields("manual agent run requested", trace.Fields(ctx, config.Fields{
		"agent_id": s.agentID,
	}))

	res, err := s.runner.Run(ctx, agent.TriggerManual)
	out := dto.RunResultDTO{
		Success: res.Success,
		PostID:  res.PostID,
		Reason:  res.Reason,
		Skipped: res.Skipped,
	}
	if err != nil {
		out.Error = err.Error()
	}
	return out, err
}

// flattenPatch turns nested objects into dotted paths. Arrays and scalars are
// leaves, and so is an empty object.
func flattenPatch(prefix string, v any, out map[string]any) {
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		out[prefix] = v
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		flattenPatch(prefix+"."+k, m[k], out)
	}
}

func validateAgent(cfg models.AgentConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidAgentConfig)
	}
	if cfg.ScheduledPosting.Enabled && cfg.ScheduledPosting.Schedule != nil {
		if _, ok := cfg.ScheduledPosting.ScheduledHour(); !ok {
			return fmt.Errorf("%w: schedule %v is not an hour of day", ErrInvalidAgentConfig, cfg.ScheduledPosting.Schedule)
		}
	}
	if t := cfg.ThumbnailGenConfig; t != nil && t.Count < 0 {
		return fmt.Errorf("%w: thumbnail count must not be negative", ErrInvalidAgentConfig)
	}
	return nil
}
