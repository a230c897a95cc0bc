package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"marlang/config"
	"marlang/metrics"
	"marlang/models"
)

// Trigger identifies what invoked a run. Only scheduled runs are gated on
// the configured hour.
type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
)

// DefaultNotifyTimeout is the publish budget when Options.NotifyTimeout is zero.
const DefaultNotifyTimeout = 10 * time.Second

const (
	ReasonAgentMissing     = "agent missing"
	ReasonDisabled         = "disabled"
	ReasonInvalidSchedule  = "invalid schedule"
	ReasonNotScheduledHour = "not scheduled hour"
	ReasonCooldown         = "cooldown"
	ReasonNoText           = "no text generated"
	ReasonInvalidResponse  = "invalid response"
	ReasonNoImages         = "no images generated"
	ReasonPersistFailed    = "persist failed"
	ReasonLastRunFailed    = "last run update failed"
	ReasonLoadFailed       = "agent load failed"
)

// LastRunField is the dotted path merge-updated after a successful run.
const LastRunField = "scheduledPosting.lastRun"

// Result is the outcome of one run. Skipped is set when a gate
// (missing agent, disabled, hour, cooldown) short-circuited the run.
type Result struct {
	Success bool   `json:"success"`
	PostID  string `json:"postId,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Skipped bool   `json:"skipped,omitempty"`
}

func skipped(reason string) Result { return Result{Reason: reason, Skipped: true} }
func failed(reason string) Result  { return Result{Reason: reason} }

// Deps are the collaborators of a Runner. Agents, Posts and Text are
// required; the rest may be nil.
type Deps struct {
	Agents    AgentStore
	Posts     PostStore
	Text      TextGenerator
	Images    ImageGenerator
	Storage   ObjectStorage
	Pacer     Pacer
	Headlines HeadlineSource
	Notifier  PostNotifier
	AILogs    AILogStore
}

type Options struct {
	AgentID string
	// Cooldown is the minimum interval between successful runs.
	Cooldown time.Duration
	// ImageDelay is slept between consecutive image calls.
	ImageDelay time.Duration
	// NotifyTimeout bounds the post.generated publish. Zero means DefaultNotifyTimeout.
	NotifyTimeout time.Duration
	// TextModel overrides the built-in default when the agent document has no model.
	TextModel  string
	ImageModel string
	// Now and NewKey are replaced in tests.
	Now    func() time.Time
	NewKey func() string
}

type Runner struct {
	agents    AgentStore
	posts     PostStore
	text      TextGenerator
	images    ImageGenerator
	storage   ObjectStorage
	pacer     Pacer
	headlines HeadlineSource
	notifier  PostNotifier
	aiLogs    AILogStore

	agentID    string
	cooldown   time.Duration
	imageDelay time.Duration
	notifyWait time.Duration
	textModel  string
	imageModel string
	now        func() time.Time
	newKey     func() string
}

func NewRunner(deps Deps, opts Options) *Runner {
	r := &Runner{
		agents:     deps.Agents,
		posts:      deps.Posts,
		text:       deps.Text,
		images:     deps.Images,
		storage:    deps.Storage,
		pacer:      deps.Pacer,
		headlines:  deps.Headlines,
		notifier:   deps.Notifier,
		aiLogs:     deps.AILogs,
		agentID:    opts.AgentID,
		cooldown:   opts.Cooldown,
		imageDelay: opts.ImageDelay,
		notifyWait: opts.NotifyTimeout,
		textModel:  opts.TextModel,
		imageModel: opts.ImageModel,
		now:        opts.Now,
		newKey:     opts.NewKey,
	}
	if r.agentID == "" {
		r.agentID = "main"
	}
	if r.notifyWait <= 0 {
		r.notifyWait = DefaultNotifyTimeout
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.newKey == nil {
		r.newKey = func() string { return uuid.NewString() }
	}
	return r
}

// Run executes one end-to-end generation. Expected no-ops and upstream
// generation failures are reported through Result; the returned error is
// non-nil only for storage failures, in which case Result is also failed.
func (r *Runner) Run(ctx context.Context, trigger Trigger) (Result, error) {
	began := time.Now()
	res, err := r.run(ctx, trigger, r.now())

	outcome := "success"
	switch {
	case err != nil:
		outcome = "error"
	case res.Skipped:
		outcome = "skipped"
	case !res.Success:
		outcome = "failed"
	}
	metrics.AgentRunsTotal.WithLabelValues(string(trigger), outcome).Inc()

	fields := config.Fields{
		"trigger":  string(trigger),
		"agent_id": r.agentID,
		"success":  res.Success,
		"duration": time.Since(began).String(),
	}
	if res.PostID != "" {
		fields["post_id"] = res.PostID
	}
	if res.Reason != "" {
		fields["reason"] = res.Reason
	}
	if err != nil {
		fields["error"] = err.Error()
		config.ErrorWithFields("agent run failed", fields)
	} else {
		config.InfoWithFields("agent run finished", fields)
	}
	return res, err
}

func (r *Runner) run(ctx context.Context, trigger Trigger, now time.Time) (Result, error) {
	// 1. 설정 로드 (실행 중 재조회 없음)
	cfg, err := r.agents.GetAgent(ctx, r.agentID)
	if errors.Is(err, ErrAgentNotFound) {
		config.Logger.Warnf("agent document %q does not exist", r.agentID)
		return skipped(ReasonAgentMissing), nil
	}
	if err != nil {
		return failed(ReasonLoadFailed), fmt.Errorf("load agent %s: %w", r.agentID, err)
	}

	// 2~4. 게이트
	if res, ok := r.gate(cfg, trigger, now); !ok {
		return res, nil
	}

	// 5~7. 텍스트 생성 및 검증
	draft, model, res, ok := r.draft(ctx, cfg)
	if !ok {
		return res, nil
	}

	// 8~9. 썸네일
	urls, descriptions := []string{}, []string{}
	if cfg.ThumbnailGenConfig.IsEnabled() {
		attempts := r.generateImages(ctx, cfg, draft)
		urls, descriptions = collectImages(attempts)
		config.Logger.Infof("image generation complete: %d/%d images", len(urls), len(attempts))
		if len(urls) == 0 {
			return failed(ReasonNoImages), nil
		}
	}

	// 10. 포스트 저장
	post := r.assemble(ctx, cfg, draft, model, urls, descriptions, now)
	postID, err := r.posts.CreatePost(ctx, post)
	if err != nil {
		return failed(ReasonPersistFailed), fmt.Errorf("create post: %w", err)
	}
	post.ID = postID
	config.Logger.Infof("post saved: id=%s title=%q images=%d", postID, post.Title, len(urls))

	// 11. lastRun 갱신 (병합 업데이트, 버전 체크 없음)
	if err := r.agents.MergeUpdateAgent(ctx, r.agentID, map[string]any{LastRunField: now}); err != nil {
		return Result{PostID: postID, Reason: ReasonLastRunFailed}, fmt.Errorf("update %s: %w", LastRunField, err)
	}

	r.notify(ctx, post)

	return Result{Success: true, PostID: postID}, nil
}

// notify publishes post.generated. The post is already saved, so a slow or
// unreachable broker only costs notifyWait and a warning.
func (r *Runner) notify(ctx context.Context, post *models.Post) {
	if r.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, r.notifyWait)
	defer cancel()
	if err := r.notifier.NotifyPostGenerated(ctx, post); err != nil {
		config.Logger.Warnf("failed to publish post generated event for %s: %v", post.ID, err)
	}
}

// gate applies the enablement, hour and cooldown checks.
func (r *Runner) gate(cfg *models.AgentConfig, trigger Trigger, now time.Time) (Result, bool) {
	sp := cfg.ScheduledPosting
	if !sp.Enabled {
		config.Logger.Info("scheduled posting is disabled")
		return skipped(ReasonDisabled), false
	}

	if trigger == TriggerScheduled {
		hour, ok := sp.ScheduledHour()
		if !ok {
			config.Logger.Warnf("cannot interpret schedule %v", sp.Schedule)
			return skipped(ReasonInvalidSchedule), false
		}
		if current := now.UTC().Hour(); current != hour {
			config.Logger.Debugf("time check: %d != %d", current, hour)
			return skipped(ReasonNotScheduledHour), false
		}
	}

	if sp.LastRun != nil {
		since := now.Sub(*sp.LastRun)
		if since < r.cooldown {
			config.Logger.Infof("already ran %s ago (cooldown %s)", since.Round(time.Second), r.cooldown)
			return skipped(ReasonCooldown), false
		}
	}
	return Result{}, true
}

func (r *Runner) modelFor(cfg *models.AgentConfig) string {
	if cfg.ModelConfig.Model == "" && r.textModel != "" {
		return r.textModel
	}
	return cfg.ModelConfig.ModelOrDefault()
}

func (r *Runner) draft(ctx context.Context, cfg *models.AgentConfig) (Draft, string, Result, bool) {
	var headlines []string
	if r.headlines != nil {
		hs, err := r.headlines.Headlines(ctx)
		if err != nil {
			config.Logger.Warnf("inspiration feeds unavailable: %v", err)
		}
		headlines = hs
	}

	prompt := BuildPrompt(cfg, headlines)
	model := r.modelFor(cfg)
	opts := TextOptions{
		Model:           model,
		Temperature:     cfg.ModelConfig.TemperatureOrDefault(),
		MaxOutputTokens: cfg.ModelConfig.MaxOutputTokensOrDefault(),
		Schema:          DraftSchema,
	}

	requestedAt := r.now()
	started := time.Now()
	out, err := r.text.GenerateText(ctx, prompt, opts)
	metrics.TextGenerationDuration.WithLabelValues(model).Observe(time.Since(started).Seconds())
	r.recordTextCall(ctx, model, prompt, out, err, requestedAt, time.Since(started))

	if err != nil {
		config.Logger.Errorf("text generation failed: %v", err)
		return Draft{}, model, failed(ReasonNoText), false
	}
	if out == nil || strings.TrimSpace(out.Text) == "" {
		config.Logger.Error("no text generated from model")
		return Draft{}, model, failed(ReasonNoText), false
	}
	config.Logger.Infof("text generated - model:%s version:%s input:%d output:%d total:%d",
		model, out.ModelVersion, out.Usage.InputTokens, out.Usage.OutputTokens, out.Usage.TotalTokens)

	d, err := ParseDraft(out.Text)
	if err != nil {
		config.Logger.Errorf("generated text rejected: %v", err)
		config.Logger.Debugf("raw text: %s", out.Text)
		return Draft{}, model, failed(ReasonInvalidResponse), false
	}
	config.Logger.Infof("post data validated: title=%q tags=%d ideas=%d", d.Title, len(d.Tags), len(d.ThumbnailIdeas))
	return d, model, Result{}, true
}

func (r *Runner) assemble(ctx context.Context, cfg *models.AgentConfig, d Draft, model string, urls, descriptions []string, now time.Time) *models.Post {
	excerpt := d.Excerpt
	if excerpt == "" {
		excerpt = DeriveExcerpt(d.Content)
	}
	return &models.Post{
		Title:         d.Title,
		Slug:          r.uniqueSlug(ctx, d.Title),
		Content:       d.Content,
		Excerpt:       excerpt,
		Tags:          d.Tags,
		Thumbnails:    urls,
		Status:        models.PostStatusPublished,
		PublishedAt:   now,
		CreatedAt:     now,
		UpdatedAt:     now,
		Author:        cfg.Name,
		AuthorID:      r.agentID,
		GeneratedByAI: true,
		AIModelUsed:   model,
		Metadata: models.PostMetadata{
			ReadingTime:           ReadingTime(d.Content),
			ImageCount:            len(urls),
			ThumbnailDescriptions: descriptions,
			MetaDescription:       d.MetaDescription,
			Keywords:              d.Tags,
		},
	}
}

// uniqueSlug derives a slug from title and appends a short random suffix
// when it is already taken. Titles without latin alphanumerics get no slug.
func (r *Runner) uniqueSlug(ctx context.Context, title string) string {
	slug := Slugify(title)
	if slug == "" {
		return ""
	}
	exists, err := r.posts.SlugExists(ctx, slug)
	if err != nil {
		config.Logger.Warnf("slug lookup failed for %q: %v", slug, err)
	}
	if exists || err != nil {
		suffix := strings.ReplaceAll(r.newKey(), "-", "")
		if len(suffix) > 6 {
			suffix = suffix[:6]
		}
		slug = slug + "-" + suffix
	}
	return slug
}

const logExcerptRunes = 2000

func (r *Runner) recordTextCall(ctx context.Context, model, prompt string, out *TextResult, callErr error, requestedAt time.Time, took time.Duration) {
	if r.aiLogs == nil {
		return
	}
	entry := models.AILog{
		Kind:        models.AILogKindText,
		AgentID:     r.agentID,
		ModelName:   model,
		DurationMs:  took.Milliseconds(),
		InputPrompt: truncate(prompt, logExcerptRunes),
		RequestedAt: requestedAt,
		CompletedAt: requestedAt.Add(took),
	}
	if out != nil {
		entry.ModelVersion = out.ModelVersion
		entry.InputTokens = out.Usage.InputTokens
		entry.OutputTokens = out.Usage.OutputTokens
		entry.TotalTokens = out.Usage.TotalTokens
		entry.OutputResponse = truncate(out.Text, logExcerptRunes)
	}
	if callErr != nil {
		entry.ErrorMessage = callErr.Error()
	}
	if err := r.aiLogs.InsertAILog(ctx, entry); err != nil {
		config.Logger.Warnf("failed to insert ai log: %v", err)
	}
}

// truncate returns s truncated to max runes.
func truncate(s string, max int) string {
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	return string(rs[:max])
}
