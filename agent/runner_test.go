package agent_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marlang/agent"
	"marlang/memstore"
	"marlang/models"
)

var runAt = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

type fakeText struct {
	mu      sync.Mutex
	outputs []string
	err     error
	calls   int
	opts    []agent.TextOptions
	prompts []string
}

func (f *fakeText) GenerateText(ctx context.Context, prompt string, opts agent.TextOptions) (*agent.TextResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.opts = append(f.opts, opts)
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return nil, f.err
	}
	out := f.outputs[0]
	if len(f.outputs) > 1 {
		f.outputs = f.outputs[1:]
	}
	return &agent.TextResult{Text: out, ModelVersion: opts.Model + "-001", Usage: agent.TokenUsage{InputTokens: 10, OutputTokens: 20, TotalTokens: 30}}, nil
}

func (f *fakeText) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeImages fails the calls listed in fail (1-based).
type fakeImages struct {
	mu      sync.Mutex
	fail    map[int]error
	calls   int
	prompts []string
	times   []time.Time
	onCall  func(n int)
}

func (f *fakeImages) GenerateImages(ctx context.Context, prompt string, opts agent.ImageOptions) ([]agent.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.times = append(f.times, time.Now())
	if f.onCall != nil {
		f.onCall(f.calls)
	}
	if err, ok := f.fail[f.calls]; ok {
		return nil, err
	}
	return []agent.Image{{Data: []byte("png"), MIMEType: "image/png"}}, nil
}

type fakeStorage struct {
	mu   sync.Mutex
	keys []string
}

func (f *fakeStorage) Upload(ctx context.Context, data []byte, key, mimeType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	return "https://cdn.test/" + key, nil
}

type fakeNotifier struct {
	posts []*models.Post
	err   error
}

func (f *fakeNotifier) NotifyPostGenerated(ctx context.Context, p *models.Post) error {
	f.posts = append(f.posts, p)
	return f.err
}

// blockingNotifier waits until its context ends, like a producer whose
// broker never acknowledges.
type blockingNotifier struct {
	err error
}

func (b *blockingNotifier) NotifyPostGenerated(ctx context.Context, p *models.Post) error {
	<-ctx.Done()
	b.err = ctx.Err()
	return b.err
}

type stubHeadlines struct {
	lines []string
	err   error
}

func (s stubHeadlines) Headlines(ctx context.Context) ([]string, error) { return s.lines, s.err }

type denyPacer struct{}

func (denyPacer) WaitAndReserve(ctx context.Context) (bool, error) { return false, nil }

type failingLastRun struct {
	*memstore.Store
}

func (failingLastRun) MergeUpdateAgent(ctx context.Context, id string, fields map[string]any) error {
	return errors.New("write conflict")
}

func draftJSON(title string, ideas ...string) string {
	quoted := make([]string, len(ideas))
	for i, v := range ideas {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return fmt.Sprintf(`{"title":%q,"content":"<p>hello world</p>","tags":["a"],"thumbnailIdeas":[%s]}`,
		title, strings.Join(quoted, ","))
}

type harness struct {
	store    *memstore.Store
	text     *fakeText
	images   *fakeImages
	storage  *fakeStorage
	notifier *fakeNotifier
	deps     agent.Deps
	opts     agent.Options
}

func newHarness(t *testing.T, mutate func(*models.AgentConfig)) *harness {
	t.Helper()

	cfg := models.DefaultAgentConfig()
	cfg.ID = "main"
	last := runAt.Add(-8 * time.Hour)
	cfg.ScheduledPosting.LastRun = &last
	cfg.ThumbnailGenConfig.Count = 1
	if mutate != nil {
		mutate(&cfg)
	}

	h := &harness{
		store:    memstore.New(),
		text:     &fakeText{outputs: []string{draftJSON("Yarn Day", "cat in yarn", "cat on roof", "cat at night")}},
		images:   &fakeImages{fail: map[int]error{}},
		storage:  &fakeStorage{},
		notifier: &fakeNotifier{},
	}
	require.NoError(t, h.store.PutAgent(context.Background(), &cfg))

	var n int64
	h.deps = agent.Deps{
		Agents:   h.store,
		Posts:    h.store,
		Text:     h.text,
		Images:   h.images,
		Storage:  h.storage,
		Notifier: h.notifier,
		AILogs:   h.store,
	}
	h.opts = agent.Options{
		AgentID:    "main",
		Cooldown:   time.Hour,
		ImageModel: "imagen-test",
		Now:        func() time.Time { return runAt },
		NewKey: func() string {
			return fmt.Sprintf("key%06d", atomic.AddInt64(&n, 1))
		},
	}
	return h
}

func (h *harness) runner() *agent.Runner {
	return agent.NewRunner(h.deps, h.opts)
}

func (h *harness) agentDoc(t *testing.T) *models.AgentConfig {
	t.Helper()
	cfg, err := h.store.GetAgent(context.Background(), "main")
	require.NoError(t, err)
	return cfg
}

func TestRunScheduledHappyPath(t *testing.T) {
	h := newHarness(t, nil)

	res, err := h.runner().Run(context.Background(), agent.TriggerScheduled)
	require.NoError(t, err)
	require.True(t, res.Success, res.Reason)
	require.NotEmpty(t, res.PostID)

	posts := h.store.Posts()
	require.Len(t, posts, 1)
	p := posts[0]
	assert.Equal(t, res.PostID, p.ID)
	assert.Equal(t, "Yarn Day", p.Title)
	assert.Equal(t, "yarn-day", p.Slug)
	assert.Equal(t, []string{"a"}, p.Tags)
	assert.Len(t, p.Thumbnails, 1)
	assert.Equal(t, "https://cdn.test/key000001.png", p.Thumbnails[0])
	assert.Equal(t, models.PostStatusPublished, p.Status)
	assert.True(t, p.GeneratedByAI)
	assert.Equal(t, "Marlang", p.Author)
	assert.Equal(t, "main", p.AuthorID)
	assert.Equal(t, models.DefaultTextModel, p.AIModelUsed)
	assert.Equal(t, "hello world", p.Excerpt)
	assert.True(t, runAt.Equal(p.PublishedAt))
	assert.Equal(t, 1, p.Metadata.ImageCount)
	assert.Equal(t, 1, p.Metadata.ReadingTime)
	assert.Equal(t, []string{"cat in yarn"}, p.Metadata.ThumbnailDescriptions)
	assert.Equal(t, []string{"a"}, p.Metadata.Keywords)

	cfg := h.agentDoc(t)
	require.NotNil(t, cfg.ScheduledPosting.LastRun)
	assert.True(t, runAt.Equal(*cfg.ScheduledPosting.LastRun))
	assert.Equal(t, "Marlang", cfg.Name)

	require.Len(t, h.notifier.posts, 1)
	assert.Equal(t, res.PostID, h.notifier.posts[0].ID)

	logs := h.store.AILogs()
	require.Len(t, logs, 1)
	assert.Equal(t, models.AILogKindText, logs[0].Kind)
	assert.EqualValues(t, 30, logs[0].TotalTokens)

	require.Len(t, h.text.opts, 1)
	assert.Equal(t, 0.7, h.text.opts[0].Temperature)
	assert.Equal(t, 2048, h.text.opts[0].MaxOutputTokens)
	assert.Equal(t, agent.DraftSchema, h.text.opts[0].Schema)
}

func TestRunDisabledWritesNothing(t *testing.T) {
	h := newHarness(t, func(c *models.AgentConfig) { c.ScheduledPosting.Enabled = false })
	before := h.agentDoc(t).ScheduledPosting.LastRun

	for _, trig := range []agent.Trigger{agent.TriggerScheduled, agent.TriggerManual} {
		res, err := h.runner().Run(context.Background(), trig)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.True(t, res.Skipped)
		assert.Equal(t, agent.ReasonDisabled, res.Reason)
	}

	assert.Empty(t, h.store.Posts())
	assert.Equal(t, 0, h.text.Calls())
	assert.True(t, before.Equal(*h.agentDoc(t).ScheduledPosting.LastRun))
}

func TestRunAgentMissing(t *testing.T) {
	h := newHarness(t, nil)
	h.opts.AgentID = "ghost"

	res, err := h.runner().Run(context.Background(), agent.TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, agent.Result{Reason: agent.ReasonAgentMissing, Skipped: true}, res)
	assert.Equal(t, 0, h.text.Calls())
}

func TestRunCooldownIsNoop(t *testing.T) {
	h := newHarness(t, func(c *models.AgentConfig) {
		recent := runAt.Add(-10 * time.Minute)
		c.ScheduledPosting.LastRun = &recent
	})

	res, err := h.runner().Run(context.Background(), agent.TriggerScheduled)
	require.NoError(t, err)
	assert.Equal(t, agent.ReasonCooldown, res.Reason)
	assert.True(t, res.Skipped)
	assert.Empty(t, h.store.Posts())
	assert.Equal(t, 0, h.text.Calls())

	// on-demand runs are gated by cooldown too
	res, err = h.runner().Run(context.Background(), agent.TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, agent.ReasonCooldown, res.Reason)
}

func TestRunHourGate(t *testing.T) {
	h := newHarness(t, func(c *models.AgentConfig) { c.ScheduledPosting.Schedule = 10 })

	res, err := h.runner().Run(context.Background(), agent.TriggerScheduled)
	require.NoError(t, err)
	assert.Equal(t, agent.ReasonNotScheduledHour, res.Reason)
	assert.Empty(t, h.store.Posts())

	res, err = h.runner().Run(context.Background(), agent.TriggerManual)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Len(t, h.store.Posts(), 1)
}

func TestRunLegacyCronSchedule(t *testing.T) {
	h := newHarness(t, func(c *models.AgentConfig) { c.ScheduledPosting.Schedule = "0 9 * * *" })

	res, err := h.runner().Run(context.Background(), agent.TriggerScheduled)
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestRunInvalidScheduleSkipsScheduledTrigger(t *testing.T) {
	h := newHarness(t, func(c *models.AgentConfig) { c.ScheduledPosting.Schedule = "every morning" })

	res, err := h.runner().Run(context.Background(), agent.TriggerScheduled)
	require.NoError(t, err)
	assert.Equal(t, agent.ReasonInvalidSchedule, res.Reason)
	assert.Empty(t, h.store.Posts())
}

func TestRunTextFailure(t *testing.T) {
	h := newHarness(t, nil)
	h.text.err = errors.New("upstream 500")

	res, err := h.runner().Run(context.Background(), agent.TriggerScheduled)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.False(t, res.Skipped)
	assert.Equal(t, agent.ReasonNoText, res.Reason)
	assert.Empty(t, h.store.Posts())
	assert.True(t, runAt.Add(-8*time.Hour).Equal(*h.agentDoc(t).ScheduledPosting.LastRun))

	logs := h.store.AILogs()
	require.Len(t, logs, 1)
	assert.Equal(t, "upstream 500", logs[0].ErrorMessage)
}

func TestRunEmptyText(t *testing.T) {
	h := newHarness(t, nil)
	h.text.outputs = []string{"   "}

	res, err := h.runner().Run(context.Background(), agent.TriggerScheduled)
	require.NoError(t, err)
	assert.Equal(t, agent.ReasonNoText, res.Reason)
}

func TestRunMissingTagsFails(t *testing.T) {
	h := newHarness(t, nil)
	h.text.outputs = []string{`{"title":"t","content":"<p>x</p>","thumbnailIdeas":["i"]}`}

	res, err := h.runner().Run(context.Background(), agent.TriggerScheduled)
	require.NoError(t, err)
	assert.Equal(t, agent.ReasonInvalidResponse, res.Reason)
	assert.Empty(t, h.store.Posts())
	assert.Equal(t, 0, h.images.calls)
}

func TestRunFencedResponse(t *testing.T) {
	h := newHarness(t, nil)
	h.text.outputs = []string{"```json\n" + draftJSON("Yarn Day", "cat in yarn") + "\n```"}

	res, err := h.runner().Run(context.Background(), agent.TriggerScheduled)
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestRunAllImagesFailCreatesNoPost(t *testing.T) {
	h := newHarness(t, func(c *models.AgentConfig) { c.ThumbnailGenConfig.Count = 3 })
	h.images.fail = map[int]error{
		1: errors.New("safety filter"),
		2: errors.New("safety filter"),
		3: errors.New("safety filter"),
	}

	res, err := h.runner().Run(context.Background(), agent.TriggerScheduled)
	require.NoError(t, err)
	assert.Equal(t, agent.ReasonNoImages, res.Reason)
	assert.Equal(t, 3, h.images.calls)
	assert.Empty(t, h.store.Posts())
	assert.Empty(t, h.notifier.posts)
	assert.True(t, runAt.Add(-8*time.Hour).Equal(*h.agentDoc(t).ScheduledPosting.LastRun))
}

func TestRunPartialImagesKeepOrder(t *testing.T) {
	h := newHarness(t, func(c *models.AgentConfig) { c.ThumbnailGenConfig.Count = 3 })
	h.images.fail = map[int]error{2: errors.New("safety filter")}

	res, err := h.runner().Run(context.Background(), agent.TriggerScheduled)
	require.NoError(t, err)
	require.True(t, res.Success)

	p := h.store.Posts()[0]
	assert.Equal(t, []string{"https://cdn.test/key000001.png", "https://cdn.test/key000002.png"}, p.Thumbnails)
	assert.Equal(t, []string{"cat in yarn", "cat at night"}, p.Metadata.ThumbnailDescriptions)
	assert.Equal(t, 2, p.Metadata.ImageCount)
}

func TestRunRateLimitStopsImageLoop(t *testing.T) {
	h := newHarness(t, func(c *models.AgentConfig) { c.ThumbnailGenConfig.Count = 3 })
	h.images.fail = map[int]error{2: fmt.Errorf("imagen: %w", agent.ErrRateLimited)}

	res, err := h.runner().Run(context.Background(), agent.TriggerScheduled)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, 2, h.images.calls)
	assert.Len(t, h.store.Posts()[0].Thumbnails, 1)
}

func TestRunQuotaExhaustedStopsBeforeCalling(t *testing.T) {
	h := newHarness(t, func(c *models.AgentConfig) { c.ThumbnailGenConfig.Count = 3 })
	h.deps.Pacer = denyPacer{}

	res, err := h.runner().Run(context.Background(), agent.TriggerScheduled)
	require.NoError(t, err)
	assert.Equal(t, agent.ReasonNoImages, res.Reason)
	assert.Equal(t, 0, h.images.calls)
}

func TestRunThumbnailsDisabled(t *testing.T) {
	h := newHarness(t, func(c *models.AgentConfig) { c.ThumbnailGenConfig = nil })

	res, err := h.runner().Run(context.Background(), agent.TriggerScheduled)
	require.NoError(t, err)
	require.True(t, res.Success)
	p := h.store.Posts()[0]
	assert.Empty(t, p.Thumbnails)
	assert.Equal(t, 0, p.Metadata.ImageCount)
	assert.Equal(t, 0, h.images.calls)
}

func TestRunImagePromptUsesTemplate(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.runner().Run(context.Background(), agent.TriggerScheduled)
	require.NoError(t, err)
	require.Len(t, h.images.prompts, 1)
	assert.Equal(t, "Generate a beautiful image of Marlang cat in yarn in Cinematic, high-quality, cat-themed style.", h.images.prompts[0])
}

func TestRunSlugCollisionGetsSuffix(t *testing.T) {
	h := newHarness(t, nil)
	_, err := h.store.CreatePost(context.Background(), &models.Post{Title: "Yarn Day", Slug: "yarn-day"})
	require.NoError(t, err)

	res, err := h.runner().Run(context.Background(), agent.TriggerScheduled)
	require.NoError(t, err)
	require.True(t, res.Success)

	p, err := h.store.GetPost(context.Background(), res.PostID)
	require.NoError(t, err)
	assert.Equal(t, "yarn-day-key000", p.Slug)
}

func TestRunLastRunUpdateFailure(t *testing.T) {
	h := newHarness(t, nil)
	h.deps.Agents = failingLastRun{h.store}

	res, err := h.runner().Run(context.Background(), agent.TriggerScheduled)
	require.Error(t, err)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.PostID)
	assert.Equal(t, agent.ReasonLastRunFailed, res.Reason)
	assert.Len(t, h.store.Posts(), 1)
}

func TestRunNotifierErrorDoesNotFailRun(t *testing.T) {
	h := newHarness(t, nil)
	h.notifier.err = errors.New("broker down")

	res, err := h.runner().Run(context.Background(), agent.TriggerScheduled)
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestRunExplicitZeroTemperature(t *testing.T) {
	zero := 0.0
	h := newHarness(t, func(c *models.AgentConfig) {
		c.ModelConfig.Temperature = &zero
		c.ModelConfig.Model = ""
	})
	h.opts.TextModel = "gemini-configured"

	_, err := h.runner().Run(context.Background(), agent.TriggerScheduled)
	require.NoError(t, err)
	require.Len(t, h.text.opts, 1)
	assert.Equal(t, 0.0, h.text.opts[0].Temperature)
	assert.Equal(t, "gemini-configured", h.text.opts[0].Model)
}

// blockingText holds every caller until n calls are in flight.
type blockingText struct {
	inner   *fakeText
	n       int32
	arrived int32
	release chan struct{}
}

func (b *blockingText) GenerateText(ctx context.Context, prompt string, opts agent.TextOptions) (*agent.TextResult, error) {
	if atomic.AddInt32(&b.arrived, 1) == b.n {
		close(b.release)
	}
	select {
	case <-b.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return b.inner.GenerateText(ctx, prompt, opts)
}

func TestRunConcurrentInvocationsBothPassCooldown(t *testing.T) {
	h := newHarness(t, nil)
	h.text.outputs = []string{draftJSON("First", "a"), draftJSON("Second", "b")}
	h.deps.Text = &blockingText{inner: h.text, n: 2, release: make(chan struct{})}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	results := make([]agent.Result, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = h.runner().Run(ctx, agent.TriggerScheduled)
		}(i)
	}
	wg.Wait()

	// accepted race: no lock between the cooldown check and lastRun write
	assert.True(t, results[0].Success)
	assert.True(t, results[1].Success)
	assert.Len(t, h.store.Posts(), 2)
}

func TestRunNotifierIsTimeBounded(t *testing.T) {
	h := newHarness(t, nil)
	n := &blockingNotifier{}
	h.deps.Notifier = n
	h.opts.NotifyTimeout = 20 * time.Millisecond

	start := time.Now()
	res, err := h.runner().Run(context.Background(), agent.TriggerManual)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.ErrorIs(t, n.err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Len(t, h.store.Posts(), 1)
}

func TestRunImageDelayNotAppliedBeforeFirstCall(t *testing.T) {
	h := newHarness(t, nil)
	h.opts.ImageDelay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := h.runner().Run(ctx, agent.TriggerScheduled)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, 1, h.images.calls)
	assert.Len(t, h.store.Posts()[0].Thumbnails, 1)
}

func TestRunImageDelaySpacesCalls(t *testing.T) {
	h := newHarness(t, func(c *models.AgentConfig) { c.ThumbnailGenConfig.Count = 3 })
	h.opts.ImageDelay = 20 * time.Millisecond

	res, err := h.runner().Run(context.Background(), agent.TriggerScheduled)
	require.NoError(t, err)
	require.True(t, res.Success)

	require.Len(t, h.images.times, 3)
	for i := 1; i < len(h.images.times); i++ {
		assert.GreaterOrEqual(t, h.images.times[i].Sub(h.images.times[i-1]), 20*time.Millisecond)
	}
}

func TestRunCancelledDuringImageDelayKeepsFinishedImages(t *testing.T) {
	h := newHarness(t, func(c *models.AgentConfig) { c.ThumbnailGenConfig.Count = 3 })
	h.opts.ImageDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.images.onCall = func(n int) {
		if n == 1 {
			cancel()
		}
	}

	res, err := h.runner().Run(ctx, agent.TriggerScheduled)
	require.NoError(t, err)
	require.True(t, res.Success, res.Reason)
	assert.Equal(t, 1, h.images.calls)

	p := h.store.Posts()[0]
	assert.Equal(t, []string{"https://cdn.test/key000001.png"}, p.Thumbnails)
	assert.Equal(t, []string{"cat in yarn"}, p.Metadata.ThumbnailDescriptions)
}

func TestRunHeadlinesReachPrompt(t *testing.T) {
	h := newHarness(t, nil)
	h.deps.Headlines = stubHeadlines{lines: []string{"Comet spotted over Seoul", "New laser pointer released"}}

	res, err := h.runner().Run(context.Background(), agent.TriggerScheduled)
	require.NoError(t, err)
	require.True(t, res.Success)

	require.Len(t, h.text.prompts, 1)
	assert.Contains(t, h.text.prompts[0], "Things you noticed today")
	assert.Contains(t, h.text.prompts[0], "- Comet spotted over Seoul")
	assert.Contains(t, h.text.prompts[0], "- New laser pointer released")
}

func TestRunHeadlineErrorIsOnlyLogged(t *testing.T) {
	h := newHarness(t, nil)
	h.deps.Headlines = stubHeadlines{err: errors.New("feed timeout")}

	res, err := h.runner().Run(context.Background(), agent.TriggerScheduled)
	require.NoError(t, err)
	require.True(t, res.Success)

	require.Len(t, h.text.prompts, 1)
	assert.NotContains(t, h.text.prompts[0], "Things you noticed today")
}
