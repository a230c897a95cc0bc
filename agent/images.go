package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marlang/config"
	"marlang/metrics"
	"marlang/models"
)

var ErrNoImage = errors.New("image generator returned no image bytes")

const defaultActivity = "curled up in a sunny spot, watching the world go by"

// imageSlot is one planned image call: the description kept in post metadata
// and the prompt actually sent to the image model.
type imageSlot struct {
	Description string
	Prompt      string
}

// imageAttempt is the outcome of one slot. Exactly one of URL/Err is set.
type imageAttempt struct {
	Slot imageSlot
	URL  string
	Err  error
}

type loopAction int

const (
	continueLoop loopAction = iota
	stopLoop
)

// nextAction decides what the image loop does after an attempt: a rate-limit
// signal or a cancelled context stops it, anything else is skipped.
func nextAction(a imageAttempt) loopAction {
	if a.Err == nil {
		return continueLoop
	}
	if errors.Is(a.Err, ErrRateLimited) || errors.Is(a.Err, context.Canceled) || errors.Is(a.Err, context.DeadlineExceeded) {
		return stopLoop
	}
	return continueLoop
}

// planImageSlots takes up to count ideas in model order. Missing slots reuse
// the title, then a content snippet, then a default activity.
func planImageSlots(cfg *models.AgentConfig, d Draft, count int) []imageSlot {
	fallback := d.Title
	if fallback == "" {
		fallback = firstWords(PlainText(d.Content), 20)
	}
	if fallback == "" {
		fallback = defaultActivity
	}

	slots := make([]imageSlot, 0, count)
	for i := 0; i < count; i++ {
		desc := fallback
		if i < len(d.ThumbnailIdeas) {
			desc = d.ThumbnailIdeas[i]
		}
		slots = append(slots, imageSlot{Description: desc, Prompt: BuildImagePrompt(cfg, desc)})
	}
	return slots
}

func firstWords(s string, n int) string {
	fields := strings.Fields(s)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}

// generateImages folds over the planned slots, one image call each, and
// returns every attempt in order. It never fails as a whole.
func (r *Runner) generateImages(ctx context.Context, cfg *models.AgentConfig, d Draft) []imageAttempt {
	count := cfg.ThumbnailGenConfig.CountOrDefault()
	model := cfg.ThumbnailGenConfig.Model
	if model == "" {
		model = r.imageModel
	}

	slots := planImageSlots(cfg, d, count)
	attempts := make([]imageAttempt, 0, len(slots))
	for i, slot := range slots {
		if i > 0 && r.imageDelay > 0 {
			if err := sleepCtx(ctx, r.imageDelay); err != nil {
				config.Logger.Warnf("image generation interrupted after %d/%d attempts: %v", i, len(slots), err)
				break
			}
		}
		a := r.attemptImage(ctx, model, slot)
		attempts = append(attempts, a)

		if a.Err != nil {
			metrics.ImageAttemptsTotal.WithLabelValues("failed").Inc()
			config.Logger.Warnf("image %d/%d failed (prompt=%q): %v", i+1, len(slots), slot.Prompt, a.Err)
		} else {
			metrics.ImageAttemptsTotal.WithLabelValues("ok").Inc()
			config.Logger.Infof("image %d/%d saved: %s", i+1, len(slots), a.URL)
		}

		if nextAction(a) == stopLoop {
			config.Logger.Warnf("image generation stopped early after %d/%d attempts: %v", i+1, len(slots), a.Err)
			break
		}
	}
	return attempts
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (r *Runner) attemptImage(ctx context.Context, model string, slot imageSlot) imageAttempt {
	a := imageAttempt{Slot: slot}

	if r.pacer != nil {
		allowed, err := r.pacer.WaitAndReserve(ctx)
		if err != nil {
			a.Err = err
			return a
		}
		if !allowed {
			a.Err = fmt.Errorf("%w: daily image quota exhausted", ErrRateLimited)
			return a
		}
	}

	if r.images == nil || r.storage == nil {
		a.Err = errors.New("image generation is not configured")
		return a
	}

	imgs, err := r.images.GenerateImages(ctx, slot.Prompt, ImageOptions{Model: model, Count: 1})
	if err != nil {
		a.Err = err
		return a
	}

	var img *Image
	for i := range imgs {
		if len(imgs[i].Data) > 0 {
			img = &imgs[i]
			break
		}
	}
	if img == nil {
		a.Err = ErrNoImage
		return a
	}

	mimeType := img.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}
	key := r.newKey() + extensionFor(mimeType)
	url, err := r.storage.Upload(ctx, img.Data, key, mimeType)
	if err != nil {
		a.Err = fmt.Errorf("upload %s: %w", key, err)
		return a
	}
	a.URL = url
	return a
}

// collectImages keeps successful attempts in order.
func collectImages(attempts []imageAttempt) (urls, descriptions []string) {
	urls = []string{}
	descriptions = []string{}
	for _, a := range attempts {
		if a.Err != nil || a.URL == "" {
			continue
		}
		urls = append(urls, a.URL)
		descriptions = append(descriptions, a.Slot.Description)
	}
	return urls, descriptions
}

func extensionFor(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".bin"
	}
}
