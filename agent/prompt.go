package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"marlang/models"
)

var exampleDraft = Draft{
	Title:           "The Great Yarn Heist",
	Excerpt:         "Today I finally caught the red yarn ball. It did not go quietly.",
	Content:         "<h2>A suspicious ball of yarn</h2><p>It started, as all great adventures do, under the sofa...</p>",
	Tags:            []string{"yarn", "adventure", "daily-life"},
	ThumbnailIdeas:  []string{"A white cat tangled in red yarn under a sofa, morning light"},
	MetaDescription: "A cat's account of the yarn ball that got away, almost.",
}

// exampleDraftJSON 은 프롬프트에 넣는 응답 예시다. Draft 의 json 태그를 따른다.
var exampleDraftJSON = mustIndentJSON(exampleDraft)

func mustIndentJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		panic(fmt.Sprintf("marshal prompt example: %v", err))
	}
	return string(b)
}

// BuildPrompt renders the generation prompt for cfg. Persona fields are
// inserted verbatim. headlines may be empty.
func BuildPrompt(cfg *models.AgentConfig, headlines []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, %s.\n\n", cfg.Name, cfg.Bio)
	fmt.Fprintf(&b, "Personality: %s tone, %s style.\n", cfg.Personality.Tone, cfg.Personality.Style)
	fmt.Fprintf(&b, "Topics of interest: %s.\n", strings.Join(cfg.Personality.Interests, ", "))
	fmt.Fprintf(&b, "System Instructions: %s\n\n", cfg.Personality.SystemPrompt)

	if len(headlines) > 0 {
		b.WriteString("Things you noticed today:\n")
		for _, h := range headlines {
			fmt.Fprintf(&b, "- %s\n", h)
		}
		b.WriteString("\n")
	}

	b.WriteString(`Write an engaging blog post about one of your topics of interest or something new you "discovered" today.
Include:
- A catchy title
- A 2-3 sentence excerpt
- The full blog post (500-1000 words) in clean HTML format (use <h2>, <p>, <strong>, <ul>, etc.)
- 3-5 relevant tags
- Short visual descriptions of scenes from the post, usable as image prompts
- A meta description

### OUTPUT INSTRUCTIONS
You must return only valid JSON.
Do not include markdown formatting or backticks.
`)
	fmt.Fprintf(&b, "Required keys: %s.\n", strings.Join(DraftSchema.RequiredNames(), ", "))
	fmt.Fprintf(&b, "Optional keys: %s.\n\n", strings.Join(DraftSchema.OptionalNames(), ", "))
	b.WriteString("### EXAMPLE OUTPUT FORMAT\n")
	b.WriteString(exampleDraftJSON)
	b.WriteString("\n\n### START GENERATION\n")
	return b.String()
}

const defaultImageTemplate = "{activity}, {style}"

// BuildImagePrompt fills the thumbnail template placeholders
// {agent_name}, {activity} and {style}.
func BuildImagePrompt(cfg *models.AgentConfig, activity string) string {
	tmpl := defaultImageTemplate
	style := ""
	if t := cfg.ThumbnailGenConfig; t != nil {
		if strings.TrimSpace(t.PromptTemplate) != "" {
			tmpl = t.PromptTemplate
		}
		style = t.Style
	}
	r := strings.NewReplacer(
		"{agent_name}", cfg.Name,
		"{activity}", activity,
		"{style}", style,
	)
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(r.Replace(tmpl)), ","))
}
