package agent_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marlang/agent"
)

func TestPlainText(t *testing.T) {
	in := `<h2>Hello</h2><p>small <strong>world</strong></p><script>var x = 1;</script>`
	assert.Equal(t, "Hello small world", agent.PlainText(in))
	assert.Equal(t, "just a caption", agent.PlainText("just   a caption"))
}

func TestReadingTime(t *testing.T) {
	words := func(n int) string { return "<p>" + strings.Repeat("meow ", n) + "</p>" }

	assert.Equal(t, 0, agent.ReadingTime(""))
	assert.Equal(t, 1, agent.ReadingTime(words(1)))
	assert.Equal(t, 1, agent.ReadingTime(words(200)))
	assert.Equal(t, 2, agent.ReadingTime(words(201)))
	assert.Equal(t, 5, agent.ReadingTime(words(1000)))
}

func TestDeriveExcerpt(t *testing.T) {
	assert.Equal(t, "short text", agent.DeriveExcerpt("<p>short text</p>"))

	long := "<p>" + strings.Repeat("purr ", 100) + "</p>"
	got := agent.DeriveExcerpt(long)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.LessOrEqual(t, len([]rune(got)), 201)
}

func TestDeriveExcerptCutsMultibyteAtWordBoundary(t *testing.T) {
	// 3 바이트 룬 단어라서 바이트 인덱스로 비교하면 경계가 어긋난다.
	word := "고양이의"
	content := "<p>" + strings.Repeat(word+" ", 60) + "</p>"

	got := agent.DeriveExcerpt(content)
	require.True(t, strings.HasSuffix(got, "…"))

	body := strings.TrimSuffix(got, "…")
	for _, w := range strings.Fields(body) {
		assert.Equal(t, word, w)
	}
	// 200 룬 안에서 마지막 공백까지 자른다: 단어+공백 = 5 룬, 40 단어 = 200 룬.
	assert.Len(t, strings.Fields(body), 40)
}

func TestDeriveExcerptEarlySpaceFallsBackToHardCut(t *testing.T) {
	// 공백이 50번째 룬(150 바이트)에 있으면 경계로 쓰기엔 너무 앞이다.
	content := "<p>" + strings.Repeat("냥", 50) + " " + strings.Repeat("냥", 250) + "</p>"
	assert.Equal(t, strings.Repeat("냥", 50)+" "+strings.Repeat("냥", 149)+"…", agent.DeriveExcerpt(content))

	content = "<p>" + strings.Repeat("냥", 150) + " " + strings.Repeat("냥", 150) + "</p>"
	assert.Equal(t, strings.Repeat("냥", 150)+"…", agent.DeriveExcerpt(content))

	content = "<p>" + strings.Repeat("냥", 300) + "</p>"
	assert.Equal(t, strings.Repeat("냥", 200)+"…", agent.DeriveExcerpt(content))
}

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"The Great Yarn Heist", "the-great-yarn-heist"},
		{"  Space Lasers!!  v2 ", "space-lasers-v2"},
		{"--already-slugged--", "already-slugged"},
		{"Cats & Dogs: A Truce (Pt1)", "cats-dogs-a-truce-pt1"},
		{"오늘의 산책", ""},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, agent.Slugify(tc.in), tc.in)
	}
}
