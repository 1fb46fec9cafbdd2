package insight

import (
	"strings"
	"text/template"
)

var promptTemplate = template.Must(template.New("prompt").Parse(`You are a knowledgeable local guide for {{.Location}}.
Provide insider recommendations that tourists typically don't know about.

TASK:
Provide 3-4 specific local recommendations. Focus on:
- Hidden gems, local favorites, neighborhood spots
- Authentic experiences that locals enjoy
- Be specific with names when possible
- If this is an obscure location, make reasonable suggestions based on the region

RETURN ONLY valid JSON (no markdown, no code blocks):
{
  "summary": "One sentence about what makes this place special",
  "spots": [
    {
      "name": "Specific place name",
      "category": "Food/Bar/Park/Culture/Nature",
      "why_cool": "Why locals love it",
      "avoid": "Tourist trap to skip instead"
    }
  ]
}
`))

// BuildPrompt renders the instruction text for a place and optional region.
// The output depends only on its inputs.
func BuildPrompt(place, region string) string {
	location := strings.TrimSpace(place)
	if r := strings.TrimSpace(region); r != "" {
		location += ", " + r
	}

	var b strings.Builder
	// The template has no failure modes for string data.
	_ = promptTemplate.Execute(&b, struct{ Location string }{location})
	return b.String()
}
