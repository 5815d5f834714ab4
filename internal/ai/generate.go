package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"go-hirekit/internal/models"
)

// Generator produces job-hunting documents through the fallback chain.
type Generator struct {
	llm Completer
}

func NewGenerator(llm Completer) *Generator {
	return &Generator{llm: llm}
}

// GenerateResume writes an ATS-friendly markdown resume for the profile,
// adapted to the target job.
func (g *Generator) GenerateResume(ctx context.Context, profile *models.Profile, jobTitle, jobDescription string) (string, error) {
	profileJSON, _ := json.Marshal(profile)

	var b strings.Builder
	fmt.Fprintf(&b, "Generate a professional, ATS-friendly resume for:\nPROFILE: %s\nTARGET JOB: %s\n", profileJSON, jobTitle)
	if jobDescription != "" {
		fmt.Fprintf(&b, "JOB DESCRIPTION:\n%s\n", jobDescription)
	}
	b.WriteString(`
RULES:
- Format the output as plain Markdown, one page, ATS-scannable.
- NEVER use fake placeholders like [City, State] or [Phone Number]; omit missing contact fields entirely.
- Detect the person's profession and adapt the section layout accordingly (tech, hospitality, healthcare, blue collar, retail, office).
- Use action verbs relevant to the profession and quantified achievements where possible.
- For Gulf jobs: mention visa readiness, passport validity, any Gulf experience.`)

	return g.llm.Complete(ctx, "", b.String(), Options{Temperature: 0.5, MaxTokens: 4096})
}

// ResumeScore is the structured verdict of a resume-vs-job comparison.
type ResumeScore struct {
	Score    int      `json:"score"`
	Feedback []string `json:"feedback"`
	Missing  []string `json:"missing"`
}

// ScoreResume rates resumeText against a job description. Unparseable
// model output degrades to a zero score with an explanatory feedback line.
func (g *Generator) ScoreResume(ctx context.Context, resumeText, jobDescription string) (*ResumeScore, error) {
	prompt := fmt.Sprintf(`Score this resume against the job. Return ONLY JSON:
{"score": 0-100, "feedback": ["point1","point2"], "missing": ["keyword1","keyword2"]}

RESUME:
%s

JOB:
%s`, resumeText, jobDescription)

	text, err := g.llm.Complete(ctx, "", prompt, Options{Temperature: 0.1, MaxTokens: 1024, JSONMode: true})
	if err != nil {
		return nil, err
	}

	cleaned := StripMarkdownFences(text)
	if !gjson.Valid(cleaned) || !gjson.Parse(cleaned).IsObject() {
		return &ResumeScore{Score: 0, Feedback: []string{"Could not parse score"}, Missing: []string{}}, nil
	}

	root := gjson.Parse(cleaned)
	score := &ResumeScore{
		Score:    int(root.Get("score").Int()),
		Feedback: stringSlice(root.Get("feedback")),
		Missing:  stringSlice(root.Get("missing")),
	}
	return score, nil
}

// GenerateCoverLetter writes a short tailored cover letter.
func (g *Generator) GenerateCoverLetter(ctx context.Context, profile *models.Profile, jobTitle, company string) (string, error) {
	profileJSON, _ := json.Marshal(profile)
	prompt := fmt.Sprintf(`Write a professional cover letter for:
PROFILE: %s
JOB: %s at %s

Keep it concise (3-4 paragraphs), professional, and tailored.`, profileJSON, jobTitle, company)

	return g.llm.Complete(ctx, "", prompt, Options{Temperature: 0.7, MaxTokens: 2048})
}

// InterviewPrep produces interview coaching material for a role.
func (g *Generator) InterviewPrep(ctx context.Context, profile *models.Profile, jobTitle, company string) (string, error) {
	profileJSON, _ := json.Marshal(profile)
	prompt := fmt.Sprintf(`Generate interview preparation for:
PROFILE: %s
JOB: %s at %s

Include:
1. 5 likely technical questions with model answers
2. 3 behavioral questions with STAR-format answers
3. Questions the candidate should ask the interviewer
4. Tips specific to this company/role

Be specific and actionable.`, profileJSON, jobTitle, company)

	return g.llm.Complete(ctx, "", prompt, Options{Temperature: 0.7, MaxTokens: 4096})
}

// StripMarkdownFences removes ``` wrappers that models add around JSON
// despite being told not to.
func StripMarkdownFences(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}

func stringSlice(res gjson.Result) []string {
	items := res.Array()
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.String())
	}
	return out
}
