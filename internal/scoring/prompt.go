package scoring

import (
	"strings"
)

// resume text beyond this is dropped from the prompt
const maxResumeRunes = 30000

// BuildPrompt asks for the four-key JSON object the parser expects.
func BuildPrompt(jobDescription, resumeText string) string {
	var b strings.Builder

	b.WriteString("You are screening a job application.\n\n")
	b.WriteString("Job description:\n")
	b.WriteString(sanitize(jobDescription))
	b.WriteString("\n\nCandidate résumé:\n")
	b.WriteString(truncateRunes(sanitize(resumeText), maxResumeRunes))
	b.WriteString("\n\nAssess how well the résumé matches the job. ")
	b.WriteString("Respond with a single JSON object and nothing else, with exactly these keys:\n")
	b.WriteString(`- "match_score": integer from 0 to 100` + "\n")
	b.WriteString(`- "strengths": list of strings` + "\n")
	b.WriteString(`- "weaknesses": list of strings` + "\n")
	b.WriteString(`- "suggested_questions": list of interview questions (strings)` + "\n")

	return b.String()
}

func sanitize(s string) string {
	return strings.TrimSpace(strings.ToValidUTF8(s, ""))
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
