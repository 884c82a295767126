package services

import (
	"fmt"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildAnalysisPrompt embeds both texts verbatim together with the JSON
// shape the normalizer expects back.
func (pb *PromptBuilder) BuildAnalysisPrompt(resumeText, jobDescription string) string {
	return fmt.Sprintf(`You are an ATS Resume Analyzer. Compare the resume with the job description and return ONLY valid JSON.

### JOB DESCRIPTION:
%s

### RESUME:
%s

### JSON FORMAT:
{
  "match_percentage": 0,
  "matching_skills": [],
  "matching_education": "",
  "matching_experience": "",
  "highlighted_strengths": [],
  "identified_gaps": [],
  "detailed_analysis": {
    "skills_breakdown": {
      "required_skills": [],
      "candidate_skills": [],
      "matched_count": 0,
      "total_required": 0
    },
    "experience_analysis": {
      "required_years": "",
      "candidate_years": "",
      "relevant_roles": []
    },
    "education_analysis": {
      "required": "",
      "candidate": "",
      "match_level": ""
    }
  }
}

Rules:
- match_percentage is a number between 0 and 100.
- Only list skills that appear in both the resume and the job description.

Return ONLY the JSON. Do not include any explanation.`,
		jobDescription, resumeText)
}
