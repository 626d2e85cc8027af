package service

import "fmt"

// Per-prompt token budgets. The quiz needs room for five full question
// records; the two extraction prompts return small objects.
const (
	quizMaxTokens     = 900
	topicsMaxTokens   = 300
	entitiesMaxTokens = 300
)

const quizTemplate = `
Generate 5 multiple-choice questions from the text below.

Rules:
- Use ONLY the given text
- Each question must have:
  question, options (4), answer, difficulty, explanation
- No hallucinations
- Return STRICT JSON only

JSON format:
{
  "quiz": [
    {
      "question": "...",
      "options": ["A","B","C","D"],
      "answer": "...",
      "difficulty": "easy|medium|hard",
      "explanation": "..."
    }
  ]
}

TEXT:
%s
`

const relatedTopicsTemplate = `
Suggest 3-5 related Wikipedia topics.

Rules:
- Use only the given text
- Return STRICT JSON only

JSON format:
{
  "related_topics": ["topic1","topic2"]
}

TEXT:
%s
`

const keyEntitiesTemplate = `
Extract key entities from the article text.

Rules:
- Use ONLY explicitly mentioned entities
- No explanations
- STRICT JSON only

JSON format:
{
  "people": [],
  "organizations": [],
  "locations": []
}

TEXT:
%s
`

// QuizPrompt renders the quiz instruction template with the article text.
func QuizPrompt(articleText string) string {
	return fmt.Sprintf(quizTemplate, articleText)
}

// RelatedTopicsPrompt renders the related-topics instruction template.
func RelatedTopicsPrompt(articleText string) string {
	return fmt.Sprintf(relatedTopicsTemplate, articleText)
}

// KeyEntitiesPrompt renders the key-entities instruction template.
func KeyEntitiesPrompt(articleText string) string {
	return fmt.Sprintf(keyEntitiesTemplate, articleText)
}
