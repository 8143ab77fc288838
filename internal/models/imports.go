package models

// Import payloads come in two shapes, discriminated by the presence of a
// setMeta field rather than by probing arbitrary depths:
//
//	Format A: {"setMeta": {...}, "questions": [...]}  → creates a set directly
//	Format B: [...]                                   → bare question array,
//	          needs setMeta supplied in a follow-up request
// ImportFormatA is also the body of the Format B follow-up request, once
// the admin has filled in the set metadata.
type ImportFormatA struct {
	SetMeta   QuestionSetMeta `json:"setMeta"`
	Questions []Question      `json:"questions"`
}

// ImportPreview is returned for a valid Format B upload: enough for the
// admin to confirm what they are about to import before naming the set.
type ImportPreview struct {
	QuestionCount int          `json:"question_count"`
	Topics        []string     `json:"topics"`
	Difficulties  []Difficulty `json:"difficulties"`
	Sample        []Question   `json:"sample"`
}

type ImportResult struct {
	Success       bool   `json:"success"`
	SetID         string `json:"set_id"`
	QuestionCount int    `json:"question_count"`
}
