package export

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/enqueta/backend/internal/models"
)

// EscapeValue prepares one cell for CSV output. Two independent guards apply
// in order: values starting with a formula/command character get a leading
// apostrophe so spreadsheets treat them as text, and values containing a
// comma, quote or newline are quote-wrapped with internal quotes doubled.
// The quoting decision looks at the already-prefixed value.
func EscapeValue(value string) string {
	if value != "" {
		switch value[0] {
		case '=', '+', '-', '@', '\t', '\r':
			value = "'" + value
		}
	}
	if strings.ContainsAny(value, ",\"\n\r") {
		value = `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
	}
	return value
}

// BuildDocument renders responses as a CSV document (UTF-8, LF line endings).
// The header row is Response ID, User ID, Submitted At followed by one column
// per question in display order; each data row is one response. Every cell
// passes through EscapeValue.
func BuildDocument(questions []models.Question, responses []models.Response) string {
	var b strings.Builder

	header := []string{"Response ID", "User ID", "Submitted At"}
	for _, q := range questions {
		header = append(header, q.Label)
	}
	writeRow(&b, header)

	for _, r := range responses {
		byQuestion := make(map[uuid.UUID]string, len(r.Answers))
		for _, a := range r.Answers {
			byQuestion[a.QuestionID] = a.Value
		}
		row := []string{r.ID.String(), r.UserID, r.SubmittedAt.UTC().Format(time.RFC3339)}
		for _, q := range questions {
			row = append(row, byQuestion[q.ID])
		}
		writeRow(&b, row)
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(EscapeValue(cell))
	}
	b.WriteByte('\n')
}
