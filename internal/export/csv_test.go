package export

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/enqueta/backend/internal/models"
)

func TestEscapeValue(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"", ""},
		{"=cmd", "'=cmd"},
		{"+1", "'+1"},
		{"-1", "'-1"},
		{"@sum", "'@sum"},
		{"\tx", "'\tx"},
		{"a,b", `"a,b"`},
		{`a"b`, `"a""b"`},
		{"a\nb", "\"a\nb\""},
		// Injection guard applies before quoting.
		{"=1+1,test", `"'=1+1,test"`},
	}
	for _, c := range cases {
		if got := EscapeValue(c.in); got != c.want {
			t.Fatalf("EscapeValue(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestBuildDocument(t *testing.T) {
	q1 := models.Question{ID: uuid.New(), Label: "Name", Order: 1}
	q2 := models.Question{ID: uuid.New(), Label: "Likes, dislikes", Order: 2}
	questions := []models.Question{q1, q2}

	respID := uuid.New()
	submitted := time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)
	responses := []models.Response{
		{
			ID:          respID,
			UserID:      "user-1",
			SubmittedAt: submitted,
			Answers: []models.Answer{
				{QuestionID: q1.ID, Value: "=HYPERLINK(evil)"},
				{QuestionID: q2.ID, Value: "cats,dogs"},
			},
		},
	}

	doc := BuildDocument(questions, responses)
	lines := strings.Split(strings.TrimRight(doc, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), doc)
	}
	if lines[0] != `Response ID,User ID,Submitted At,Name,"Likes, dislikes"` {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	wantRow := respID.String() + `,user-1,2026-04-01T09:30:00Z,'=HYPERLINK(evil),"cats,dogs"`
	if lines[1] != wantRow {
		t.Fatalf("unexpected row: %q, want %q", lines[1], wantRow)
	}
}

func TestBuildDocumentMissingAnswerIsEmptyCell(t *testing.T) {
	q1 := models.Question{ID: uuid.New(), Label: "A", Order: 1}
	q2 := models.Question{ID: uuid.New(), Label: "B", Order: 2}

	responses := []models.Response{
		{
			ID:          uuid.New(),
			UserID:      "u",
			SubmittedAt: time.Unix(0, 0).UTC(),
			Answers:     []models.Answer{{QuestionID: q2.ID, Value: "only B"}},
		},
	}

	doc := BuildDocument([]models.Question{q1, q2}, responses)
	lines := strings.Split(strings.TrimRight(doc, "\n"), "\n")
	if !strings.HasSuffix(lines[1], ",,only B") {
		t.Fatalf("expected empty cell for unanswered question: %q", lines[1])
	}
}
