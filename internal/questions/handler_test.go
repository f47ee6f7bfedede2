package questions

import (
	"testing"

	"github.com/enqueta/backend/internal/models"
)

func TestValidateQuestionRequest(t *testing.T) {
	cases := []struct {
		name    string
		req     QuestionRequest
		wantErr bool
	}{
		{"text", QuestionRequest{Type: "TEXT", Label: "Name"}, false},
		{"radio with options", QuestionRequest{Type: "RADIO", Label: "Pick", Options: []string{"A", "B"}}, false},
		{"radio without options", QuestionRequest{Type: "RADIO", Label: "Pick"}, true},
		{"checkbox without options", QuestionRequest{Type: "CHECKBOX", Label: "Pick"}, true},
		{"select without options", QuestionRequest{Type: "SELECT", Label: "Pick"}, true},
		{"text with options", QuestionRequest{Type: "TEXT", Label: "Name", Options: []string{"A"}}, true},
		{"unknown type", QuestionRequest{Type: "SLIDER", Label: "Rate"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			qt, msg := validate(&tc.req)
			if tc.wantErr && msg == "" {
				t.Fatal("expected a validation error")
			}
			if !tc.wantErr {
				if msg != "" {
					t.Fatalf("unexpected error %q", msg)
				}
				if qt != models.QuestionType(tc.req.Type) {
					t.Fatalf("unexpected type %q", qt)
				}
			}
		})
	}
}
