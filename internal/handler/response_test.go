package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestReadJSON(t *testing.T) {
	t.Parallel()

	type payload struct {
		Title  string `json:"title"`
		Amount int    `json:"amount"`
	}

	tests := []struct {
		name   string
		body   string
		ok     bool
		detail string
	}{
		{"valid", `{"title":"Venue","amount":3}`, true, ""},
		{"trailing whitespace", "{\"title\":\"Venue\"}\n", true, ""},
		{"empty", ``, false, "request body is empty"},
		{"truncated", `{"title":`, false, "request body is truncated JSON"},
		{"syntax", `{"title" "x"}`, false, "malformed JSON at offset"},
		{"wrong type", `{"amount":"three"}`, false, `field "amount" must be int`},
		{"unknown field", `{"titel":"x"}`, false, `unknown field "titel"`},
		{"two objects", `{"title":"a"}{"title":"b"}`, false, "single JSON object"},
		{"too large", `{"title":"` + strings.Repeat("x", maxJSONBody) + `"}`, false, "exceeds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/todos", strings.NewReader(tt.body))

			var p payload
			if got := ReadJSON(rr, req, &p); got != tt.ok {
				t.Fatalf("ReadJSON = %v, want %v", got, tt.ok)
			}
			if tt.ok {
				return
			}
			if rr.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rr.Code)
			}
			if pd := decodeProblem(t, rr); !strings.Contains(pd.Detail, tt.detail) {
				t.Errorf("detail %q does not mention %q", pd.Detail, tt.detail)
			}
		})
	}
}

func TestWriteCollection_NilIsEmptyList(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	WriteCollection(rr, http.StatusOK, nil, nil, nil)

	if got := strings.TrimSpace(rr.Body.String()); got != `{"data":[]}` {
		t.Errorf("unexpected body %s", got)
	}
}
