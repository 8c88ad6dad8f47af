package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/jwilber99/calbright-portal-backend-seperated/internal/model"
)

func TestStudentCreateRequiresAdmin(t *testing.T) {
	t.Parallel()
	env := newEnv()

	// A regular registration cannot create students.
	rec := env.do(http.MethodPost, "/register", `{"username":"alice","password":"p1"}`, nil)
	userCookie := sessionCookie(rec)
	rec = env.do(http.MethodPost, "/students", `{"firstName":"Bob"}`, userCookie)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin create: got %d, want 403", rec.Code)
	}

	// The same call as admin succeeds with a generated id.
	adminCookie := env.loginAdmin(t)
	rec = env.do(http.MethodPost, "/students", `{"firstName":"Bob"}`, adminCookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("admin create: got %d, body %s", rec.Code, rec.Body.String())
	}
	var created model.Student
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created student: %v", err)
	}
	if created.ID == 0 || created.FirstName != "Bob" {
		t.Fatalf("created student = %+v", created)
	}
}

func TestStudentCreateValidation(t *testing.T) {
	t.Parallel()
	env := newEnv()
	adminCookie := env.loginAdmin(t)

	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"missing firstName", `{"lastName":"Smith"}`, "firstName"},
		{"blank firstName", `{"firstName":"   "}`, "firstName"},
		{"bad email", `{"firstName":"Ann","email":"not-an-address"}`, "email"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, "/students", tc.body, adminCookie)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("got %d, want 400", rec.Code)
			}
			var resp struct {
				Message string            `json:"message"`
				Errors  map[string]string `json:"errors"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Message != "Validation error" {
				t.Fatalf("message = %q", resp.Message)
			}
			if _, ok := resp.Errors[tc.field]; !ok {
				t.Fatalf("errors = %v, want entry for %s", resp.Errors, tc.field)
			}
		})
	}
}

func TestStudentGetIsIdempotent(t *testing.T) {
	t.Parallel()
	env := newEnv()
	adminCookie := env.loginAdmin(t)

	body := `{"firstName":"Ann","lastName":"Lee","email":"ann@example.com",` +
		`"address":{"city":"Sacramento","state":"CA"},"eyeColor":"brown"}`
	rec := env.do(http.MethodPost, "/students", body, adminCookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d", rec.Code)
	}
	var created model.Student
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	path := fmt.Sprintf("/students/%d", created.ID)
	first := env.do(http.MethodGet, path, "", adminCookie)
	second := env.do(http.MethodGet, path, "", adminCookie)
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("gets: %d/%d", first.Code, second.Code)
	}
	if !bytes.Equal(first.Body.Bytes(), second.Body.Bytes()) {
		t.Fatalf("repeated reads differ: %q vs %q", first.Body.String(), second.Body.String())
	}
	if !strings.Contains(first.Body.String(), `"city":"Sacramento"`) {
		t.Fatalf("nested address missing: %s", first.Body.String())
	}
}

func TestStudentGetUnknown(t *testing.T) {
	t.Parallel()
	env := newEnv()
	adminCookie := env.loginAdmin(t)

	rec := env.do(http.MethodGet, "/students/999", "", adminCookie)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("got %d, want 404", rec.Code)
	}
}

func TestStudentUpdateMergesFields(t *testing.T) {
	t.Parallel()
	env := newEnv()
	adminCookie := env.loginAdmin(t)

	rec := env.do(http.MethodPost, "/students",
		`{"firstName":"Ann","lastName":"Lee","eyeColor":"brown"}`, adminCookie)
	var created model.Student
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = env.do(http.MethodPut, fmt.Sprintf("/students/%d", created.ID),
		`{"lastName":"Chen","address":{"city":"Fresno"}}`, adminCookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: got %d, body %s", rec.Code, rec.Body.String())
	}
	var updated model.Student
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if updated.FirstName != "Ann" || updated.LastName != "Chen" ||
		updated.Address.City != "Fresno" || updated.EyeColor != "brown" {
		t.Fatalf("merge result = %+v", updated)
	}

	rec = env.do(http.MethodPut, "/students/999", `{"lastName":"Chen"}`, adminCookie)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("update unknown: got %d, want 404", rec.Code)
	}
}
