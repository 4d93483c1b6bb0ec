package extract

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mcbagz/edSIS/internal/config"
	"github.com/mcbagz/edSIS/internal/model"
	"github.com/mcbagz/edSIS/internal/storage"
	apperrors "github.com/mcbagz/edSIS/pkg/errors"

	"github.com/xuri/excelize/v2"
)

func sisCreds() model.Credentials {
	return model.Credentials{SIS: model.Credential{System: model.SystemSIS, Token: "sis-token"}}
}

func TestDecodeCollection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		entity  model.EntityType
		body    string
		want    int
		wantErr bool
	}{
		{name: "bare array", entity: model.EntitySchools, body: `[{"schoolId":1},{"schoolId":2}]`, want: 2},
		{name: "entity wrapper", entity: model.EntityStudents, body: `{"students":[{"studentUniqueId":"S1"}]}`, want: 1},
		{name: "data wrapper", entity: model.EntitySchools, body: `{"data":[{"schoolId":1}]}`, want: 1},
		{name: "empty array", entity: model.EntitySchools, body: `[]`, want: 0},
		{name: "wrapper without array", entity: model.EntityStudents, body: `{"total":3}`, wantErr: true},
		{name: "scalar", entity: model.EntitySchools, body: `42`, wantErr: true},
		{name: "empty body", entity: model.EntitySchools, body: ``, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			coll, err := decodeCollection(tt.entity, []byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if coll.Len() != tt.want {
				t.Errorf("Expected %d records, got %d", tt.want, coll.Len())
			}
		})
	}
}

func TestAPISourceFetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sis-token" {
			t.Errorf("Expected bearer token, got %q", got)
		}
		switch r.URL.Path {
		case "/schools":
			w.Write([]byte(`[{"schoolId":255901,"name":"Grand Bend High School"}]`))
		case "/students":
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"db down"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.SIS.BaseURL = srv.URL + "/"
	src := NewAPISource(cfg, srv.Client())

	coll, err := src.Fetch(context.Background(), sisCreds(), model.EntitySchools)
	if err != nil {
		t.Fatalf("Fetch schools failed: %v", err)
	}
	var school model.SisSchool
	if err := json.Unmarshal(coll.Records[0], &school); err != nil {
		t.Fatal(err)
	}
	if school.NaturalKey() != "255901" {
		t.Errorf("Expected school 255901, got %q", school.NaturalKey())
	}

	_, err = src.Fetch(context.Background(), sisCreds(), model.EntityStudents)
	var fetchErr *apperrors.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected *FetchError, got %v", err)
	}
	if fetchErr.StatusCode != http.StatusInternalServerError || fetchErr.Body != `{"error":"db down"}` {
		t.Errorf("Expected status and body on error, got %d %q", fetchErr.StatusCode, fetchErr.Body)
	}
	if !apperrors.IsFatal(err) {
		t.Error("Expected fetch error to be fatal")
	}
}

func TestAPISourceRequiresToken(t *testing.T) {
	t.Parallel()

	src := NewAPISource(config.Default(), http.DefaultClient)
	_, err := src.Fetch(context.Background(), model.Credentials{}, model.EntitySchools)
	if !errors.Is(err, apperrors.ErrMissingToken) {
		t.Errorf("Expected ErrMissingToken, got %v", err)
	}
}

func TestSnapshotThenFileSource(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"students":[{"studentUniqueId":"604822","firstName":"Lisa"}]}`))
	}))
	defer srv.Close()

	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.SIS.BaseURL = srv.URL
	snap := NewSnapshotSource(NewAPISource(cfg, srv.Client()), store)
	if !snap.NeedsSIS() {
		t.Error("Expected snapshot of API source to need SIS")
	}
	if _, err := snap.Fetch(ctx, sisCreds(), model.EntityStudents); err != nil {
		t.Fatalf("Snapshot fetch failed: %v", err)
	}

	rc, err := store.Download(ctx, "students.json")
	if err != nil {
		t.Fatalf("Snapshot not written: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if !strings.Contains(string(data), "\n    \"students\": [") {
		t.Errorf("Expected 4-space indented snapshot, got:\n%s", data)
	}

	file := NewFileSource(store)
	coll, err := file.Fetch(ctx, model.Credentials{}, model.EntityStudents)
	if err != nil {
		t.Fatalf("File fetch failed: %v", err)
	}
	if coll.Len() != 1 {
		t.Errorf("Expected 1 student from snapshot, got %d", coll.Len())
	}

	_, err = file.Fetch(ctx, model.Credentials{}, model.EntitySchools)
	if !errors.Is(err, apperrors.ErrFetchFailed) {
		t.Errorf("Expected missing snapshot to be a fetch failure, got %v", err)
	}
}

func TestWorkbookSource(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sis.xlsx")
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", "Schools")
	f.SetSheetRow("Schools", "A1", &[]interface{}{"school_id", "name", "type", "state"})
	f.SetSheetRow("Schools", "A2", &[]interface{}{"255901", "Grand Bend High School", "High", "TX"})
	f.SetSheetRow("Schools", "A4", &[]interface{}{"255902", "Grand Bend Middle School", "Middle", "TX"})
	if _, err := f.NewSheet("students"); err != nil {
		t.Fatal(err)
	}
	f.SetSheetRow("students", "A1", &[]interface{}{"studentUniqueId", "First Name", "last_name", "birthDate"})
	f.SetSheetRow("students", "A2", &[]interface{}{"604822", "Lisa", "Woods", "2010-01-13"})
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()

	src := NewWorkbookSource(path)

	schools, err := src.Fetch(context.Background(), model.Credentials{}, model.EntitySchools)
	if err != nil {
		t.Fatalf("Fetch schools failed: %v", err)
	}
	if schools.Len() != 2 {
		t.Fatalf("Expected blank row to be skipped and 2 schools read, got %d", schools.Len())
	}
	var school model.SisSchool
	if err := json.Unmarshal(schools.Records[0], &school); err != nil {
		t.Fatalf("Failed to decode workbook school: %v", err)
	}
	if school.NaturalKey() != "255901" || school.Type != "High" {
		t.Errorf("Unexpected school %+v", school)
	}

	students, err := src.Fetch(context.Background(), model.Credentials{}, model.EntityStudents)
	if err != nil {
		t.Fatalf("Fetch students failed: %v", err)
	}
	var student model.SisStudent
	if err := json.Unmarshal(students.Records[0], &student); err != nil {
		t.Fatal(err)
	}
	if student.FirstName != "Lisa" || student.Surname() != "Woods" {
		t.Errorf("Expected header mapping to SIS fields, got %+v", student)
	}
}

func TestWorkbookSourceMissingSheet(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.xlsx")
	f := excelize.NewFile()
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()

	_, err := NewWorkbookSource(path).Fetch(context.Background(), model.Credentials{}, model.EntityStudents)
	if !errors.Is(err, apperrors.ErrFetchFailed) {
		t.Errorf("Expected fetch failure for missing sheet, got %v", err)
	}
}

func TestFieldName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"studentUniqueId":   "studentUniqueId",
		"student_unique_id": "studentUniqueId",
		"Student Unique ID": "studentUniqueId",
		"ZipCode":           "zipCode",
		"":                  "",
	}
	for in, want := range cases {
		if got := fieldName(in); got != want {
			t.Errorf("fieldName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewSource(t *testing.T) {
	t.Parallel()

	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Extract.Snapshot = true
	src, err := NewSource(cfg, store)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := src.(*SnapshotSource); !ok {
		t.Errorf("Expected snapshot wrapper for api source, got %T", src)
	}

	cfg.Extract.Source = config.SourceFile
	src, err = NewSource(cfg, store)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := src.(*FileSource); !ok {
		t.Errorf("Expected bare file source, got %T", src)
	}

	cfg.Extract.Source = "ldap"
	if _, err := NewSource(cfg, store); !errors.Is(err, apperrors.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}
