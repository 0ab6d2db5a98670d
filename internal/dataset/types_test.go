package dataset

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestStatusConstants(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusSuccess, "SUCCESS"},
		{StatusFailed, "FAILED"},
	}
	for _, tt := range tests {
		if string(tt.status) != tt.want {
			t.Errorf("Status %q != %q", tt.status, tt.want)
		}
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"SUCCESS", StatusSuccess, false},
		{"FAILED", StatusFailed, false},
		{"success", "", true},
		{"", "", true},
		{"TIMEOUT", "", true},
	}
	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseStatus(%q) should error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseStatus(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRunKeyLess(t *testing.T) {
	tests := []struct {
		a, b RunKey
		want bool
	}{
		{RunKey{1, "A"}, RunKey{2, "A"}, true},
		{RunKey{2, "A"}, RunKey{1, "B"}, false},
		{RunKey{1, "A"}, RunKey{1, "B"}, true},
		{RunKey{1, "B"}, RunKey{1, "B"}, false},
	}
	for _, tt := range tests {
		if got := tt.a.Less(tt.b); got != tt.want {
			t.Errorf("%v.Less(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestKeysAgree(t *testing.T) {
	v := VulnerabilityRecord{Run: 3, Config: "B"}
	s := EnergySample{Run: 3, Config: "B"}
	e := EnergySummary{Run: 3, Config: "B"}
	if v.Key() != s.Key() || s.Key() != e.Key() {
		t.Errorf("keys differ: %v %v %v", v.Key(), s.Key(), e.Key())
	}
	if v.Key().String() != "run 3/config B" {
		t.Errorf("String() = %q", v.Key().String())
	}
}

func TestMergedRecordSucceeded(t *testing.T) {
	ok := MergedRecord{VulnerabilityRecord: VulnerabilityRecord{Status: StatusSuccess}}
	failed := MergedRecord{VulnerabilityRecord: VulnerabilityRecord{Status: StatusFailed}}
	if !ok.Succeeded() {
		t.Error("SUCCESS record should report Succeeded")
	}
	if failed.Succeeded() {
		t.Error("FAILED record should not report Succeeded")
	}
}

func TestErrorsMatchWithAs(t *testing.T) {
	wrapped := fmt.Errorf("load: %w", &SchemaError{File: "vulnerability_summary.csv", Column: "BugCount"})

	var schemaErr *SchemaError
	if !errors.As(wrapped, &schemaErr) {
		t.Fatal("errors.As should find SchemaError")
	}
	if schemaErr.Column != "BugCount" {
		t.Errorf("Column = %q, want BugCount", schemaErr.Column)
	}

	var missing *MissingInputError
	if errors.As(wrapped, &missing) {
		t.Error("SchemaError should not match MissingInputError")
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&MissingInputError{What: "session directory", Path: "/tmp/x"}, "missing session directory: /tmp/x"},
		{&MalformedFilenameError{Name: "run_x_config_A.csv", Reason: "run number is not an integer"}, `"run_x_config_A.csv"`},
		{&SchemaError{File: "f.csv", Column: "Run"}, `required column "Run"`},
		{&DuplicateKeyError{File: "f.csv", Key: RunKey{1, "A"}, Lines: []int{2, 5}}, "lines 2, 5"},
	}
	for _, tt := range tests {
		if !strings.Contains(tt.err.Error(), tt.want) {
			t.Errorf("%T message %q missing %q", tt.err, tt.err.Error(), tt.want)
		}
	}
}
