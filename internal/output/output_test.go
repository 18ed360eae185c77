package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soilextract/soilextract/internal/report"
)

func sampleReport() *report.SoilReport {
	cec := 6.4
	return &report.SoilReport{
		ReportNumber: "R1",
		SampledDate:  "2024-01-01",
		Samples: []report.Sample{{
			SampleID:              "S-01",
			PH:                    5.8,
			AdditionalTestResults: report.AdditionalTestResults{CEC: &cec},
		}},
	}
}

func TestTo(t *testing.T) {
	tests := []struct {
		format Format
		want   []string
	}{
		{FormatYAML, []string{"ReportNumber: R1", "pH: 5.8", "CEC: 6.4", "Mn-I: null"}},
		{FormatJSON, []string{`"ReportNumber": "R1"`, `"pH": 5.8`, `"CEC": 6.4`, `"Mn-I": null`}},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := To(&buf, tt.format, sampleReport()); err != nil {
				t.Fatalf("To() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}

	if err := To(&bytes.Buffer{}, "xml", sampleReport()); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("json"); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(json) = %q, %v", f, err)
	}
	if f, err := ParseFormat(""); err != nil || f != Default {
		t.Errorf("ParseFormat(\"\") = %q, %v", f, err)
	}
	if _, err := ParseFormat("toml"); err == nil {
		t.Error("expected error for toml")
	}

	SetFormat("json")
	if GetFormat() != FormatJSON {
		t.Errorf("GetFormat() = %q", GetFormat())
	}
	SetFormat("bogus")
	if GetFormat() != Default {
		t.Errorf("GetFormat() = %q, want default", GetFormat())
	}
}

func TestToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.json")
	if err := ToFile(path, FormatJSON, sampleReport()); err != nil {
		t.Fatalf("ToFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"SampleId": "S-01"`) {
		t.Errorf("unexpected file contents:\n%s", data)
	}
}
