package report

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

const fullSample = `{
  "SampleId": "S-01",
  "LimeHistory": "none",
  "Crop1": "Corn",
  "Crop2": "Soybean",
  "Crop1LimeRecommendations": "1.5 t/a",
  "Crop2LimeRecommendations": "1.0 t/a",
  "pH": 5.8,
  "NpkFertilizerRecommendations": "120-40-60",
  "PhosphorusIndex": 42,
  "PotassiumIndex": 65,
  "AdditionalTestResults": {
    "HmPercent": 0.38,
    "WV": 1.21,
    "CEC": 6.4,
    "Mn-I": 51,
    "Zn-I": 120,
    "Cu-I": 80,
    "S-I": 32
  }
}`

func reportWith(samples ...string) string {
	return `{"ReportNumber":"R1","SampledDate":"03/14/2024","Samples":[` + strings.Join(samples, ",") + `]}`
}

func TestDecode_FullReport(t *testing.T) {
	r, err := Decode(reportWith(fullSample))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if r.ReportNumber != "R1" || r.SampledDate != "03/14/2024" {
		t.Errorf("unexpected header: %+v", r)
	}
	if len(r.Samples) != 1 {
		t.Fatalf("expected 1 sample, got %d", len(r.Samples))
	}
	s := r.Samples[0]
	if s.SampleID != "S-01" || s.PH != 5.8 || s.PhosphorusIndex != 42 || s.PotassiumIndex != 65 {
		t.Errorf("unexpected sample: %+v", s)
	}
	atr := s.AdditionalTestResults
	if atr.CEC == nil || *atr.CEC != 6.4 {
		t.Errorf("CEC = %v", atr.CEC)
	}
	if atr.MnI == nil || *atr.MnI != 51 || atr.SI == nil || *atr.SI != 32 {
		t.Errorf("unexpected index fields: %+v", atr)
	}
}

func TestDecode_EmptySamples(t *testing.T) {
	r, err := Decode(`{"ReportNumber":"R1","SampledDate":"2024-01-01","Samples":[]}`)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if r.Samples == nil || len(r.Samples) != 0 {
		t.Errorf("Samples = %#v, want empty", r.Samples)
	}
}

func TestDecode_OptionalFieldsAbsent(t *testing.T) {
	sample := strings.Replace(fullSample, fullSample[strings.Index(fullSample, `"AdditionalTestResults"`):],
		`"AdditionalTestResults": {}}`, 1)
	r, err := Decode(reportWith(sample))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	atr := r.Samples[0].AdditionalTestResults
	if atr.HmPercent != nil || atr.WV != nil || atr.CEC != nil ||
		atr.MnI != nil || atr.ZnI != nil || atr.CuI != nil || atr.SI != nil {
		t.Errorf("expected all fields absent, got %+v", atr)
	}
}

func TestDecode_ExplicitZeroIsNotAbsent(t *testing.T) {
	r, err := Decode(reportWith(strings.Replace(fullSample, `"Mn-I": 51`, `"Mn-I": 0`, 1)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if r.Samples[0].AdditionalTestResults.MnI == nil {
		t.Fatal("explicit zero decoded as absent")
	}
}

func TestDecode_NullOptionalField(t *testing.T) {
	r, err := Decode(reportWith(strings.Replace(fullSample, `"CEC": 6.4`, `"CEC": null`, 1)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if r.Samples[0].AdditionalTestResults.CEC != nil {
		t.Error("null decoded as present")
	}
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing ReportNumber", `{"SampledDate":"d","Samples":[]}`},
		{"missing Samples", `{"ReportNumber":"R1","SampledDate":"d"}`},
		{"not json", `{"ReportNumber": R1}`},
		{"trailing data", `{"ReportNumber":"R1","SampledDate":"d","Samples":[]} extra`},
		{"array root", `[]`},
		{"non-numeric pH", reportWith(strings.Replace(fullSample, `"pH": 5.8`, `"pH": "5.8"`, 1))},
		{"negative index", reportWith(strings.Replace(fullSample, `"PhosphorusIndex": 42`, `"PhosphorusIndex": -1`, 1))},
		{"fractional index", reportWith(strings.Replace(fullSample, `"PotassiumIndex": 65`, `"PotassiumIndex": 6.5`, 1))},
		{"negative optional index", reportWith(strings.Replace(fullSample, `"Zn-I": 120`, `"Zn-I": -3`, 1))},
		{"missing AdditionalTestResults", reportWith(fullSample[:strings.Index(fullSample, `,
  "AdditionalTestResults"`)] + "}")},
		{"case-variant pH only", reportWith(strings.Replace(fullSample, `"pH"`, `"ph"`, 1))},
		{"ReportNumber as number", `{"ReportNumber":7,"SampledDate":"d","Samples":[]}`},
		{"invalid UTF-8", "{\"ReportNumber\":\"R\xff\",\"SampledDate\":\"d\",\"Samples\":[]}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Decode(tt.input)
			if err == nil {
				t.Fatalf("expected error, got %+v", r)
			}
			if r != nil {
				t.Error("expected nil report on error")
			}
			var se *SchemaError
			if !errors.As(err, &se) {
				t.Fatalf("expected *SchemaError, got %T: %v", err, err)
			}
			if se.JSON != tt.input {
				t.Error("SchemaError does not preserve the payload")
			}
		})
	}
}

func TestDecode_IgnoresUnknownAndCaseVariantKeys(t *testing.T) {
	sample := strings.Replace(fullSample, `"pH": 5.8,`, `"pH": 5.8, "ph": 9.9, "PH": 1.1, "Notes": "x",`, 1)
	sample = strings.Replace(sample, `"Mn-I": 51,`, `"Mn-I": 51, "mn-i": 7, "MN-I": 8,`, 1)
	input := `{"reportnumber":"wrong","ReportNumber":"R1","SampledDate":"d","Lab":"X","Samples":[` + sample + `]}`

	r, err := Decode(input)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if r.ReportNumber != "R1" {
		t.Errorf("ReportNumber = %q", r.ReportNumber)
	}
	if r.Samples[0].PH != 5.8 {
		t.Errorf("pH = %v, want 5.8", r.Samples[0].PH)
	}
	if got := *r.Samples[0].AdditionalTestResults.MnI; got != 51 {
		t.Errorf("Mn-I = %d, want 51", got)
	}
}

func TestDecode_PreservesSampleOrder(t *testing.T) {
	a := strings.Replace(fullSample, `"S-01"`, `"B"`, 1)
	b := strings.Replace(fullSample, `"S-01"`, `"A"`, 1)
	c := strings.Replace(fullSample, `"S-01"`, `"C"`, 1)
	r, err := Decode(reportWith(a, b, c))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	var ids []string
	for _, s := range r.Samples {
		ids = append(ids, s.SampleID)
	}
	if strings.Join(ids, ",") != "B,A,C" {
		t.Errorf("order = %v", ids)
	}
}

func TestSoilReport_WireNames(t *testing.T) {
	zn := uint32(4)
	r := SoilReport{
		ReportNumber: "R1",
		Samples: []Sample{{
			SampleID:              "S",
			PH:                    6.1,
			AdditionalTestResults: AdditionalTestResults{ZnI: &zn},
		}},
	}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	out := string(data)
	for _, key := range []string{`"SampleId":"S"`, `"pH":6.1`, `"Zn-I":4`, `"Mn-I":null`, `"HmPercent":null`} {
		if !strings.Contains(out, key) {
			t.Errorf("JSON %s missing %s", out, key)
		}
	}

	back, err := Decode(out)
	if err != nil {
		t.Fatalf("Decode(Marshal()) error = %v", err)
	}
	if *back.Samples[0].AdditionalTestResults.ZnI != 4 || back.Samples[0].AdditionalTestResults.MnI != nil {
		t.Errorf("unexpected round trip: %+v", back.Samples[0].AdditionalTestResults)
	}

	y, err := yaml.Marshal(r)
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	if !strings.Contains(string(y), "Zn-I: 4") || !strings.Contains(string(y), "pH: 6.1") {
		t.Errorf("YAML missing wire names:\n%s", y)
	}
}

func TestSchema_Compiles(t *testing.T) {
	if _, err := compiled(); err != nil {
		t.Fatalf("schema does not compile: %v", err)
	}
	var v map[string]any
	if err := json.Unmarshal(Schema(), &v); err != nil {
		t.Fatalf("Schema() is not JSON: %v", err)
	}
	if v["type"] != "object" {
		t.Errorf("schema root type = %v", v["type"])
	}
}

func TestSchemaError_LocationIndependentOfWorkingDir(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	_, err = Decode(`{"SampledDate":"d","Samples":[]}`)
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(err.Error(), wd) {
		t.Errorf("error mentions working directory: %v", err)
	}
	if strings.Contains(err.Error(), "file://") {
		t.Errorf("error carries a file URL: %v", err)
	}
}
