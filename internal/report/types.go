// Package report defines the soil-analysis report model and decodes it from
// model-produced JSON.
package report

// SoilReport is one laboratory soil-analysis report.
type SoilReport struct {
	ReportNumber string   `json:"ReportNumber" yaml:"ReportNumber"`
	SampledDate  string   `json:"SampledDate" yaml:"SampledDate"` // as printed, not parsed
	Samples      []Sample `json:"Samples" yaml:"Samples"`
}

// Sample is the analysis of one soil sample. Order within a report is the
// order the samples appear in the document.
type Sample struct {
	SampleID                     string                `json:"SampleId" yaml:"SampleId"`
	LimeHistory                  string                `json:"LimeHistory" yaml:"LimeHistory"`
	Crop1                        string                `json:"Crop1" yaml:"Crop1"`
	Crop2                        string                `json:"Crop2" yaml:"Crop2"`
	Crop1LimeRecommendations     string                `json:"Crop1LimeRecommendations" yaml:"Crop1LimeRecommendations"`
	Crop2LimeRecommendations     string                `json:"Crop2LimeRecommendations" yaml:"Crop2LimeRecommendations"`
	PH                           float64               `json:"pH" yaml:"pH"`
	NpkFertilizerRecommendations string                `json:"NpkFertilizerRecommendations" yaml:"NpkFertilizerRecommendations"`
	PhosphorusIndex              uint32                `json:"PhosphorusIndex" yaml:"PhosphorusIndex"`
	PotassiumIndex               uint32                `json:"PotassiumIndex" yaml:"PotassiumIndex"`
	AdditionalTestResults        AdditionalTestResults `json:"AdditionalTestResults" yaml:"AdditionalTestResults"`
}

// AdditionalTestResults holds secondary measurements. Each field is nil
// when the report does not print it; nil is distinct from zero.
type AdditionalTestResults struct {
	HmPercent *float64 `json:"HmPercent" yaml:"HmPercent"` // humic matter, percent
	WV        *float64 `json:"WV" yaml:"WV"`               // weight per volume
	CEC       *float64 `json:"CEC" yaml:"CEC"`             // cation exchange capacity
	MnI       *uint32  `json:"Mn-I" yaml:"Mn-I"`
	ZnI       *uint32  `json:"Zn-I" yaml:"Zn-I"`
	CuI       *uint32  `json:"Cu-I" yaml:"Cu-I"`
	SI        *uint32  `json:"S-I" yaml:"S-I"`
}
