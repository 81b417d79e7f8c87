package model

// IssueType selects which NHTSA issue registry a taxonomy query runs against.
type IssueType string

const (
	IssueComplaints IssueType = "c"
	IssueRecalls    IssueType = "r"
)

// ModelRecord identifies a vehicle line for a given model year
type ModelRecord struct {
	ModelYear int    `json:"modelYear"`
	Make      string `json:"make"`
	Model     string `json:"model"`
}

// ComplaintRecord is an immutable snapshot of one complaint from the source
// registry. Optional fields stay nil when the API omits them so downstream
// code never confuses "absent" with a real zero or empty string.
type ComplaintRecord struct {
	Make             string  `json:"make"`
	Model            string  `json:"model"`
	ModelYear        int     `json:"modelYear"`
	ODINumber        int64   `json:"odiNumber"`
	Manufacturer     string  `json:"manufacturer"`
	Crash            bool    `json:"crash"`
	Fire             bool    `json:"fire"`
	NumberOfInjuries int     `json:"numberOfInjuries"`
	NumberOfDeaths   int     `json:"numberOfDeaths"`
	Summary          *string `json:"summary,omitempty"`
}

// RecallRecord is an immutable snapshot of one recall campaign.
type RecallRecord struct {
	Make             string  `json:"make"`
	Model            string  `json:"model"`
	ModelYear        int     `json:"modelYear"`
	CampaignNumber   string  `json:"campaignNumber"`
	Manufacturer     string  `json:"manufacturer"`
	Component        string  `json:"component"`
	Summary          string  `json:"summary"`
	Consequence      *string `json:"consequence,omitempty"`
	Remedy           *string `json:"remedy,omitempty"`
	Notes            *string `json:"notes,omitempty"`
	ReportDate       *string `json:"reportDate,omitempty"`
	AffectedVehicles *int    `json:"affectedVehicles,omitempty"`
}

// FeatureRow is one row of the training feature table: per-(make, model)
// complaint and recall counts. Derived, never fetched.
type FeatureRow struct {
	Make            string `json:"make"`
	Model           string `json:"model"`
	ComplaintsCount int    `json:"complaints_count"`
	RecallsCount    int    `json:"recalls_count"`
}
