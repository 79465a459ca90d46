package staging

// Record is a legacy record. Key returns its business key.
type Record interface {
	Key() string
}

// AccessConditionRecord is a closed-list access condition.
type AccessConditionRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Key returns the access condition code.
func (r AccessConditionRecord) Key() string { return r.ID }

// LegislationRecord is a closed-list legislation keyed by its IRI.
type LegislationRecord struct {
	ID      string `json:"id"`
	Section string `json:"section,omitempty"`
}

// Key returns the legislation IRI.
func (r LegislationRecord) Key() string { return r.ID }

// GroundForRetentionRecord is a closed-list ground for retention.
type GroundForRetentionRecord struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Key returns the ground for retention code.
func (r GroundForRetentionRecord) Key() string { return r.ID }

// SubsetRecord is a series or sub-series.
type SubsetRecord struct {
	ID               string `json:"id"`
	ParentID         string `json:"parentId,omitempty"`
	Directory        string `json:"directory,omitempty"`
	TransferringBody string `json:"transferringBody,omitempty"`
	CreatingBody     string `json:"creatingBody,omitempty"`
}

// Key returns the subset reference.
func (r SubsetRecord) Key() string { return r.ID }

// AssetRecord is a catalogued record unit. XML carries the embedded
// metadata island, raw or base64 encoded.
type AssetRecord struct {
	ID            string `json:"id"`
	SubsetID      string `json:"subsetId"`
	Name          string `json:"name,omitempty"`
	Description   string `json:"description,omitempty"`
	LegalStatus   string `json:"legalStatus,omitempty"`
	CoveringDates string `json:"coveringDates,omitempty"`
	Language      string `json:"language,omitempty"`
	XML           string `json:"xml,omitempty"`
}

// Key returns the asset reference.
func (r AssetRecord) Key() string { return r.ID }

// VariationRecord is a digital manifestation of an asset.
type VariationRecord struct {
	ID      string `json:"id"`
	AssetID string `json:"assetId"`
	Name    string `json:"name,omitempty"`
	Note    string `json:"note,omitempty"`
}

// Key returns the variation DRI id.
func (r VariationRecord) Key() string { return r.ID }

// VariationFileRecord carries the file-level facts of a variation.
type VariationFileRecord struct {
	ID       string `json:"id"`
	Location string `json:"location,omitempty"`
	Checksum string `json:"checksum,omitempty"`
	Size     *int64 `json:"size,omitempty"`
	XML      string `json:"xml,omitempty"`
}

// Key returns the variation DRI id.
func (r VariationFileRecord) Key() string { return r.ID }

// Target types of sensitivity reviews and changes.
const (
	TargetAsset     = "asset"
	TargetSubset    = "subset"
	TargetVariation = "variation"
)

// SensitivityReviewRecord is a sensitivity review of an asset, subset or
// variation with its access restriction and retention.
type SensitivityReviewRecord struct {
	ID                     string   `json:"id"`
	TargetType             string   `json:"targetType"`
	TargetID               string   `json:"targetId"`
	Date                   string   `json:"date,omitempty"`
	SensitiveName          string   `json:"sensitiveName,omitempty"`
	SensitiveDescription   string   `json:"sensitiveDescription,omitempty"`
	AccessConditionCode    string   `json:"accessConditionCode,omitempty"`
	Legislations           []string `json:"legislations,omitempty"`
	ReviewDate             string   `json:"reviewDate,omitempty"`
	RestrictionStartDate   string   `json:"restrictionStartDate,omitempty"`
	RestrictionDuration    *int     `json:"restrictionDuration,omitempty"`
	RestrictionEndYear     *int     `json:"restrictionEndYear,omitempty"`
	RestrictionDescription string   `json:"restrictionDescription,omitempty"`
	GroundForRetentionCode string   `json:"groundForRetentionCode,omitempty"`
	InstrumentNumber       *int64   `json:"instrumentNumber,omitempty"`
	InstrumentSignedDate   string   `json:"instrumentSignedDate,omitempty"`
	RetentionReviewDate    string   `json:"retentionReviewDate,omitempty"`
	PreviousID             string   `json:"previousId,omitempty"`
}

// Key returns the sensitivity review DRI id.
func (r SensitivityReviewRecord) Key() string { return r.ID }

// ChangeRecord is an audit entry against an asset, subset or variation.
type ChangeRecord struct {
	ID          string `json:"id"`
	TargetType  string `json:"targetType"`
	TargetID    string `json:"targetId"`
	Timestamp   string `json:"timestamp,omitempty"`
	Description string `json:"description,omitempty"`
	Operator    string `json:"operator,omitempty"`
}

// Key returns the change DRI id.
func (r ChangeRecord) Key() string { return r.ID }
