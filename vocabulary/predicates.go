package vocabulary

// Access conditions, legislations and grounds for retention.
const (
	AccessConditionCode = Schema + "accessConditionCode"
	AccessConditionName = Schema + "accessConditionName"

	LegislationHasUkLegislation = Schema + "legislationHasUkLegislation"
	LegislationSectionReference = Schema + "legislationSectionReference"

	GroundForRetentionCode        = Schema + "groundForRetentionCode"
	GroundForRetentionDescription = Schema + "groundForRetentionDescription"
)

// Subsets and formal bodies.
const (
	SubsetReference           = Schema + "subsetReference"
	SubsetHasBroaderSubset    = Schema + "subsetHasBroaderSubset"
	SubsetHasTransferringBody = Schema + "subsetHasTransferringBody"
	SubsetHasCreatingBody     = Schema + "subsetHasCreatingBody"
	SubsetHasRetention        = Schema + "subsetHasRetention"
	ImportLocation            = Schema + "importLocation"

	FormalBodyName = Schema + "formalBodyName"
)

// Assets.
const (
	AssetReference                = Schema + "assetReference"
	AssetHasSubset                = Schema + "assetHasSubset"
	AssetName                     = Schema + "assetName"
	AssetDescription              = Schema + "assetDescription"
	AssetHasLegalStatus           = Schema + "assetHasLegalStatus"
	AssetHasLanguage              = Schema + "assetHasLanguage"
	AssetHasCoveringDateRange     = Schema + "assetHasCoveringDateRange"
	AssetSummary                  = Schema + "assetSummary"
	AssetAdministrativeBackground = Schema + "assetAdministrativeBackground"
	AssetArrangement              = Schema + "assetArrangement"
	AssetPhysicalCondition        = Schema + "assetPhysicalCondition"
	AssetPhysicalDescription      = Schema + "assetPhysicalDescription"
	AssetNote                     = Schema + "assetNote"
	AssetCuratedTitle             = Schema + "assetCuratedTitle"
	AssetPastReference            = Schema + "assetPastReference"
	AssetRelatedMaterial          = Schema + "assetRelatedMaterial"
	AssetHasRelatedAsset          = Schema + "assetHasRelatedAsset"
	AssetPhysicalItemCount        = Schema + "assetPhysicalItemCount"
	AssetHasCopyright             = Schema + "assetHasCopyright"
	AssetHeldBy                   = Schema + "assetHeldBy"
	AssetHasGeographicalPlace     = Schema + "assetHasGeographicalPlace"
	AssetHasSealCategory          = Schema + "assetHasSealCategory"
	AssetHasBattalion             = Schema + "assetHasBattalion"
	AssetHasWitness               = Schema + "assetHasWitness"
	AssetHasKinship               = Schema + "assetHasKinship"
	AssetHasSealDateRange         = Schema + "assetHasSealDateRange"
	AssetHasSealStartDate         = Schema + "assetHasSealStartDate"
	AssetHasSealEndDate           = Schema + "assetHasSealEndDate"
	AssetHasDimension             = Schema + "assetHasDimension"

	KinshipRelation = Schema + "kinshipRelation"
	KinshipName     = Schema + "kinshipName"
)

// Entities minted on first mention.
const (
	LanguageName          = Schema + "languageName"
	CopyrightTitle        = Schema + "copyrightTitle"
	GeographicalPlaceName = Schema + "geographicalPlaceName"
	SealCategoryName      = Schema + "sealCategoryName"
	BattalionName         = Schema + "battalionName"
	WitnessKey            = Schema + "witnessKey"
	OperatorName          = Schema + "operatorName"
)

// Structured dates, date ranges and dimensions. These hang off owned
// nested nodes.
const (
	Year          = Schema + "year"
	Month         = Schema + "month"
	Day           = Schema + "day"
	IsApproximate = Schema + "isApproximate"

	RangeStart         = Schema + "rangeStart"
	RangeEnd           = Schema + "rangeEnd"
	DateRangeQualifier = Schema + "dateRangeQualifier"

	DimensionQualifierPredicate = Schema + "dimensionQualifier"
	DimensionHasFirstPair       = Schema + "dimensionHasFirstPair"
	DimensionHasSecondPair      = Schema + "dimensionHasSecondPair"
	FirstMillimetre             = Schema + "firstMillimetre"
	SecondMillimetre            = Schema + "secondMillimetre"
)

// Variations and their files.
const (
	VariationDriId            = Schema + "variationDriId"
	VariationName             = Schema + "variationName"
	VariationNote             = Schema + "variationNote"
	VariationHasAsset         = Schema + "variationHasAsset"
	VariationRelativeLocation = Schema + "variationRelativeLocation"
	VariationChecksum         = Schema + "variationChecksum"
	VariationSizeBytes        = Schema + "variationSizeBytes"
	VariationFileFormat       = Schema + "variationFileFormat"
	VariationHasLanguage      = Schema + "variationHasLanguage"
	VariationFileNote         = Schema + "variationFileNote"
	VariationHasScanDate      = Schema + "variationHasScanDate"
)

// Sensitivity reviews.
const (
	SensitivityReviewDriId                    = Schema + "sensitivityReviewDriId"
	SensitivityReviewHasDate                  = Schema + "sensitivityReviewHasDate"
	SensitivityReviewSensitiveName            = Schema + "sensitivityReviewSensitiveName"
	SensitivityReviewSensitiveDescription     = Schema + "sensitivityReviewSensitiveDescription"
	SensitivityReviewHasAccessCondition       = Schema + "sensitivityReviewHasAccessCondition"
	SensitivityReviewHasAsset                 = Schema + "sensitivityReviewHasAsset"
	SensitivityReviewHasSubset                = Schema + "sensitivityReviewHasSubset"
	SensitivityReviewHasVariation             = Schema + "sensitivityReviewHasVariation"
	SensitivityReviewHasPastSensitivityReview = Schema + "sensitivityReviewHasPastSensitivityReview"
	SensitivityReviewHasRestriction           = Schema + "sensitivityReviewHasRestriction"
	SensitivityReviewHasRetentionRestriction  = Schema + "sensitivityReviewHasRetentionRestriction"

	RestrictionHasReviewDate           = Schema + "restrictionHasReviewDate"
	RestrictionHasCalculationStartDate = Schema + "restrictionHasCalculationStartDate"
	RestrictionDuration                = Schema + "restrictionDuration"
	RestrictionEndYear                 = Schema + "restrictionEndYear"
	RestrictionDescription             = Schema + "restrictionDescription"
	RestrictionHasLegislation          = Schema + "restrictionHasLegislation"

	RetentionHasGroundForRetention   = Schema + "retentionHasGroundForRetention"
	RetentionInstrumentNumber        = Schema + "retentionInstrumentNumber"
	RetentionHasInstrumentSignedDate = Schema + "retentionHasInstrumentSignedDate"
	RetentionHasReviewDate           = Schema + "retentionHasReviewDate"
)

// Changes.
const (
	ChangeDriId        = Schema + "changeDriId"
	ChangeDescription  = Schema + "changeDescription"
	ChangeDateTime     = Schema + "changeDateTime"
	ChangeHasOperator  = Schema + "changeHasOperator"
	ChangeHasAsset     = Schema + "changeHasAsset"
	ChangeHasSubset    = Schema + "changeHasSubset"
	ChangeHasVariation = Schema + "changeHasVariation"
)

// Well-known constant objects.
const (
	PublicRecord      = Schema + "PublicRecord"
	WelshPublicRecord = Schema + "WelshPublicRecord"
	NotPublicRecord   = Schema + "NotPublicRecord"
)

// DateRangeQualifierIRI returns the constant for a date range kind name
// such as "Obverse" or "Approximate".
func DateRangeQualifierIRI(kind string) string {
	return Schema + "DateRange" + kind
}

// DimensionQualifierIRI returns the constant for a dimension kind name
// such as "ObverseFragment".
func DimensionQualifierIRI(kind string) string {
	return Schema + "Dimension" + kind
}
