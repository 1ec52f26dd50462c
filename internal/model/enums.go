package model

// Role is the closed set of user roles. Role checks go through the
// capability sets below rather than ad-hoc string comparisons.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleQCManager    Role = "qc_manager"
	RoleShiftChemist Role = "shift_chemist"
	RoleChemist      Role = "chemist"
	RoleOther        Role = "other"
)

// Capability sets. Admin is privileged across all tiers.
var (
	// AdminTier may manage users and mutate or delete any sample.
	AdminTier = map[Role]bool{RoleAdmin: true, RoleQCManager: true}

	// QCTier may enter test results and originate requests from the QC
	// department.
	QCTier = map[Role]bool{
		RoleAdmin:        true,
		RoleQCManager:    true,
		RoleShiftChemist: true,
		RoleChemist:      true,
	}

	// OversightTier sees every sample regardless of assignment.
	OversightTier = map[Role]bool{
		RoleAdmin:        true,
		RoleQCManager:    true,
		RoleShiftChemist: true,
	}

	// RequesterTier may create requests directed to the QC department.
	RequesterTier = map[Role]bool{RoleAdmin: true, RoleOther: true}
)

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleQCManager, RoleShiftChemist, RoleChemist, RoleOther:
		return true
	}
	return false
}

// In reports membership of r in a capability set.
func (r Role) In(set map[Role]bool) bool {
	return set[r]
}

// SampleType is the closed set of sugar-production stages a sample can be
// drawn from.
type SampleType string

const (
	SampleWhiteSugar       SampleType = "white_sugar"
	SampleBrownSugar       SampleType = "brown_sugar"
	SampleRawSugar         SampleType = "raw_sugar"
	SampleFineLiquor       SampleType = "fine_liquor"
	SamplePolishLiquor     SampleType = "polish_liquor"
	SampleEvaporatorLiquor SampleType = "evaporator_liquor"
	SampleSatOut           SampleType = "sat_out"
	SampleCondensate       SampleType = "condensate"
	SampleCoolingWater     SampleType = "cooling_water"
	SampleWashWater        SampleType = "wash_water"
)

// batchPrefixes maps each sample type to its fixed batch-number prefix.
// Prefixes may share a leading letter (W vs WW); the allocator requires the
// numeric suffix to be all digits, so sequences never cross-contaminate.
var batchPrefixes = map[SampleType]string{
	SampleWhiteSugar:       "W",
	SampleBrownSugar:       "B",
	SampleRawSugar:         "R",
	SampleFineLiquor:       "FL",
	SamplePolishLiquor:     "PL",
	SampleEvaporatorLiquor: "EL",
	SampleSatOut:           "SO",
	SampleCondensate:       "C",
	SampleCoolingWater:     "CW",
	SampleWashWater:        "WW",
}

// Valid reports whether t is a known sample type.
func (t SampleType) Valid() bool {
	_, ok := batchPrefixes[t]
	return ok
}

// BatchPrefix returns the batch-number prefix for the sample type, or ""
// when the type is unknown.
func (t SampleType) BatchPrefix() string {
	return batchPrefixes[t]
}

// SampleTypes lists all sample types in a stable order.
func SampleTypes() []SampleType {
	return []SampleType{
		SampleWhiteSugar, SampleBrownSugar, SampleRawSugar,
		SampleFineLiquor, SamplePolishLiquor, SampleEvaporatorLiquor,
		SampleSatOut, SampleCondensate, SampleCoolingWater, SampleWashWater,
	}
}

// TestParameter is the closed set of laboratory parameters.
type TestParameter string

const (
	ParamPH           TestParameter = "pH"
	ParamTDS          TestParameter = "tds"
	ParamColour       TestParameter = "colour"
	ParamDensity      TestParameter = "density"
	ParamTurbidity    TestParameter = "turbidity"
	ParamTSS          TestParameter = "tss"
	ParamMinuteSugar  TestParameter = "minute_sugar"
	ParamAsh          TestParameter = "ash"
	ParamSediment     TestParameter = "sediment"
	ParamStarch       TestParameter = "starch"
	ParamParticleSize TestParameter = "particle_size"
	ParamCaO          TestParameter = "cao"
	ParamPurity       TestParameter = "purity"
	ParamMoisture     TestParameter = "moisture"
	ParamSucrose      TestParameter = "sucrose"
)

func (p TestParameter) Valid() bool {
	switch p {
	case ParamPH, ParamTDS, ParamColour, ParamDensity, ParamTurbidity,
		ParamTSS, ParamMinuteSugar, ParamAsh, ParamSediment, ParamStarch,
		ParamParticleSize, ParamCaO, ParamPurity, ParamMoisture, ParamSucrose:
		return true
	}
	return false
}

// Unit is the closed set of measurement units.
type Unit string

const (
	UnitPercent       Unit = "%"
	UnitGrams         Unit = "g"
	UnitMgPerKg       Unit = "mg/kg"
	UnitPPM           Unit = "ppm"
	UnitMilliliters   Unit = "mL"
	UnitMicrometers   Unit = "µm"
	UnitMillimeters   Unit = "mm"
	UnitMgPerL        Unit = "mg/L"
	UnitICUMSA        Unit = "IU"
	UnitGPerM3        Unit = "g/m³"
	UnitGPerCm3       Unit = "g/cm³"
	UnitNTU           Unit = "NTU"
	UnitNanometers    Unit = "nm"
	UnitPH            Unit = "pH"
	UnitDimensionless Unit = "dimensionless"
	UnitOther         Unit = "other"
)

func (u Unit) Valid() bool {
	switch u {
	case UnitPercent, UnitGrams, UnitMgPerKg, UnitPPM, UnitMilliliters,
		UnitMicrometers, UnitMillimeters, UnitMgPerL, UnitICUMSA,
		UnitGPerM3, UnitGPerCm3, UnitNTU, UnitNanometers, UnitPH,
		UnitDimensionless, UnitOther:
		return true
	}
	return false
}

// TestStatus is the lifecycle status of an individual test result.
type TestStatus string

const (
	TestPending    TestStatus = "pending"
	TestInProgress TestStatus = "in_progress"
	TestCompleted  TestStatus = "completed"
	TestFailed     TestStatus = "failed"
	TestCancelled  TestStatus = "cancelled"
)

func (s TestStatus) Valid() bool {
	switch s {
	case TestPending, TestInProgress, TestCompleted, TestFailed, TestCancelled:
		return true
	}
	return false
}

// RequestStatus is the state of an inter-department request. Pending is the
// only non-terminal state.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
	RequestCanceled RequestStatus = "canceled"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected, RequestCanceled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted out of s.
func (s RequestStatus) Terminal() bool {
	return s == RequestApproved || s == RequestRejected || s == RequestCanceled
}

// RequestType categorizes what an inter-department request asks for.
type RequestType string

const (
	RequestSampleAnalysis RequestType = "sample_analysis"
	RequestRetest         RequestType = "retest"
	RequestMaintenance    RequestType = "maintenance"
	RequestDocument       RequestType = "document"
	RequestOtherType      RequestType = "other"
)

func (t RequestType) Valid() bool {
	switch t {
	case RequestSampleAnalysis, RequestRetest, RequestMaintenance,
		RequestDocument, RequestOtherType:
		return true
	}
	return false
}

// DepartmentQC is the routing endpoint for the quality-control lab. Other
// departments are free-form names.
const DepartmentQC = "qc"

// AttachmentTag is the heuristic classification of an uploaded file.
type AttachmentTag string

const (
	TagLabSheet     AttachmentTag = "lab_sheet"
	TagMicroscope   AttachmentTag = "microscope"
	TagScanResult   AttachmentTag = "scan_result"
	TagDeviceOutput AttachmentTag = "device_output"
	TagImage        AttachmentTag = "image"
	TagReport       AttachmentTag = "report"
	TagCertificate  AttachmentTag = "certificate"
	TagRawScan      AttachmentTag = "raw_scan"
	TagOther        AttachmentTag = "other"
)

// AttachmentType is derived from the declared content type of an upload.
type AttachmentType string

const (
	AttachmentPDF      AttachmentType = "pdf"
	AttachmentImage    AttachmentType = "image"
	AttachmentDocument AttachmentType = "document"
	AttachmentOther    AttachmentType = "other"
)
