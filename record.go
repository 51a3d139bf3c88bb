package app13

import (
	"fmt"
)

// RecordType is the dataset number of an IPTC Application Record 2
// dataset. Valid values are 0 to 255.
type RecordType int

// Application Record 2 datasets (IPTC-NAA IIM 4.2).
const (
	RecordVersion            RecordType = 0
	ObjectTypeReference      RecordType = 3
	ObjectAttributeReference RecordType = 4
	ObjectName               RecordType = 5
	EditStatus               RecordType = 7
	EditorialUpdate          RecordType = 8
	Urgency                  RecordType = 10
	SubjectReference         RecordType = 12
	Category                 RecordType = 15
	SupplementalCategory     RecordType = 20
	FixtureIdentifier        RecordType = 22
	Keywords                 RecordType = 25
	ContentLocationCode      RecordType = 26
	ContentLocationName      RecordType = 27
	ReleaseDate              RecordType = 30
	ReleaseTime              RecordType = 35
	ExpirationDate           RecordType = 37
	ExpirationTime           RecordType = 38
	SpecialInstructions      RecordType = 40
	ActionAdvised            RecordType = 42
	ReferenceService         RecordType = 45
	ReferenceDate            RecordType = 47
	ReferenceNumber          RecordType = 50
	DateCreated              RecordType = 55
	TimeCreated              RecordType = 60
	DigitalCreationDate      RecordType = 62
	DigitalCreationTime      RecordType = 63
	OriginatingProgram       RecordType = 65
	ProgramVersion           RecordType = 70
	ObjectCycle              RecordType = 75
	Byline                   RecordType = 80
	BylineTitle              RecordType = 85
	City                     RecordType = 90
	SubLocation              RecordType = 92
	ProvinceState            RecordType = 95
	CountryCode              RecordType = 100
	CountryName              RecordType = 101
	OriginalTransmissionRef  RecordType = 103
	Headline                 RecordType = 105
	Credit                   RecordType = 110
	Source                   RecordType = 115
	CopyrightNotice          RecordType = 116
	Contact                  RecordType = 118
	Caption                  RecordType = 120
	WriterEditor             RecordType = 122
	RasterizedCaption        RecordType = 125
	ImageType                RecordType = 130
	ImageOrientation         RecordType = 131
	LanguageIdentifier       RecordType = 135
	AudioType                RecordType = 150
	AudioSamplingRate        RecordType = 151
	AudioSamplingResolution  RecordType = 152
	AudioDuration            RecordType = 153
	AudioOutcue              RecordType = 154
	PreviewFileFormat        RecordType = 200
	PreviewFileFormatVersion RecordType = 201
	PreviewData              RecordType = 202
)

type recordTypeInfo struct {
	name       string
	repeatable bool
	maxLength  int // in bytes, 0 if unlimited
}

var recordTypes = map[RecordType]recordTypeInfo{
	RecordVersion:            {"RecordVersion", false, 2},
	ObjectTypeReference:      {"ObjectTypeReference", false, 67},
	ObjectAttributeReference: {"ObjectAttributeReference", true, 68},
	ObjectName:               {"ObjectName", false, 64},
	EditStatus:               {"EditStatus", false, 64},
	EditorialUpdate:          {"EditorialUpdate", false, 2},
	Urgency:                  {"Urgency", false, 1},
	SubjectReference:         {"SubjectReference", true, 236},
	Category:                 {"Category", false, 3},
	SupplementalCategory:     {"SupplementalCategory", true, 32},
	FixtureIdentifier:        {"FixtureIdentifier", false, 32},
	Keywords:                 {"Keywords", true, 64},
	ContentLocationCode:      {"ContentLocationCode", true, 3},
	ContentLocationName:      {"ContentLocationName", true, 64},
	ReleaseDate:              {"ReleaseDate", false, 8},
	ReleaseTime:              {"ReleaseTime", false, 11},
	ExpirationDate:           {"ExpirationDate", false, 8},
	ExpirationTime:           {"ExpirationTime", false, 11},
	SpecialInstructions:      {"SpecialInstructions", false, 256},
	ActionAdvised:            {"ActionAdvised", false, 2},
	ReferenceService:         {"ReferenceService", true, 10},
	ReferenceDate:            {"ReferenceDate", true, 8},
	ReferenceNumber:          {"ReferenceNumber", true, 8},
	DateCreated:              {"DateCreated", false, 8},
	TimeCreated:              {"TimeCreated", false, 11},
	DigitalCreationDate:      {"DigitalCreationDate", false, 8},
	DigitalCreationTime:      {"DigitalCreationTime", false, 11},
	OriginatingProgram:       {"OriginatingProgram", false, 32},
	ProgramVersion:           {"ProgramVersion", false, 10},
	ObjectCycle:              {"ObjectCycle", false, 1},
	Byline:                   {"Byline", true, 32},
	BylineTitle:              {"BylineTitle", true, 32},
	City:                     {"City", false, 32},
	SubLocation:              {"SubLocation", false, 32},
	ProvinceState:            {"ProvinceState", false, 32},
	CountryCode:              {"CountryCode", false, 3},
	CountryName:              {"CountryName", false, 64},
	OriginalTransmissionRef:  {"OriginalTransmissionReference", false, 32},
	Headline:                 {"Headline", false, 256},
	Credit:                   {"Credit", false, 32},
	Source:                   {"Source", false, 32},
	CopyrightNotice:          {"CopyrightNotice", false, 128},
	Contact:                  {"Contact", true, 128},
	Caption:                  {"Caption", false, 2000},
	WriterEditor:             {"WriterEditor", true, 32},
	RasterizedCaption:        {"RasterizedCaption", false, 7360},
	ImageType:                {"ImageType", false, 2},
	ImageOrientation:         {"ImageOrientation", false, 1},
	LanguageIdentifier:       {"LanguageIdentifier", false, 3},
	AudioType:                {"AudioType", false, 2},
	AudioSamplingRate:        {"AudioSamplingRate", false, 6},
	AudioSamplingResolution:  {"AudioSamplingResolution", false, 2},
	AudioDuration:            {"AudioDuration", false, 6},
	AudioOutcue:              {"AudioOutcue", false, 64},
	PreviewFileFormat:        {"PreviewFileFormat", false, 2},
	PreviewFileFormatVersion: {"PreviewFileFormatVersion", false, 2},
	PreviewData:              {"PreviewData", false, 256000},
}

// Name returns the dataset name, or "Unknown-n" for unlisted numbers.
func (t RecordType) Name() string {
	if info, ok := recordTypes[t]; ok {
		return info.name
	}
	return fmt.Sprintf("Unknown-%d", int(t))
}

// Repeatable reports whether the dataset may occur more than once.
// Unlisted datasets are treated as repeatable.
func (t RecordType) Repeatable() bool {
	if info, ok := recordTypes[t]; ok {
		return info.repeatable
	}
	return true
}

// MaxLength returns the maximum length in bytes allowed for the dataset,
// or 0 if there is no known limit.
func (t RecordType) MaxLength() int {
	return recordTypes[t].maxLength
}

// Known reports whether the dataset number is listed in the IIM.
func (t RecordType) Known() bool {
	_, ok := recordTypes[t]
	return ok
}

// Record is a decoded Application Record 2 dataset.
type Record struct {
	Type  RecordType
	Value string
}

func (r Record) String() string {
	return fmt.Sprintf("%s: %q", r.Type.Name(), r.Value)
}
