// result.go - Typed analysis results and the decoder that produces them

package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MedicineInfo is the single-medicine identification result
type MedicineInfo struct {
	MedicineName     Text     `json:"medicine_name,omitempty"`
	ShortDescription Text     `json:"short_description,omitempty"`
	MainUses         TextList `json:"main_uses,omitempty"`
	Salts            TextList `json:"salts,omitempty"`
	Strength         Text     `json:"strength,omitempty"`
	Form             Text     `json:"form,omitempty"`
	HowToTake        Text     `json:"how_to_take,omitempty"`
	Pros             TextList `json:"pros,omitempty"`
	Cons             TextList `json:"cons,omitempty"`
	Warnings         TextList `json:"warnings,omitempty"`
	WhoShouldAvoid   TextList `json:"who_should_avoid,omitempty"`
	Extra            Extras   `json:"-"`
}

func (m *MedicineInfo) UnmarshalJSON(b []byte) error {
	type alias MedicineInfo
	return decodeWithExtras(b, (*alias)(m), &m.Extra)
}

func (m MedicineInfo) MarshalJSON() ([]byte, error) {
	type alias MedicineInfo
	return encodeWithExtras(alias(m), m.Extra)
}

// PrescriptionReport lists the medicines read off a prescription
type PrescriptionReport struct {
	Medicines  List[PrescribedMedicine] `json:"medicines,omitempty"`
	Disclaimer Text                     `json:"disclaimer,omitempty"`
	Extra      Extras                   `json:"-"`
}

func (p *PrescriptionReport) UnmarshalJSON(b []byte) error {
	type alias PrescriptionReport
	return decodeWithExtras(b, (*alias)(p), &p.Extra)
}

func (p PrescriptionReport) MarshalJSON() ([]byte, error) {
	type alias PrescriptionReport
	return encodeWithExtras(alias(p), p.Extra)
}

type PrescribedMedicine struct {
	Name        Text `json:"name,omitempty"`
	Dosage      Text `json:"dosage,omitempty"`
	Timing      Text `json:"timing,omitempty"`
	Duration    Text `json:"duration,omitempty"`
	Explanation Text `json:"explanation,omitempty"`
}

func (p *PrescribedMedicine) UnmarshalJSON(b []byte) error {
	type alias PrescribedMedicine
	return decodeObject(b, (*alias)(p))
}

// GenericLookup is the generic-alternatives result for a named medicine
type GenericLookup struct {
	Original *MedicineSalt            `json:"original,omitempty"`
	Generics List[GenericAlternative] `json:"generics,omitempty"`
	Extra    Extras                   `json:"-"`
}

func (g *GenericLookup) UnmarshalJSON(b []byte) error {
	type alias GenericLookup
	return decodeWithExtras(b, (*alias)(g), &g.Extra)
}

func (g GenericLookup) MarshalJSON() ([]byte, error) {
	type alias GenericLookup
	return encodeWithExtras(alias(g), g.Extra)
}

type MedicineSalt struct {
	Name Text `json:"name,omitempty"`
	Salt Text `json:"salt,omitempty"`
}

func (m *MedicineSalt) UnmarshalJSON(b []byte) error {
	type alias MedicineSalt
	return decodeObject(b, (*alias)(m))
}

type GenericAlternative struct {
	Name       Text `json:"name,omitempty"`
	Salt       Text `json:"salt,omitempty"`
	PriceRange Text `json:"price_range,omitempty"`
	Benefit    Text `json:"benefit,omitempty"`
}

func (g *GenericAlternative) UnmarshalJSON(b []byte) error {
	type alias GenericAlternative
	return decodeObject(b, (*alias)(g))
}

// VerificationReport compares an old strip against a new one
type VerificationReport struct {
	MatchPercentage   Number              `json:"match_percentage,omitzero"`
	Verdict           Text                `json:"verdict,omitempty"`
	MatchStatus       Text                `json:"match_status,omitempty"`
	Reason            Text                `json:"reason,omitempty"`
	Warnings          TextList            `json:"warnings,omitempty"`
	GenericSuggestion *GenericSuggestion  `json:"generic_suggestion,omitempty"`
	ComparisonTable   List[ComparisonRow] `json:"comparison_table,omitempty"`
	OldMedicine       *StripMedicine      `json:"old_medicine,omitempty"`
	NewMedicine       *StripMedicine      `json:"new_medicine,omitempty"`
	Extra             Extras              `json:"-"`
}

func (v *VerificationReport) UnmarshalJSON(b []byte) error {
	type alias VerificationReport
	return decodeWithExtras(b, (*alias)(v), &v.Extra)
}

func (v VerificationReport) MarshalJSON() ([]byte, error) {
	type alias VerificationReport
	return encodeWithExtras(alias(v), v.Extra)
}

type GenericSuggestion struct {
	Name    Text `json:"name,omitempty"`
	Benefit Text `json:"benefit,omitempty"`
}

func (g *GenericSuggestion) UnmarshalJSON(b []byte) error {
	type alias GenericSuggestion
	return decodeObject(b, (*alias)(g))
}

type ComparisonRow struct {
	Feature Text `json:"feature,omitempty"`
	Old     Text `json:"old,omitempty"`
	New     Text `json:"new,omitempty"`
}

func (c *ComparisonRow) UnmarshalJSON(b []byte) error {
	type alias ComparisonRow
	return decodeObject(b, (*alias)(c))
}

type StripMedicine struct {
	Name    Text          `json:"name,omitempty"`
	Details *StripDetails `json:"details,omitempty"`
}

func (s *StripMedicine) UnmarshalJSON(b []byte) error {
	type alias StripMedicine
	return decodeObject(b, (*alias)(s))
}

type StripDetails struct {
	Uses        Text `json:"uses,omitempty"`
	Pros        Text `json:"pros,omitempty"`
	Cons        Text `json:"cons,omitempty"`
	Precautions Text `json:"precautions,omitempty"`
}

func (s *StripDetails) UnmarshalJSON(b []byte) error {
	type alias StripDetails
	return decodeObject(b, (*alias)(s))
}

// AnalysisResult is exactly one of the four result shapes, selected by Operation. Top-level
// keys outside the requested schema are kept in the variant's Extra and encoded back as sent.
type AnalysisResult struct {
	Operation    Operation
	Medicine     *MedicineInfo
	Prescription *PrescriptionReport
	Generics     *GenericLookup
	Verification *VerificationReport
}

// Data returns the active variant
func (r *AnalysisResult) Data() interface{} {
	switch r.Operation {
	case OpSingleMedicine:
		return r.Medicine
	case OpPrescription:
		return r.Prescription
	case OpGenericLookup:
		return r.Generics
	case OpStripVerification:
		return r.Verification
	}
	return nil
}

// MarshalJSON emits the active variant only, keyed exactly as the model was asked to answer
func (r *AnalysisResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Data())
}

// Title is a one-line label for history listings
func (r *AnalysisResult) Title() string {
	switch r.Operation {
	case OpSingleMedicine:
		if r.Medicine != nil {
			return string(r.Medicine.MedicineName)
		}
	case OpPrescription:
		if r.Prescription != nil {
			names := make([]string, 0, len(r.Prescription.Medicines))
			for _, m := range r.Prescription.Medicines {
				if m.Name != "" {
					names = append(names, string(m.Name))
				}
			}
			return strings.Join(names, ", ")
		}
	case OpGenericLookup:
		if r.Generics != nil && r.Generics.Original != nil {
			return string(r.Generics.Original.Name)
		}
	case OpStripVerification:
		if r.Verification != nil {
			var oldName, newName string
			if r.Verification.OldMedicine != nil {
				oldName = string(r.Verification.OldMedicine.Name)
			}
			if r.Verification.NewMedicine != nil {
				newName = string(r.Verification.NewMedicine.Name)
			}
			if oldName != "" || newName != "" {
				return oldName + " vs " + newName
			}
		}
	}
	return ""
}

// Status is the verification match status, or "completed" for the other operations
func (r *AnalysisResult) Status() string {
	if r.Operation == OpStripVerification && r.Verification != nil && r.Verification.MatchStatus != "" {
		return string(r.Verification.MatchStatus)
	}
	return "completed"
}

// Decode turns an extracted JSON candidate into a typed result. Syntactically invalid JSON is
// the only failure: it yields ErrorMalformedResponse carrying raw, the untouched completion.
// Any valid JSON decodes, with missing or mistyped fields left empty.
func Decode(op Operation, candidate, raw string) (*AnalysisResult, error) {
	b := []byte(candidate)
	if !json.Valid(b) {
		return nil, &AnalysisError{
			Kind:    ErrorMalformedResponse,
			Message: "completion did not contain valid JSON",
			Raw:     raw,
		}
	}

	result := &AnalysisResult{Operation: op}
	var err error
	switch op {
	case OpSingleMedicine:
		result.Medicine = &MedicineInfo{}
		err = json.Unmarshal(b, result.Medicine)
	case OpPrescription:
		result.Prescription = &PrescriptionReport{}
		err = json.Unmarshal(b, result.Prescription)
	case OpGenericLookup:
		result.Generics = &GenericLookup{}
		err = json.Unmarshal(b, result.Generics)
	case OpStripVerification:
		result.Verification = &VerificationReport{}
		err = json.Unmarshal(b, result.Verification)
	default:
		return nil, fmt.Errorf("unsupported operation: %q", op)
	}
	if err != nil {
		return nil, &AnalysisError{
			Kind:    ErrorMalformedResponse,
			Message: "failed to decode completion",
			Raw:     raw,
			Cause:   err,
		}
	}

	return result, nil
}
