package ai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_SingleMedicine(t *testing.T) {
	candidate := `{
		"medicine_name": "Dolo 650",
		"short_description": "Analgesic and antipyretic tablet.",
		"main_uses": ["Fever", "Mild pain"],
		"salts": "Paracetamol 650mg",
		"strength": 650,
		"form": "Tablet",
		"pros": ["Fast acting"],
		"warnings": [],
		"unexpected_key": {"ignored": true}
	}`

	result, err := Decode(OpSingleMedicine, candidate, candidate)
	require.NoError(t, err)
	require.NotNil(t, result.Medicine)

	m := result.Medicine
	assert.Equal(t, Text("Dolo 650"), m.MedicineName)
	assert.Equal(t, TextList{"Fever", "Mild pain"}, m.MainUses)
	assert.Equal(t, TextList{"Paracetamol 650mg"}, m.Salts)
	assert.Equal(t, Text("650"), m.Strength)
	assert.Empty(t, m.HowToTake)
	assert.Empty(t, m.Warnings)
	assert.Equal(t, "Dolo 650", result.Title())
	assert.Equal(t, "completed", result.Status())
}

func TestDecode_Verification(t *testing.T) {
	candidate := `{
		"match_percentage": "85%",
		"verdict": "ASK DOCTOR",
		"match_status": "MISMATCH DETECTED",
		"reason": "Different strength.",
		"warnings": "Check dosage",
		"generic_suggestion": {"name": "Paracip", "benefit": "Save 40%"},
		"comparison_table": [
			{"feature": "Paracetamol", "old": "500mg", "new": "650mg"},
			"not a row",
			null
		],
		"old_medicine": {"name": "Crocin", "details": {"uses": "Fever"}},
		"new_medicine": {"name": "Dolo 650", "details": "n/a"}
	}`

	result, err := Decode(OpStripVerification, candidate, candidate)
	require.NoError(t, err)
	v := result.Verification
	require.NotNil(t, v)

	assert.True(t, v.MatchPercentage.Valid)
	assert.InDelta(t, 85, v.MatchPercentage.Value, 1e-9)
	assert.Equal(t, TextList{"Check dosage"}, v.Warnings)
	require.NotNil(t, v.GenericSuggestion)
	assert.Equal(t, Text("Paracip"), v.GenericSuggestion.Name)
	require.Len(t, v.ComparisonTable, 2)
	assert.Equal(t, Text("650mg"), v.ComparisonTable[0].New)
	assert.Equal(t, ComparisonRow{}, v.ComparisonTable[1])
	require.NotNil(t, v.OldMedicine.Details)
	assert.Equal(t, Text("Fever"), v.OldMedicine.Details.Uses)
	assert.Equal(t, StripDetails{}, *v.NewMedicine.Details)

	assert.Equal(t, "Crocin vs Dolo 650", result.Title())
	assert.Equal(t, "MISMATCH DETECTED", result.Status())
}

func TestDecode_PrescriptionAndGenerics(t *testing.T) {
	prescription := `{"medicines":[{"name":"Amoxicillin","dosage":"500mg","timing":"after food"},{"name":"Pantoprazole"}],"disclaimer":"Consult your doctor."}`
	result, err := Decode(OpPrescription, prescription, prescription)
	require.NoError(t, err)
	require.Len(t, result.Prescription.Medicines, 2)
	assert.Equal(t, "Amoxicillin, Pantoprazole", result.Title())

	generics := `{"original":{"name":"Crocin","salt":"Paracetamol 500mg"},"generics":[{"name":"Calpol","price_range":"₹15-20"}]}`
	result, err = Decode(OpGenericLookup, generics, generics)
	require.NoError(t, err)
	require.Len(t, result.Generics.Generics, 1)
	assert.Equal(t, Text("₹15-20"), result.Generics.Generics[0].PriceRange)
	assert.Equal(t, "Crocin", result.Title())
}

func TestDecode_ValidJSONNeverFails(t *testing.T) {
	candidates := []string{`[]`, `"just a string"`, `42`, `null`, `{}`, `{"medicines": "none"}`, `{"match_percentage": {"x": 1}}`}
	for _, op := range Operations {
		for _, c := range candidates {
			result, err := Decode(op, c, c)
			require.NoError(t, err, "op=%s candidate=%s", op, c)
			assert.NotNil(t, result.Data(), "op=%s candidate=%s", op, c)
		}
	}
}

func TestDecode_MalformedCarriesRaw(t *testing.T) {
	raw := "Here you go: {\"medicine_name\": \"Dolo\", } oops"
	_, err := Decode(OpSingleMedicine, ExtractJSON(raw), raw)
	require.Error(t, err)

	var analysisErr *AnalysisError
	require.ErrorAs(t, err, &analysisErr)
	assert.Equal(t, ErrorMalformedResponse, analysisErr.Kind)
	assert.Equal(t, raw, analysisErr.Raw)
}

func TestAnalysisResult_MarshalJSON(t *testing.T) {
	candidate := `{"verdict":"SAFE","match_status":"SAFE MATCH","extra":1}`
	result, err := Decode(OpStripVerification, candidate, candidate)
	require.NoError(t, err)

	b, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"verdict":"SAFE","match_status":"SAFE MATCH","extra":1}`, string(b))

	candidate = `{"match_percentage": 0}`
	result, err = Decode(OpStripVerification, candidate, candidate)
	require.NoError(t, err)
	b, err = json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"match_percentage":0}`, string(b))
}

func TestDecode_ExtraKeysSurfaced(t *testing.T) {
	candidate := `{
		"medicine_name": "Dolo 650",
		"Form": "Tablet",
		"manufacturer": "Micro Labs",
		"storage": {"temperature": "below 30C"},
		"medicine_name_hindi": null
	}`

	result, err := Decode(OpSingleMedicine, candidate, candidate)
	require.NoError(t, err)

	m := result.Medicine
	assert.Equal(t, Text("Tablet"), m.Form)
	require.Len(t, m.Extra, 3)
	assert.JSONEq(t, `"Micro Labs"`, string(m.Extra["manufacturer"]))
	assert.JSONEq(t, `{"temperature": "below 30C"}`, string(m.Extra["storage"]))
	assert.NotContains(t, m.Extra, "Form")

	b, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"medicine_name": "Dolo 650",
		"form": "Tablet",
		"manufacturer": "Micro Labs",
		"storage": {"temperature": "below 30C"},
		"medicine_name_hindi": null
	}`, string(b))
}

func TestDecode_ExtraKeysPerVariant(t *testing.T) {
	tests := []struct {
		op        Operation
		candidate string
		extra     func(*AnalysisResult) Extras
	}{
		{OpPrescription, `{"medicines": [], "doctor": "Dr. Rao"}`, func(r *AnalysisResult) Extras { return r.Prescription.Extra }},
		{OpGenericLookup, `{"generics": [], "note": "prices vary"}`, func(r *AnalysisResult) Extras { return r.Generics.Extra }},
		{OpStripVerification, `{"verdict": "SAFE", "confidence": "high"}`, func(r *AnalysisResult) Extras { return r.Verification.Extra }},
	}

	for _, tt := range tests {
		result, err := Decode(tt.op, tt.candidate, tt.candidate)
		require.NoError(t, err)
		assert.Len(t, tt.extra(result), 1, tt.op)
	}
}
