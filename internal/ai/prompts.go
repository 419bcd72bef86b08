// prompts.go - Centralized prompt templates for medicine analysis
package ai

import (
	"fmt"
	"strings"
)

// Operation identifies which of the four analyses a request performs
type Operation string

const (
	OpSingleMedicine    Operation = "single_medicine"
	OpPrescription      Operation = "prescription"
	OpGenericLookup     Operation = "generic_lookup"
	OpStripVerification Operation = "strip_verification"
)

// Operations lists every supported operation
var Operations = []Operation{OpSingleMedicine, OpPrescription, OpGenericLookup, OpStripVerification}

const jsonOnlyInstruction = "Respond ONLY with the JSON object."

// ============================================================================
// 💊 SECTION 1: SINGLE MEDICINE IDENTIFICATION
// ============================================================================

const singleMedicinePrompt = `
As an expert Medical Auditor, analyze this medicine image and provide structured, reliable medical information.

Identify the medicine name, brand, salts, strength, dosage form, and treated conditions.

Required Output Format (Strict JSON):
{
  "medicine_name": "Full brand name and generic name",
  "short_description": "A precise 1-sentence summary of what this medicine is and its type.",
  "main_uses": ["Primary indication 1", "Primary indication 2"],
  "salts": ["Salt 1 + Strength (e.g. Paracetamol 500mg)", "Salt 2..."],
  "strength": "Overall strength/concentration",
  "form": "Dosage form (e.g., Tablet, Capsule, Syrup, Gel)",
  "how_to_take": "Clear instructions on how to consume/apply this medicine.",
  "pros": ["Key benefit/efficacy 1", "Benefit 2"],
  "cons": ["Potential side effect or drawback 1", "Drawback 2"],
  "warnings": ["Critical safety warning 1", "Interaction warning"],
  "who_should_avoid": ["Groups or conditions that should avoid this medicine"]
}

Ensure absolute accuracy in salt composition and strength detection.
` + jsonOnlyInstruction

// ============================================================================
// 📝 SECTION 2: PRESCRIPTION READING
// ============================================================================

const prescriptionPrompt = `
Analyze this prescription image.
1. Extract all medicines (Name, Dosage, Timing, Duration, Why prescribed).
2. Provide a strict medical disclaimer.

Required Output Format (Strict JSON):
{
  "medicines": [
    {
      "name": "Medicine name as written",
      "dosage": "Dose per intake",
      "timing": "When to take it (e.g., after breakfast)",
      "duration": "How long to continue",
      "explanation": "Why this medicine was most likely prescribed"
    }
  ],
  "disclaimer": "Strict medical disclaimer"
}
` + jsonOnlyInstruction

// ============================================================================
// 🔁 SECTION 3: GENERIC ALTERNATIVES
// ============================================================================

const genericLookupPrompt = `
Find generic alternatives for the medicine: %s.
Ensure identical salt composition and strength.

Required Output Format (Strict JSON):
{
  "original": { "name": "Brand Name", "salt": "Chemical Composition" },
  "generics": [
    { "name": "Generic Brand", "salt": "Identical Salt", "price_range": "Range in ₹", "benefit": "Briefly why this is a good choice" }
  ]
}
` + jsonOnlyInstruction

// ============================================================================
// ⚖️ SECTION 4: STRIP-TO-STRIP VERIFICATION
// ============================================================================

const stripVerificationPrompt = `
You are an expert Pharmacy Auditor. Compare these two medicine strips for composition matching and safety.
Image 1: Old Strip (Prescribed/Previous). Image 2: New Strip (Current/Dispensed).

Required Output Format (Strict JSON):
{
  "match_percentage": number,
  "verdict": "SAFE" | "ASK DOCTOR" | "NOT RECOMMENDED",
  "match_status": "SAFE MATCH" | "MISMATCH DETECTED" | "CRITICAL ALERT",
  "reason": "Clear explanation of why this verdict was given.",
  "warnings": ["Warning 1", "Warning 2"],
  "generic_suggestion": { "name": "Generic Name", "benefit": "Save % info" },
  "comparison_table": [
    { "feature": "Salt 1", "old": "Old Strength", "new": "New Strength" }
  ],
  "old_medicine": { "name": "Name", "details": { "uses": "", "pros": "", "cons": "", "precautions": "" } },
  "new_medicine": { "name": "Name", "details": { "uses": "", "pros": "", "cons": "", "precautions": "" } }
}
` + jsonOnlyInstruction

// BuildPrompt returns the instruction text for an operation. subject is only used by
// generic lookup, where it is the medicine name.
func BuildPrompt(op Operation, subject string) (string, error) {
	switch op {
	case OpSingleMedicine:
		return singleMedicinePrompt, nil
	case OpPrescription:
		return prescriptionPrompt, nil
	case OpGenericLookup:
		name := strings.TrimSpace(subject)
		if name == "" {
			return "", NewMissingInputError("Medicine name is required.")
		}
		return fmt.Sprintf(genericLookupPrompt, name), nil
	case OpStripVerification:
		return stripVerificationPrompt, nil
	default:
		return "", fmt.Errorf("unsupported operation: %q", op)
	}
}
