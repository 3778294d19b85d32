// File path: internal/taxonomy/questions.go
package taxonomy

import "strings"

// Analysis intents.
const (
	IntentStrictSummary = "strict_summary"
	IntentRiskTriage    = "risk_triage"
)

// NormalizeIntent lowercases and defaults an intent string.
func NormalizeIntent(intent string) string {
	switch strings.ToLower(strings.TrimSpace(intent)) {
	case IntentRiskTriage:
		return IntentRiskTriage
	default:
		return IntentStrictSummary
	}
}

// QuestionBinding ties a retrieval question to the canonical section its
// evidence should attach to.
type QuestionBinding struct {
	Section  string
	Question string
}

// QuestionMap returns the ordered base question set for an intent. Triage
// leads with risk-focused questions so their evidence wins the per-section
// attachment order.
func QuestionMap(intent string) []QuestionBinding {
	if NormalizeIntent(intent) == IntentRiskTriage {
		return []QuestionBinding{
			{SectionSecurity, "Identify cybersecurity / ATO / RMF / IL requirements and risks (encryption, logging, incident reporting, vuln mgmt)."},
			{SectionSecurity, "Identify CUI handling / safeguarding requirements and risks (marking, access, transmission, storage, disposal)."},
			{SectionLegal, "Identify privacy / PII / data protection obligations and risks."},
			{SectionLegal, "Identify legal/data-rights terms and risks (IP/data rights, audit rights, GFI/GFM handling, disclosure penalties)."},
			{SectionEligibility, "Identify subcontractor / flowdown / staffing constraints and risks (citizenship, clearance, facility, export)."},
			{SectionDeliverables, "Identify delivery/acceptance gates and required approvals (CDRLs, QA, test, acceptance criteria)."},
			{SectionFinancial, "Identify financial and invoicing risks (ceilings, overruns, payment terms, reporting cadence)."},
			{SectionDeliverables, "Identify schedule risks (IMS, milestones, reporting cadence, penalties)."},
			{SectionContradictions, "Identify ambiguous/undefined terms and contradictions that require clarification."},
			{SectionOverview, "List top red-flag phrases/requirements with evidence and suggested internal owner (security/legal/PM/finance)."},
			{SectionMission, "What is the mission and objective of this effort?"},
			{SectionScope, "What is the scope of work and required deliverables?"},
			{SectionSubmission, "What are submission instructions and deadlines, including required formats and delivery method?"},
			{SectionGaps, "What gaps require clarification from the Government?"},
			{SectionActions, "What internal actions should we take next (security/legal/PM/engineering/finance)?"},
		}
	}
	return []QuestionBinding{
		{SectionMission, "What is the mission and objective of this effort?"},
		{SectionScope, "What is the scope of work and required deliverables?"},
		{SectionSecurity, "What are the security, compliance, and hosting constraints (IL levels, NIST, DFARS, CUI, ATO/RMF, logging)?"},
		{SectionEligibility, "What are the eligibility and personnel constraints (citizenship, clearances, facility, location, export controls)?"},
		{SectionLegal, "What are key legal and data rights risks (IP/data rights, audit rights, flowdowns)?"},
		{SectionFinancial, "What are key financial risks (pricing model, ceilings, invoicing systems, payment terms)?"},
		{SectionSubmission, "What are submission instructions and deadlines, including required formats and delivery method?"},
		{SectionContradictions, "What contradictions or inconsistencies exist across documents?"},
		{SectionGaps, "What gaps require clarification from the Government?"},
		{SectionActions, "What internal actions should we take next (security/legal/PM/engineering/finance)?"},
	}
}

// Questions flattens a binding list into its question strings.
func Questions(bindings []QuestionBinding) []string {
	out := make([]string, 0, len(bindings))
	for _, b := range bindings {
		out = append(out, b.Question)
	}
	return out
}

// SectionQuestions groups the bound questions by section header, preserving
// binding order within each section.
func SectionQuestions(bindings []QuestionBinding) map[string][]string {
	out := make(map[string][]string)
	for _, b := range bindings {
		out[b.Section] = append(out[b.Section], b.Question)
	}
	return out
}
