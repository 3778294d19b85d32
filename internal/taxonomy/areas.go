// File path: internal/taxonomy/areas.go
package taxonomy

import "strings"

// Ordered canonical risk areas. The order fixes targeted-question output so
// identical signals always yield identical question lists.
var RiskAreas = []string{
	"information_security",
	"privacy",
	"personnel_security",
	"physical_security",
	"finance",
	"project_level",
	"enterprise_level",
	"legal_data_rights",
}

// Keyword triggers per risk area. The triggers are deterministic; they only
// decide which targeted retrieval questions to ask, they never create risks.
var triggerKeywords = map[string][]string{
	"information_security": {
		"dfars", "7012", "cui", "cdi", "incident", "report", "cyber", "security",
		"encryption", "rmf", "nist", "800-171", "800-53", "fedramp", "ato", "hosting",
		"access", "audit", "log", "siem", "vulnerability", "scan", "stigs", "cmmc",
	},
	"privacy": {
		"pii", "phi", "privacy", "hipaa", "privacy act", "gdpr", "consent", "breach",
		"data subject", "personal information",
	},
	"personnel_security": {
		"clearance", "secret", "top secret", "ts/sci", "citizen", "citizenship",
		"background", "fingerprint", "suitability", "public trust",
	},
	"physical_security": {
		"scif", "facility", "badge", "physical", "secure area", "controlled area",
		"onsite", "on-site", "visit", "escort",
	},
	"finance": {
		"pricing", "price", "payment", "invoice", "clin", "cost", "fee",
		"firm-fixed-price", "ffp", "t&m", "time and materials",
	},
	"project_level": {
		"deliverable", "acceptance", "milestone", "schedule", "timeline", "pop",
		"period of performance", "slas", "requirements", "test event",
	},
	"enterprise_level": {
		"flowdown", "flow-down", "subcontract", "teaming", "prime", "audit rights",
		"records", "compliance", "governance",
	},
	"legal_data_rights": {
		"data rights", "rights in data", "government purpose rights", "limited rights",
		"unlimited rights", "ip", "intellectual property", "license", "indemnification",
		"termination", "dispute", "jurisdiction",
	},
}

var targetedQuestions = map[string][]string{
	"information_security": {
		"Identify any explicit cybersecurity, CUI/CDI handling, incident reporting, or NIST/DFARS compliance requirements. Quote the relevant language.",
		"Identify any hosting/environment constraints (GovCloud, on-prem, FedRAMP, RMF/ATO, network restrictions). Quote the relevant language.",
	},
	"privacy": {
		"Identify any privacy/PII/PHI handling requirements, breach notification, consent, or privacy act language. Quote the relevant language.",
		"Identify any data retention, access control, or disclosure constraints tied to personal data. Quote the relevant language.",
	},
	"personnel_security": {
		"Identify any personnel clearance, citizenship, background checks, or access requirements. Quote the relevant language.",
		"Identify any staffing constraints that could impact delivery (on-site, escorted access, key personnel). Quote the relevant language.",
	},
	"physical_security": {
		"Identify any physical security, facility, SCIF, controlled area, or on-site access requirements. Quote the relevant language.",
		"Identify any delivery constraints driven by physical access (escorts, badging, visits, restricted areas). Quote the relevant language.",
	},
	"finance": {
		"Identify any pricing structure, contract type, CLIN structure, payment terms, or invoice requirements. Quote the relevant language.",
		"Identify any cost risk drivers (undefined scope, undefined acceptance, optional CLINs) and quote the triggering language.",
	},
	"project_level": {
		"Identify deliverables, acceptance criteria, and schedule/timeline requirements. Quote the relevant language.",
		"Identify any test event phases, success criteria, or support obligations that could create schedule risk. Quote the relevant language.",
	},
	"enterprise_level": {
		"Identify any flow-downs, subcontracting, teaming, audit rights, or governance constraints. Quote the relevant language.",
		"Identify any compliance or reporting obligations that create enterprise-level burden. Quote the relevant language.",
	},
	"legal_data_rights": {
		"Identify any data rights / IP / licensing / reuse constraints. Quote the relevant language.",
		"Identify any termination, dispute, indemnification, or liability clauses that increase legal risk. Quote the relevant language.",
	},
}

// TriggeredAreas decides which risk areas deserve targeted retrieval based
// on deterministic flag and heuristic signals.
func TriggeredAreas(flags []AutoFlag, heuristics []HeuristicHit) map[string]bool {
	var blobs []string
	for _, f := range flags {
		blobs = append(blobs, strings.ToLower(f.ID), strings.ToLower(f.Label), strings.ToLower(f.Snippet))
	}
	for _, h := range heuristics {
		blobs = append(blobs, strings.ToLower(h.ID), strings.ToLower(h.Label), strings.ToLower(h.Why))
	}
	nonEmpty := blobs[:0]
	for _, b := range blobs {
		if strings.TrimSpace(b) != "" {
			nonEmpty = append(nonEmpty, b)
		}
	}
	blob := strings.Join(nonEmpty, " | ")

	triggered := make(map[string]bool)
	for area, keys := range triggerKeywords {
		for _, k := range keys {
			if strings.Contains(blob, k) {
				triggered[area] = true
				break
			}
		}
	}
	return triggered
}

// TargetedQuestionList walks the fixed area order and returns up to max
// targeted questions for the triggered areas.
func TargetedQuestionList(triggered map[string]bool, max int) []string {
	if max <= 0 {
		return nil
	}
	var out []string
	for _, area := range RiskAreas {
		if !triggered[area] {
			continue
		}
		for _, q := range targetedQuestions[area] {
			out = append(out, q)
			if len(out) >= max {
				return out
			}
		}
	}
	return out
}

// ExtendQuestions appends targeted questions for triggered risk areas to the
// base question list. Base questions come first; duplicates are dropped.
// Only risk_triage runs targeted extension.
func ExtendQuestions(base []string, intent string, flags []AutoFlag, heuristics []HeuristicHit, maxTargeted int) []string {
	if NormalizeIntent(intent) != IntentRiskTriage {
		return base
	}
	targeted := TargetedQuestionList(TriggeredAreas(flags, heuristics), maxTargeted)

	out := make([]string, 0, len(base)+len(targeted))
	seen := make(map[string]bool, len(base)+len(targeted))
	for _, q := range base {
		qs := strings.TrimSpace(q)
		if qs == "" || seen[qs] {
			continue
		}
		out = append(out, qs)
		seen[qs] = true
	}
	for _, q := range targeted {
		qs := strings.TrimSpace(q)
		if qs == "" || seen[qs] {
			continue
		}
		out = append(out, qs)
		seen[qs] = true
	}
	return out
}
