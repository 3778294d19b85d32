// File path: internal/taxonomy/sections.go
package taxonomy

import "strings"

// Canonical section headers in their fixed report order. Every analysis
// result carries exactly these twelve sections regardless of model output.
const (
	SectionOverview       = "OVERVIEW"
	SectionMission        = "MISSION & OBJECTIVE"
	SectionScope          = "SCOPE OF WORK"
	SectionDeliverables   = "DELIVERABLES & TIMELINES"
	SectionSecurity       = "SECURITY, COMPLIANCE & HOSTING CONSTRAINTS"
	SectionEligibility    = "ELIGIBILITY & PERSONNEL CONSTRAINTS"
	SectionLegal          = "LEGAL & DATA RIGHTS RISKS"
	SectionFinancial      = "FINANCIAL RISKS"
	SectionSubmission     = "SUBMISSION INSTRUCTIONS & DEADLINES"
	SectionContradictions = "CONTRADICTIONS & INCONSISTENCIES"
	SectionGaps           = "GAPS / QUESTIONS FOR THE GOVERNMENT"
	SectionActions        = "RECOMMENDED INTERNAL ACTIONS"
)

func SectionHeaders() []string {
	return []string{
		SectionOverview,
		SectionMission,
		SectionScope,
		SectionDeliverables,
		SectionSecurity,
		SectionEligibility,
		SectionLegal,
		SectionFinancial,
		SectionSubmission,
		SectionContradictions,
		SectionGaps,
		SectionActions,
	}
}

const maxSlugLen = 80

// Slug derives a stable section identifier from a header: lowercase
// alphanumerics with single dashes, capped at 80 characters.
func Slug(header string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(header)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugLen {
		slug = strings.Trim(slug[:maxSlugLen], "-")
	}
	if slug == "" {
		return "section"
	}
	return slug
}

// Stakeholder owner tags used in report bullets and section routing.
const (
	OwnerProgram  = "Program/PM"
	OwnerSecurity = "Security/ISSO"
	OwnerLegal    = "Legal/Contracts"
	OwnerFinance  = "Finance"
)

var ownerBySlug = map[string]string{
	Slug(SectionSecurity):       OwnerSecurity,
	Slug(SectionLegal):          OwnerLegal,
	Slug(SectionContradictions): OwnerLegal,
	Slug(SectionFinancial):      OwnerFinance,
}

// OwnerForSlug routes a section to its default stakeholder owner.
func OwnerForSlug(slug string) string {
	if owner, ok := ownerBySlug[slug]; ok {
		return owner
	}
	return OwnerProgram
}
