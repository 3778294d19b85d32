// File path: internal/retrieval/profile.go
package retrieval

import "strings"

// Profile controls how much evidence an analysis run retrieves and carries.
type Profile string

const (
	ProfileFast     Profile = "fast"
	ProfileBalanced Profile = "balanced"
	ProfileDeep     Profile = "deep"
)

// NormalizeProfile lowercases and defaults a profile string.
func NormalizeProfile(p string) Profile {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case string(ProfileDeep):
		return ProfileDeep
	case string(ProfileFast):
		return ProfileFast
	case string(ProfileBalanced), "standard":
		return ProfileBalanced
	case "":
		return ProfileFast
	default:
		return ProfileBalanced
	}
}

// EffectiveTopK clamps the requested top_k into the profile's band. A deeper
// profile never retrieves fewer hits per question than a shallower one given
// the same request.
func (p Profile) EffectiveTopK(requested int) int {
	k := requested
	if k <= 0 {
		k = 1
	}
	switch p {
	case ProfileFast:
		return clampInt(k, 1, 4)
	case ProfileDeep:
		return clampInt(k, 8, 20)
	default:
		return clampInt(k, 4, 12)
	}
}

// ContextCap is the hard character budget for the assembled evidence context.
func (p Profile) ContextCap() int {
	switch p {
	case ProfileFast:
		return 16000
	case ProfileDeep:
		return 80000
	default:
		return 32000
	}
}

// SnippetCap bounds each evidence snippet placed into the context.
func (p Profile) SnippetCap() int {
	switch p {
	case ProfileFast:
		return 900
	case ProfileDeep:
		return 2200
	default:
		return 1400
	}
}

// ChunkSize is the ingestion window size for documents under this profile.
func (p Profile) ChunkSize() int {
	switch p {
	case ProfileFast:
		return 900
	case ProfileDeep:
		return 1400
	default:
		return 1000
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
