// File path: internal/sections/evidence.go
package sections

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jbrewton2/contract-security-studio/internal/retrieval"
	"github.com/jbrewton2/contract-security-studio/internal/taxonomy"
)

const evidenceTextCap = 800

// AttachEvidence binds retrieval hits to their mapped sections. The question
// map decides which section each question's hits attach to; within a section
// the first occurrence of an evidence key wins, so duplicate chunks from
// later questions are dropped rather than reordered.
func AttachEvidence(secs []Section, bindings []taxonomy.QuestionBinding, result *retrieval.Result) []Section {
	if len(secs) == 0 || result == nil {
		return secs
	}
	byKey := make(map[string]int, len(secs)*2)
	for i, s := range secs {
		if s.ID != "" {
			byKey[s.ID] = i
		}
		if s.Title != "" {
			byKey[taxonomy.Slug(s.Title)] = i
			byKey[CanonHeader(s.Title)] = i
		}
	}

	seenBySection := make(map[int]map[string]bool)

	for _, binding := range bindings {
		idx, ok := lookupSection(byKey, binding.Section)
		if !ok {
			continue
		}
		hits := result.Hits[binding.Question]
		if len(hits) == 0 {
			continue
		}
		seen := seenBySection[idx]
		if seen == nil {
			seen = make(map[string]bool)
			for _, ev := range secs[idx].Evidence {
				seen[evidenceKey(ev)] = true
			}
			seenBySection[idx] = seen
		}
		for _, h := range hits {
			ev := evidenceFromHit(h)
			key := evidenceKey(ev)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			secs[idx].Evidence = append(secs[idx].Evidence, ev)
		}
	}
	return secs
}

func lookupSection(byKey map[string]int, ref string) (int, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, false
	}
	for _, cand := range []string{ref, taxonomy.Slug(ref), CanonHeader(ref)} {
		if cand == "" {
			continue
		}
		if idx, ok := byKey[cand]; ok {
			return idx, true
		}
	}
	return 0, false
}

func evidenceFromHit(h retrieval.Hit) Evidence {
	docID := h.DocID
	if docID == "" {
		docID = h.DocName
	}
	start, end := ParseChunkSpan(h.ChunkID)

	txt := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(h.Text, "\r", " "), "\n", " "))
	if len(txt) > evidenceTextCap {
		txt = strings.TrimRight(txt[:evidenceTextCap-3], " ") + "..."
	}

	var evidenceID string
	if docID != "" && h.ChunkID != "" {
		evidenceID = docID + "::" + h.ChunkID
	}
	return Evidence{
		Doc:        h.DocName,
		DocID:      docID,
		EvidenceID: evidenceID,
		CharStart:  start,
		CharEnd:    end,
		Score:      h.Score,
		Text:       txt,
	}
}

// ParseChunkSpan extracts the character span from a chunk ID whose last two
// colon-separated fields are the start and end offsets.
func ParseChunkSpan(chunkID string) (*int, *int) {
	parts := strings.Split(strings.TrimSpace(chunkID), ":")
	if len(parts) < 2 {
		return nil, nil
	}
	start, err1 := strconv.Atoi(parts[len(parts)-2])
	end, err2 := strconv.Atoi(parts[len(parts)-1])
	if err1 != nil || err2 != nil {
		return nil, nil
	}
	return &start, &end
}

func evidenceKey(ev Evidence) string {
	cs, ce := "", ""
	if ev.CharStart != nil {
		cs = strconv.Itoa(*ev.CharStart)
	}
	if ev.CharEnd != nil {
		ce = strconv.Itoa(*ev.CharEnd)
	}
	if ev.DocID != "" {
		return fmt.Sprintf("%s|%s|%s|%s", ev.Doc, ev.DocID, cs, ce)
	}
	return fmt.Sprintf("%s|%s|%s", ev.Doc, cs, ce)
}
