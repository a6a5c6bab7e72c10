// Package substitution implements the FIVB field-substitution legality
// rules: at most six field substitutions per set, and each starter forms an
// undirected pair with the substitute who replaces them, limited to two
// direction-constrained uses. Libero changes bypass this package entirely.
package substitution

// MaxPerSet is the FIVB limit on field substitutions in one set.
const MaxPerSet = 6

// maxPairUses caps a starter/substitute pair at entry plus one re-entry.
const maxPairUses = 2

// Pair tracks one starter/substitute pairing within a set. The pair is
// undirected for identity purposes but each use alternates direction.
type Pair struct {
	StarterID    string `json:"starter_id"`
	SubstituteID string `json:"substitute_id"`
	Uses         int    `json:"uses"`
}

// members reports whether id belongs to the pair.
func (p Pair) members(id string) bool {
	return p.StarterID == id || p.SubstituteID == id
}

// Record is the per-set substitution bookkeeping. Records are treated as
// immutable values: Apply returns a new Record, and the reducer rebuilds
// the record from the event history on every fold rather than patching a
// cached one.
type Record struct {
	Total int    `json:"total"`
	Pairs []Pair `json:"pairs,omitempty"`
}

// NewRecord creates the empty record installed at set start.
func NewRecord() Record { return Record{} }

// pairFor returns the index of the pair containing id, or -1.
func (r Record) pairFor(id string) int {
	for i, p := range r.Pairs {
		if p.members(id) {
			return i
		}
	}
	return -1
}

// Validate decides whether replacing playerOut with playerIn is legal given
// this record and the ids currently on court. Rules apply in order; the
// first violated rule's reason is returned. A nil error means the
// substitution may be appended to the log.
func (r Record) Validate(playerOutID, playerInID string, onCourtIDs []string) error {
	if r.Total >= MaxPerSet {
		return ErrLimitReached
	}
	if !contains(onCourtIDs, playerOutID) {
		return ErrNotOnCourt
	}
	if contains(onCourtIDs, playerInID) {
		return ErrAlreadyOnCourt
	}

	outPair := r.pairFor(playerOutID)
	inPair := r.pairFor(playerInID)
	switch {
	case outPair < 0 && inPair < 0:
		// Brand-new starter/substitute pair.
		return nil
	case outPair >= 0 && outPair == inPair:
		if r.Pairs[outPair].Uses >= maxPairUses {
			return ErrPairExhausted
		}
		// The on-court checks above already fix the direction: the member
		// currently on court leaves, the other re-enters.
		return nil
	default:
		return ErrPairedElsewhere
	}
}

// Apply records an accepted substitution, returning the updated record.
// The caller must have validated first; Apply does not re-check.
func (r Record) Apply(playerOutID, playerInID string) Record {
	out := Record{Total: r.Total + 1, Pairs: make([]Pair, len(r.Pairs))}
	copy(out.Pairs, r.Pairs)

	if i := out.pairFor(playerOutID); i >= 0 {
		out.Pairs[i].Uses++
		return out
	}
	out.Pairs = append(out.Pairs, Pair{
		StarterID:    playerOutID,
		SubstituteID: playerInID,
		Uses:         1,
	})
	return out
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
