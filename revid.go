package revstore

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/flimzy/revstore/errors"
)

// RevID is an opaque revision identifier of the form
// "<generation>-<digest>" (spec.md §4.1).
type RevID struct {
	Generation int
	Digest     string
}

// String renders the RevID in wire format. The zero RevID renders as the
// empty string.
func (r RevID) String() string {
	if r.Generation == 0 {
		return ""
	}
	return strconv.Itoa(r.Generation) + "-" + r.Digest
}

// IsZero reports whether r is the unset RevID.
func (r RevID) IsZero() bool {
	return r.Generation == 0
}

// Less implements the "largest revID wins" tie-break from spec.md §9: a
// plain lexicographic comparison of the rendered string, preserved for
// protocol compatibility even though it isn't generation-monotonic.
func (r RevID) Less(other RevID) bool {
	return r.String() < other.String()
}

// ParseRevID parses a revID of the form "<generation>-<digest>"
// (spec.md §4.1, invariant I2). The generation must be a positive integer.
func ParseRevID(s string) (RevID, error) {
	gen, digest, ok := strings.Cut(s, "-")
	if !ok || digest == "" {
		return RevID{}, errors.BadRequest("malformed rev id %q", s)
	}
	n, err := strconv.Atoi(gen)
	if err != nil || n <= 0 {
		return RevID{}, errors.BadRequest("malformed rev id %q", s)
	}
	return RevID{Generation: n, Digest: digest}, nil
}

// nextRevID computes the successor of prev (nil for a root revision).
// Generation increments by exactly one per spec.md I8; the digest is a
// random token (see SPEC_FULL.md §9 for why a random UUID was chosen over
// a canonical body hash).
func nextRevID(prev *RevID) RevID {
	gen := 1
	if prev != nil {
		gen = prev.Generation + 1
	}
	return RevID{
		Generation: gen,
		Digest:     strings.ReplaceAll(uuid.NewString(), "-", ""),
	}
}
