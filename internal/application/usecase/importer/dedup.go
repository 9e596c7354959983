package importer

import "github.com/btc-tracker/backend/internal/domain/entity"

// Decision is the duplicate detector's verdict.
type Decision string

const (
	DecisionNew       Decision = "new"
	DecisionDuplicate Decision = "duplicate"
)

// Check is the result of one detector lookup.
type Check struct {
	Decision     Decision
	Key          string
	NormalizedID string
}

// Detector answers whether a record was already imported, either into the
// target report before the run or earlier in the same run. It is not safe
// for concurrent use; a run processes pages sequentially.
type Detector struct {
	kind entity.ImportKind
	seen map[string]struct{}
}

// NewDetector seeds a detector from the target report's existing records.
func NewDetector(kind entity.ImportKind, existing []entity.Record) *Detector {
	d := &Detector{kind: kind, seen: make(map[string]struct{}, len(existing))}
	for _, record := range existing {
		id := entity.NormalizeID(kind, record.OriginalID)
		if id == "" {
			continue
		}
		d.seen[entity.CompositeKey(id, record.SignedSats())] = struct{}{}
	}
	return d
}

// Check reports whether record is new. A new key is remembered immediately,
// so later pages of the run see it before the store does.
func (d *Detector) Check(record entity.Record) Check {
	id := entity.NormalizeID(d.kind, record.OriginalID)
	key := entity.CompositeKey(id, record.SignedSats())
	if _, ok := d.seen[key]; ok {
		return Check{Decision: DecisionDuplicate, Key: key, NormalizedID: id}
	}
	d.seen[key] = struct{}{}
	return Check{Decision: DecisionNew, Key: key, NormalizedID: id}
}

// Len returns the number of known keys.
func (d *Detector) Len() int {
	return len(d.seen)
}
