package importer

import (
	"strings"

	"github.com/licenzia/inventory-importer/pkg/db/models"
)

// Classification identifies which partition a row landed in.
type Classification string

const (
	ClassAccepted       Classification = "accepted"
	ClassInvalid        Classification = "invalid"
	ClassStoreDuplicate Classification = "duplicate_in_store"
	ClassFileDuplicate  Classification = "duplicate_in_file"
)

// KeySet holds activation keys for O(1) membership checks.
type KeySet map[string]struct{}

func NewKeySet(keys ...string) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

func (s KeySet) Has(key string) bool {
	_, ok := s[key]
	return ok
}

func (s KeySet) Add(key string) {
	s[key] = struct{}{}
}

// Skipped records one excluded row and why.
type Skipped struct {
	Position      int
	ActivationKey string
	Reason        string
}

// Result partitions every input row exactly once. Accepted rows are already
// converted to persistable items; the other partitions keep position and
// reason for warnings and side files.
type Result struct {
	Total           int
	Accepted        []models.InventoryItem
	Invalid         []Skipped
	StoreDuplicates []Skipped
	FileDuplicates  []Skipped
}

// Reconciler classifies candidate rows one at a time, in input order.
// Classification is mutually exclusive and evaluated as: blank key, then
// store duplicate, then file duplicate, then field validation, else accept.
// First occurrence of a key wins; later repeats are file duplicates.
type Reconciler struct {
	existing KeySet
	seen     KeySet
	result   Result
}

func NewReconciler(existing KeySet) *Reconciler {
	if existing == nil {
		existing = NewKeySet()
	}
	return &Reconciler{
		existing: existing,
		seen:     NewKeySet(),
	}
}

// Add classifies the next row. It never fails: malformed rows land in the
// invalid partition.
func (rc *Reconciler) Add(row Row) Classification {
	rc.result.Total++

	key := strings.TrimSpace(row.ActivationKey)
	if key == "" {
		rc.skip(&rc.result.Invalid, row.Position, key, "activation key is blank")
		return ClassInvalid
	}
	if rc.existing.Has(key) {
		rc.skip(&rc.result.StoreDuplicates, row.Position, key, "activation key already in store")
		return ClassStoreDuplicate
	}
	if rc.seen.Has(key) {
		rc.skip(&rc.result.FileDuplicates, row.Position, key, "activation key repeated in file")
		return ClassFileDuplicate
	}

	// The key claims its slot even if the row itself is rejected below, so a
	// later row with the same key is still a file duplicate.
	rc.seen.Add(key)

	item, err := row.item(key)
	if err != nil {
		rc.skip(&rc.result.Invalid, row.Position, key, err.Error())
		return ClassInvalid
	}

	rc.result.Accepted = append(rc.result.Accepted, item)
	return ClassAccepted
}

// Result returns the partitions accumulated so far.
func (rc *Reconciler) Result() Result {
	return rc.result
}

func (rc *Reconciler) skip(partition *[]Skipped, position int, key, reason string) {
	*partition = append(*partition, Skipped{Position: position, ActivationKey: key, Reason: reason})
}

// Reconcile classifies rows in a single call. It is equivalent to feeding a
// Reconciler row by row and is deterministic for a given input.
func Reconcile(existing KeySet, rows []Row) Result {
	rc := NewReconciler(existing)
	for _, row := range rows {
		rc.Add(row)
	}
	return rc.Result()
}
