package formschema

import (
	"fmt"

	"formfield.app/pkg/validation"
)

const (
	MsgCannotRequire    = "Cannot change field to required."
	MsgCannotChangeType = "Cannot change field type."
	MsgUnknownField     = "The selected id is invalid."
	MsgDuplicateField   = "The id field has a duplicate value."
	MsgRemovedField     = "The field is listed for removal and cannot be updated."
)

// RemovedKey is the error key of the removal list entry at index.
func RemovedKey(index int) string {
	return fmt.Sprintf("removed_fields.%d", index)
}

// StoredValue is one submission's answer for a field.
type StoredValue struct {
	SubmissionID uint
	Value        Value
}

// State is what a migration is evaluated against: the form's current fields
// and, per field id, every stored answer.
type State struct {
	Fields []FieldSpec
	Values map[uint][]StoredValue
}

// Proposal is a requested schema change. Inputs with an id update that
// field; inputs without one create a field. Stored fields that appear in
// neither Fields nor Removed stay as they are.
type Proposal struct {
	Fields  []FieldInput
	Removed []uint
}

// FieldChange is the before/after of an updated field.
type FieldChange struct {
	Before FieldSpec
	After  FieldSpec
}

// TypeChanged reports whether the update retypes the field.
func (c FieldChange) TypeChanged() bool { return c.Before.Type != c.After.Type }

// ValueChange is a stored answer rewritten by a type change.
type ValueChange struct {
	SubmissionID uint
	FieldID      uint
	Before       Value
	After        Value
}

// SkippedConversion is a stored answer whose shape did not fit the
// conversion of its field's type change. It is left as stored.
type SkippedConversion struct {
	SubmissionID uint
	FieldID      uint
	From         FieldType
	To           FieldType
	Value        Value
}

// Plan is an accepted migration, ready to persist in this order: removals,
// field updates, value conversions, creations.
type Plan struct {
	Removed   []uint
	Updated   []FieldChange
	Converted []ValueChange
	Created   []FieldSpec
	Skipped   []SkippedConversion
}

// PlanMigration evaluates p against s. Every problem found is recorded in
// errs; if there is any, the migration is rejected as a whole and nil is
// returned.
func PlanMigration(s State, p Proposal, errs *validation.Errors) *Plan {
	current := make(map[uint]FieldSpec, len(s.Fields))
	for _, f := range s.Fields {
		current[f.ID] = f
	}

	removed := make(map[uint]bool, len(p.Removed))
	removedList := make([]uint, 0, len(p.Removed))
	for i, id := range p.Removed {
		if _, ok := current[id]; !ok {
			errs.Add(RemovedKey(i), MsgUnknownField)
			continue
		}
		if !removed[id] {
			removed[id] = true
			removedList = append(removedList, id)
		}
	}

	if len(p.Fields) == 0 {
		errs.Add(validation.ListKey, MsgFieldsRequired)
	}

	// Shape of each candidate and the ids it references.
	referenced := make(map[uint]bool, len(p.Fields))
	usable := make([]bool, len(p.Fields))
	for i, in := range p.Fields {
		ok := ValidateField(i, in, errs)
		if in.ID != nil {
			id := *in.ID
			switch {
			case referenced[id]:
				errs.Add(FieldKey(i, "id"), MsgDuplicateField)
				ok = false
			case removed[id]:
				errs.Add(FieldKey(i, "id"), MsgRemovedField)
				ok = false
			default:
				if _, exists := current[id]; !exists {
					errs.Add(FieldKey(i, "id"), MsgUnknownField)
					ok = false
				}
			}
			referenced[id] = true
		}
		usable[i] = ok
	}

	// Uniqueness covers every field the form will hold afterwards.
	kept := make([]FieldSpec, 0, len(s.Fields))
	for _, f := range s.Fields {
		if !removed[f.ID] && !referenced[f.ID] {
			kept = append(kept, f)
		}
	}
	CheckUnique(p.Fields, kept, errs)

	// Legality of each update against the answers already stored.
	for i, in := range p.Fields {
		if !usable[i] || in.ID == nil {
			continue
		}
		before := current[*in.ID]
		after := in.Spec()
		values := s.Values[before.ID]
		if !CanRequire(before, after, values) {
			errs.Add(ValueKey(before.ID), MsgCannotRequire)
		}
		if !CanRetype(before.Type, after.Type, values) {
			errs.Add(ValueKey(before.ID), MsgCannotChangeType)
		}
	}

	if !errs.Empty() {
		return nil
	}

	plan := &Plan{Removed: removedList}
	for _, in := range p.Fields {
		if in.ID == nil {
			plan.Created = append(plan.Created, in.Spec())
			continue
		}
		change := FieldChange{Before: current[*in.ID], After: in.Spec()}
		plan.Updated = append(plan.Updated, change)
		if !change.TypeChanged() {
			continue
		}
		for _, sv := range s.Values[change.Before.ID] {
			out, ok := Convert(sv.Value, change.Before.Type, change.After.Type)
			if !ok {
				plan.Skipped = append(plan.Skipped, SkippedConversion{
					SubmissionID: sv.SubmissionID,
					FieldID:      change.Before.ID,
					From:         change.Before.Type,
					To:           change.After.Type,
					Value:        sv.Value,
				})
				continue
			}
			if !out.Equal(sv.Value) {
				plan.Converted = append(plan.Converted, ValueChange{
					SubmissionID: sv.SubmissionID,
					FieldID:      change.Before.ID,
					Before:       sv.Value,
					After:        out,
				})
			}
		}
	}
	return plan
}

// CanRequire reports whether a field may go from before to after given its
// stored answers. Only a false → true change of Required is checked; it
// fails when any answer is blank.
func CanRequire(before, after FieldSpec, values []StoredValue) bool {
	if before.Required || !after.Required {
		return true
	}
	for _, sv := range values {
		if sv.Value.IsBlank() {
			return false
		}
	}
	return true
}

// CanRetype reports whether a field holding values may change type from
// `from` to `to`.
func CanRetype(from, to FieldType, values []StoredValue) bool {
	if from == to {
		return true
	}
	if from.IsChoice() != to.IsChoice() && len(values) > 0 {
		return false
	}
	if from == TypeText && (to == TypeNumber || to == TypeCurrency) {
		for _, sv := range values {
			if !sv.Value.IsNull() && !IsNumeric(sv.Value) {
				return false
			}
		}
	}
	if from == TypeCheckbox && to.Domain() == DomainChoiceSingle {
		for _, sv := range values {
			if c, ok := sv.Value.Choices(); ok && len(c) > 1 {
				return false
			}
		}
	}
	return true
}
