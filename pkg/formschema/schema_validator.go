package formschema

import "formfield.app/pkg/validation"

const (
	MsgOrderNotUnique = "The order field must be unique."
	MsgNameNotUnique  = "The name field must be unique."
	MsgFieldsRequired = "The fields field is required."
)

// ValidateFields checks a candidate field list: every entry on its own, then
// order and name uniqueness across the list. Uniqueness failures are
// reported once each under the list key. The returned specs hold the
// converted entries, in input order, whether or not they were valid.
func ValidateFields(inputs []FieldInput, errs *validation.Errors) []FieldSpec {
	if len(inputs) == 0 {
		errs.Add(validation.ListKey, MsgFieldsRequired)
		return nil
	}
	specs := make([]FieldSpec, 0, len(inputs))
	for i, in := range inputs {
		ValidateField(i, in, errs)
		specs = append(specs, in.Spec())
	}
	CheckUnique(inputs, nil, errs)
	return specs
}

// CheckUnique reports duplicate orders and names among the candidates and
// the kept fields. Kept fields are stored fields that stay on the form
// without being part of the candidate list. Candidates missing the order or
// the name are already reported by ValidateField and are skipped here.
func CheckUnique(inputs []FieldInput, kept []FieldSpec, errs *validation.Errors) {
	orders := make(map[int]struct{}, len(inputs)+len(kept))
	names := make(map[string]struct{}, len(inputs)+len(kept))
	dupOrder, dupName := false, false

	seeOrder := func(o int) {
		if _, ok := orders[o]; ok {
			dupOrder = true
		}
		orders[o] = struct{}{}
	}
	seeName := func(n string) {
		if _, ok := names[n]; ok {
			dupName = true
		}
		names[n] = struct{}{}
	}

	for _, f := range kept {
		seeOrder(f.Order)
		seeName(f.Name)
	}
	for _, in := range inputs {
		if in.Order != nil {
			seeOrder(*in.Order)
		}
		if in.Name != nil {
			seeName(*in.Name)
		}
	}

	if dupOrder {
		errs.Add(validation.ListKey, MsgOrderNotUnique)
	}
	if dupName {
		errs.Add(validation.ListKey, MsgNameNotUnique)
	}
}
