package validator

// Validator checks a value against its `validate` struct tags.
type Validator interface {
	Validate(data any) error
}
