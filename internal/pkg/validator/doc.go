// Package validator validates request structs through struct tags.
//
// Use cases depend on the Validator interface. V10Validator is the
// go-playground/validator implementation with English messages and the
// password, username and numeric_code rules.
package validator
