// Package mail sends email through a provider-agnostic Mail interface.
//
// SMTP delivers over net/smtp. Log writes the message to slog instead and is
// meant for local runs where no mail server exists.
package mail
