package entity

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Purpose string

const (
	PurposeJoin   Purpose = "join"
	PurposeResend Purpose = "resend"
)

func (p Purpose) String() string {
	return string(p)
}

// Title renders the purpose for humans, "email_change" becomes "Email Change".
func (p Purpose) Title() string {
	s := strings.ReplaceAll(strings.TrimSpace(string(p)), "_", " ")
	return cases.Title(language.English).String(s)
}

// Email is a rendered message ready for the mail transport.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}
