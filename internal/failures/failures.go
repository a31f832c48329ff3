package failures

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/provider"
)

// Family tags the operation a failure originated from.
type Family int

const (
	SignUp Family = iota
	LogInEmail
	LogInFederated
	LogInPhone
)

func (f Family) String() string {
	switch f {
	case SignUp:
		return "SignUpWithEmailAndPasswordFailure"
	case LogInEmail:
		return "LogInWithEmailAndPasswordFailure"
	case LogInFederated:
		return "LogInWithGoogleFailure"
	case LogInPhone:
		return "LoginWithPhoneNumberFailure"
	default:
		return "UnknownFailure"
	}
}

// DefaultMessage is used for any code a family does not recognise.
const DefaultMessage = "An unknown exception occurred."

// CodeNotSent is reported when a code is verified before one was dispatched.
const CodeNotSent = "code-not-sent"

// Failure is a typed domain failure. Code is the raw provider code that
// produced it and may be empty.
type Failure struct {
	Family  Family
	Code    string
	Message string
}

func (f *Failure) Error() string {
	if f.Code == "" {
		return fmt.Sprintf("%s: %s", f.Family, f.Message)
	}
	return fmt.Sprintf("%s(%s): %s", f.Family, f.Code, f.Message)
}

// Is matches another *Failure of the same family and code.
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	if !ok {
		return false
	}
	return f.Family == t.Family && f.Code == t.Code
}

// Known reports whether the failure came from a recognised code.
func (f *Failure) Known() bool {
	_, ok := tables[f.Family][f.Code]
	return ok
}

// FromCode returns the failure for code within family. Unrecognised codes keep
// the raw code but carry DefaultMessage.
func FromCode(family Family, code string) *Failure {
	if msg, ok := tables[family][code]; ok {
		return &Failure{Family: family, Code: code, Message: msg}
	}
	return &Failure{Family: family, Code: code, Message: DefaultMessage}
}

// Unknown returns the default failure of family.
func Unknown(family Family) *Failure {
	return &Failure{Family: family, Message: DefaultMessage}
}

// Codes lists the known codes of family. The order is unspecified.
func Codes(family Family) []string {
	out := make([]string, 0, len(tables[family]))
	for c := range tables[family] {
		out = append(out, c)
	}
	return out
}

var (
	// ErrCodeNotSent matches the phone failure for a verify call without a
	// dispatched code.
	ErrCodeNotSent = &Failure{Family: LogInPhone, Code: CodeNotSent, Message: phoneTable[CodeNotSent]}

	// ErrLogOut is returned when either sign-out fails. The provider supplies
	// no code on sign-out.
	ErrLogOut = errors.New("LogOutFailure")
)

// FromError maps err to a failure of family. Coded provider errors go through
// the family table, a *Failure passes through unchanged and anything else
// becomes the family's unknown failure.
func FromError(family Family, err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	if code, ok := provider.CodeOf(err); ok {
		return FromCode(family, code)
	}
	return Unknown(family)
}
