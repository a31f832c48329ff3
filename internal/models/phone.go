package models

// PhonePhase identifies which step of the phone verification flow an event
// describes.
type PhonePhase int

const (
	PhaseUnknown PhonePhase = iota
	PhaseCodeSent
	PhaseAutoVerified
	PhaseTimedOut
	PhaseFailed
)

func (p PhonePhase) String() string {
	switch p {
	case PhaseCodeSent:
		return "code-sent"
	case PhaseAutoVerified:
		return "auto-verified"
	case PhaseTimedOut:
		return "timed-out"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// PhoneAuthCred is a single emission of the phone verification flow.
//
// Only one phase is populated per event:
//   - code sent:     VerificationID, CodeSent=true, ResendToken
//   - auto-verified: SMSCode, VerificationID
//   - timed out:     VerificationID, TimedOut=true
//   - failed:        Err, ResendToken (terminal)
type PhoneAuthCred struct {
	SMSCode        string
	VerificationID string
	CodeSent       bool
	TimedOut       bool
	ResendToken    *int

	// Err is set on the terminal failure event only. That event also carries
	// the last resend token of the flow so a retry can reuse it.
	Err error
}

// Phase derives the flow step from the populated fields.
func (c PhoneAuthCred) Phase() PhonePhase {
	switch {
	case c.Err != nil:
		return PhaseFailed
	case c.CodeSent:
		return PhaseCodeSent
	case c.TimedOut:
		return PhaseTimedOut
	case c.SMSCode != "":
		return PhaseAutoVerified
	default:
		return PhaseUnknown
	}
}
