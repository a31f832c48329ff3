package failures

const (
	msgInvalidEmail        = "Email is not valid or badly formatted."
	msgUserDisabled        = "This user has been disabled. Please contact support for help."
	msgUserNotFound        = "Email is not found, please create an account."
	msgWrongPassword       = "Incorrect password, please try again."
	msgOperationNotAllowed = "Operation is not allowed.  Please contact support."
)

var signUpTable = map[string]string{
	"invalid-email":         msgInvalidEmail,
	"user-disabled":         msgUserDisabled,
	"email-already-in-use":  "An account already exists for that email.",
	"operation-not-allowed": msgOperationNotAllowed,
	"weak-password":         "Please enter a stronger password.",
}

var logInEmailTable = map[string]string{
	"invalid-email":  msgInvalidEmail,
	"user-disabled":  msgUserDisabled,
	"user-not-found": msgUserNotFound,
	"wrong-password": msgWrongPassword,
}

var federatedTable = map[string]string{
	"account-exists-with-different-credential": "Account exists with different credentials.",
	"invalid-credential":                       "The credential received is malformed or has expired.",
	"operation-not-allowed":                    msgOperationNotAllowed,
	"user-disabled":                            msgUserDisabled,
	"user-not-found":                           msgUserNotFound,
	"wrong-password":                           msgWrongPassword,
	"invalid-verification-code":                "The credential verification code received is invalid.",
	"invalid-verification-id":                  "The credential verification ID received is invalid.",
}

var phoneTable = map[string]string{
	"invalid-phone-number": "The provided phone number is not valid.",
	"user-disabled":        msgUserDisabled,
	CodeNotSent:            "The verification code has not been sent yet. Please request a code first.",
}

var tables = map[Family]map[string]string{
	SignUp:         signUpTable,
	LogInEmail:     logInEmailTable,
	LogInFederated: federatedTable,
	LogInPhone:     phoneTable,
}
