package session

import "github.com/jask/studentadmin/internal/student"

// ReportFailure publishes a failed call. Authorization failures log the
// operator out and show the server's message; anything else shows fallback.
func ReportFailure(err error, fallback string, auth AuthSetter, msgs MessageSetter) {
	if err == nil {
		return
	}
	if text, ok := student.IsAuthorization(err); ok {
		auth.SetIsAuth(false)
		msgs.SetGlobalMessage(Message{Text: text, Kind: MessageError})
		return
	}
	msgs.SetGlobalMessage(Message{Text: fallback, Kind: MessageError})
}
