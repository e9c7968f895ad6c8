package google

// AuthorizationError reports that the mailbox cannot be accessed because no
// usable OAuth token is available. Callers surface this as an authorization
// problem rather than a generic failure.
type AuthorizationError struct {
	Reason string
	Err    error
}

func (e *AuthorizationError) Error() string {
	if e.Err != nil {
		return "mailbox authorization: " + e.Reason + ": " + e.Err.Error()
	}
	return "mailbox authorization: " + e.Reason
}

func (e *AuthorizationError) Unwrap() error {
	return e.Err
}
