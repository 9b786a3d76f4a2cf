package model

// FormResult is the outcome of a form submission: either a success redirect
// or a failure redirect annotated with ordered error codes. Exactly one
// variant is populated; Errors is non-empty if and only if the submission
// failed.
type FormResult struct {
	// Redirect is the destination URL, including any query-encoded state
	// (markers on success, error-code lists on failure).
	Redirect string
	// Errors holds the ordered error codes of a failed submission.
	Errors []ErrorCode
}

// FormSuccess builds a successful result redirecting to the given URL.
func FormSuccess(redirect string) FormResult {
	return FormResult{Redirect: redirect}
}

// FormFailure builds a failed result redirecting back to the originating
// page with the given codes.
func FormFailure(redirect string, codes ...ErrorCode) FormResult {
	return FormResult{Redirect: redirect, Errors: codes}
}

// Succeeded reports whether the submission passed all checks.
func (r FormResult) Succeeded() bool {
	return len(r.Errors) == 0
}
