package view

// UnknownError is shown when a failure carries no usable message.
const UnknownError = "Unknown error occurred"

// Message turns a failure into the text shown to the user: the error's
// own message verbatim, or UnknownError for anything that is not an error
// (a recovered panic value, for instance) or has an empty message.
func Message(v any) string {
	if err, ok := v.(error); ok && err != nil {
		if msg := err.Error(); msg != "" {
			return msg
		}
	}
	return UnknownError
}
