// Package responses maps signup response codes to display messages.
//
// The authentication backend answers a signup request with a code (mCode).
// The table resolves that code to the text shown under the form. Default
// returns the built-in table; YAML sources (a file or an S3 object) can be
// merged on top:
//
//	table := responses.Default()
//	overrides, err := responses.LoadFile("messages.yaml")
//	if err != nil {
//	    return err
//	}
//	table.Merge(overrides)
//
//	msg, ok := table.Lookup(responses.CodeEmailSent)
//
// The YAML format is a flat mapping:
//
//	EMAIL_SENT: A verification email has been sent.
//	EMAIL_ALREADY_EXISTS: An account with this email address already exists.
//
// Every message is passed through a strict HTML sanitizer before it is
// stored, so tables from external sources cannot inject markup.
package responses
