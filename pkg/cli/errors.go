package cli

import (
	"errors"
	"io"
	"sort"

	cerrors "github.com/DeBrosOfficial/contacts/pkg/errors"
)

// renderError prints a failed command's error followed by a hint picked from
// the error's category. verbose adds the captured stack trace.
func renderError(w io.Writer, err error, verbose bool) {
	printf(w, "%s\n", errorStyle.Render("❌ "+err.Error()))

	code := cerrors.GetErrorCode(err)
	respErr, isResponse := cerrors.AsResponse(err)

	switch cerrors.GetCategory(code) {
	case cerrors.CategoryAuth:
		printf(w, "%s\n", labelStyle.Render("Your session is missing or was rejected; run 'contacts login <email>'"))

	case cerrors.CategoryNetwork:
		if code == cerrors.CodeCancelled {
			printf(w, "%s\n", labelStyle.Render("The request was cancelled before the service answered"))
			break
		}
		printf(w, "%s %v\n", labelStyle.Render("Could not reach the service:"), cerrors.Cause(err))

	case cerrors.CategoryClient:
		if !isResponse {
			break
		}
		fields := respErr.FieldErrors()
		names := make([]string, 0, len(fields))
		for name := range fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			printf(w, "  %s %s\n", labelStyle.Render(name+":"), fields[name])
		}

	case cerrors.CategoryServer:
		switch {
		case code == cerrors.CodeSerializationError:
			printf(w, "%s %v\n", labelStyle.Render("The request or response body could not be encoded:"), cerrors.Cause(err))
		case isResponse && respErr.Status >= 500:
			printf(w, "%s %s\n", labelStyle.Render("The service failed:"), cerrors.GetErrorMessage(respErr))
		}
	}

	if verbose {
		var traced interface{ StackTrace() string }
		if errors.As(err, &traced) {
			if trace := traced.StackTrace(); trace != "" {
				printf(w, "\n%s\n%s", labelStyle.Render("Stack trace:"), trace)
			}
		}
	}
}
