package genai

import "errors"

// variant is one entry in the ordered list of call shapes attempted for a
// request. Keeping the fallback policy as an explicit list (rather than
// nested error handling) keeps it inspectable and testable.
type variant struct {
	name string
	req  Request

	// continueOn reports whether a failure of this variant should fall
	// through to the next variant instead of propagating.
	continueOn func(err error) bool
}

// strategies expands a request into its ordered call variants. A request
// that carries tools gets a second, tool-free variant attempted only when
// the backend rejects tool use as an invalid argument.
func strategies(req Request) []variant {
	variants := []variant{{
		name:       "full",
		req:        req,
		continueOn: func(err error) bool { return false },
	}}

	if len(req.Tools) > 0 {
		variants[0].continueOn = func(err error) bool {
			return errors.Is(err, ErrToolsRejected)
		}

		stripped := req
		stripped.Tools = nil
		stripped.ToolHandler = nil

		variants = append(variants, variant{
			name:       "tools-disabled",
			req:        stripped,
			continueOn: func(err error) bool { return false },
		})
	}

	return variants
}
