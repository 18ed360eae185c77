// Package reply isolates the JSON payload from a model's free-text reply.
package reply

import (
	"errors"
	"regexp"
	"strings"

	"github.com/soilextract/soilextract/internal/providers"
)

var (
	// ErrNoMessages means the completion carried no choices.
	ErrNoMessages = errors.New("the response contains no messages")

	// ErrNoJSONSection means the reply had no fenced json block.
	ErrNoJSONSection = errors.New("unable to locate the json section of the response")
)

// jsonFence matches the first ```json ... ``` block, stopping at the
// nearest closing fence.
var jsonFence = regexp.MustCompile("```json\\s*([\\s\\S]+?)\\s*```")

// InvalidResponseError reports a reply that cannot yield a payload.
// Reason is ErrNoMessages or ErrNoJSONSection.
type InvalidResponseError struct {
	Reason error
	Reply  string
}

func (e *InvalidResponseError) Error() string {
	return "invalid response: " + e.Reason.Error()
}

func (e *InvalidResponseError) Unwrap() error {
	return e.Reason
}

// FirstMessage returns the content of the first choice.
func FirstMessage(c *providers.ChatCompletion) (string, error) {
	if c == nil || len(c.Choices) == 0 {
		return "", &InvalidResponseError{Reason: ErrNoMessages}
	}
	return c.Choices[0].Message.Content, nil
}

// ExtractJSON returns the trimmed interior of the first json fence in text.
// Later fences are ignored.
func ExtractJSON(text string) (string, error) {
	m := jsonFence.FindStringSubmatch(text)
	if m == nil {
		return "", &InvalidResponseError{Reason: ErrNoJSONSection, Reply: text}
	}
	return strings.TrimSpace(m[1]), nil
}
