package validation

import (
	"fmt"
	"strings"
)

// MaxPostTextLen caps post bodies at 50K characters.
const MaxPostTextLen = 50000

// PostField describes one field of the post form. The schema is declared by
// hand rather than derived from struct tags so clients can render the form
// without guessing at constraints.
type PostField struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Label    string `json:"label"`
	HelpText string `json:"help_text,omitempty"`
	MaxLen   int    `json:"max_len,omitempty"`
}

// PostFormSchema returns the declared field list for the post create/edit form.
func PostFormSchema() []PostField {
	return []PostField{
		{
			Name:     "text",
			Type:     "text",
			Required: true,
			Label:    "Text",
			HelpText: "Post body",
			MaxLen:   MaxPostTextLen,
		},
		{
			Name:     "group_id",
			Type:     "choice",
			Required: false,
			Label:    "Group",
			HelpText: "Group this post belongs to",
		},
	}
}

// ValidatePostText checks the post body against the form constraints.
// Whitespace-only text counts as empty.
func ValidatePostText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text is required")
	}
	if len(text) > MaxPostTextLen {
		return fmt.Errorf("text too long (max %d characters)", MaxPostTextLen)
	}
	return nil
}
