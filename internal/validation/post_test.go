package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePostText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{name: "plain text", text: "hello world"},
		{name: "empty", text: "", wantErr: true},
		{name: "whitespace only", text: "   \n\t ", wantErr: true},
		{name: "at max length", text: strings.Repeat("x", MaxPostTextLen)},
		{name: "over max length", text: strings.Repeat("x", MaxPostTextLen+1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePostText(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPostFormSchema(t *testing.T) {
	t.Parallel()

	schema := PostFormSchema()
	require.Len(t, schema, 2)

	assert.Equal(t, "text", schema[0].Name)
	assert.True(t, schema[0].Required)
	assert.Equal(t, MaxPostTextLen, schema[0].MaxLen)

	assert.Equal(t, "group_id", schema[1].Name)
	assert.False(t, schema[1].Required)
	assert.Equal(t, "choice", schema[1].Type)
}
