package languages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Lookup(t *testing.T) {
	r := Default()

	l, err := r.Lookup("zh")
	require.NoError(t, err)
	assert.Equal(t, "Chinese", l.Name)
	assert.Equal(t, "zh-CN", l.Voice)

	name, err := r.Name("es")
	require.NoError(t, err)
	assert.Equal(t, "Spanish", name)
}

func TestLookup_Unsupported(t *testing.T) {
	r := Default()

	_, err := r.Lookup("xx")
	require.Error(t, err)

	var ule *UnsupportedLanguageError
	require.True(t, errors.As(err, &ule))
	assert.Equal(t, "xx", ule.Code)
	assert.Len(t, ule.Supported, 10)
	assert.Contains(t, ule.Supported, "en")
	assert.Contains(t, err.Error(), `"xx"`)
}

func TestValidate(t *testing.T) {
	r := Default()

	assert.NoError(t, r.Validate("en", "fr"))
	assert.NoError(t, r.Validate())

	err := r.Validate("en", "klingon", "xx")
	var ule *UnsupportedLanguageError
	require.True(t, errors.As(err, &ule))
	assert.Equal(t, "klingon", ule.Code)
}

func TestCodesSortedAndLanguagesOrdered(t *testing.T) {
	r := NewRegistry(
		Language{Code: "fr", Name: "French"},
		Language{Code: "de", Name: "German"},
		Language{Code: "en", Name: "English"},
	)

	assert.Equal(t, []string{"de", "en", "fr"}, r.Codes())

	langs := r.Languages()
	require.Len(t, langs, 3)
	assert.Equal(t, "fr", langs[0].Code)
	// voice defaults to the code
	assert.Equal(t, "fr", langs[0].Voice)
}
