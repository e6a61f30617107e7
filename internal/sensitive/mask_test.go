package sensitive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "j***@example.edu", MaskEmail("jdoe@example.edu"))
	assert.Equal(t, "a***@x.y", MaskEmail("abcdef@x.y"))
	// Values that are not addresses pass through untouched.
	assert.Equal(t, "not-an-email", MaskEmail("not-an-email"))
	assert.Equal(t, "@nolocal.part", MaskEmail("@nolocal.part"))
	assert.Equal(t, "", MaskEmail(""))
}

func TestMaskContact(t *testing.T) {
	assert.Equal(t, "***-***-1234", MaskContact("555-010-1234"))
	assert.Equal(t, "******7890", MaskContact("1234567890"))
	// Four digits or fewer carry no hidden prefix.
	assert.Equal(t, "1234", MaskContact("1234"))
	assert.Equal(t, "x1", MaskContact("x1"))
	assert.Equal(t, "", MaskContact(""))
}

func TestMaskSSN(t *testing.T) {
	assert.Equal(t, "XXX-XX-6789", MaskSSN("123-45-6789"))
	assert.Equal(t, "XXX-XX-XXXX", MaskSSN(""))
	assert.Equal(t, "XXX-XX-XXXX", MaskSSN("12"))
}

func TestValidSSN(t *testing.T) {
	assert.True(t, ValidSSN("123-45-6789"))
	assert.False(t, ValidSSN("123456789"))
	assert.False(t, ValidSSN("123-456-789"))
	assert.False(t, ValidSSN("abc-de-fghi"))
	assert.False(t, ValidSSN(" 123-45-6789"))
	assert.False(t, ValidSSN(""))
}
