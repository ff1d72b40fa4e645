package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "alumnet/pkg/domain-errors"
)

func Test_HashAndVerify(t *testing.T) {
	hash, err := Hash("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, Verify("s3cret-pass", hash))
	assert.False(t, Verify("wrong", hash))
}

func Test_Hash_TooShort(t *testing.T) {
	_, err := Hash("short")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func Test_Verify_EmptyHashNeverMatches(t *testing.T) {
	assert.False(t, Verify("anything", ""))
	assert.False(t, Verify("", ""))
}

func Test_DummyCompare_DoesNotPanic(t *testing.T) {
	DummyCompare("whatever")
	DummyCompare("")
}
