package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpen(t *testing.T) {
	plain := []byte("POST /api/entries {\"credit\":\"150.00\"}")

	enc, err := seal("audit-key", plain)
	require.NoError(t, err)
	assert.NotEqual(t, plain, enc)

	dec, err := open("audit-key", enc)
	require.NoError(t, err)
	assert.Equal(t, plain, dec)

	// 密钥不对时解密失败
	_, err = open("other-key", enc)
	assert.Error(t, err)

	_, err = open("audit-key", []byte("short"))
	assert.Error(t, err)
}

func TestSeal_RandomNonce(t *testing.T) {
	a, err := seal("k", []byte("same"))
	require.NoError(t, err)
	b, err := seal("k", []byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestEncryptDecryptField(t *testing.T) {
	enc, err := EncryptField("audit-key", "DELETE /api/entries/3")
	require.NoError(t, err)
	assert.NotEqual(t, "DELETE /api/entries/3", enc)
	assert.Equal(t, "DELETE /api/entries/3", DecryptField("audit-key", enc))

	// 未配置密钥时原样返回
	plain, err := EncryptField("", "text")
	require.NoError(t, err)
	assert.Equal(t, "text", plain)
	assert.Equal(t, "text", DecryptField("", "text"))

	// 不是密文时返回原值
	assert.Equal(t, "not-base64!", DecryptField("audit-key", "not-base64!"))
	assert.Equal(t, enc, DecryptField("wrong-key", enc))
}
