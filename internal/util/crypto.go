package util

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

// ----------------- 审计日志字段加密（AES-256-GCM） -----------------

const kdfIterations = 100_000

var (
	errShortCipher = errors.New("cipher too short")

	// 审计密钥来自配置，固定 salt 保证重启后仍能解密旧记录
	auditSalt = []byte("cred-entry/audit")

	derived sync.Map // 配置密钥 -> 32 字节 key
)

// deriveKey 用 PBKDF2+SHA256 把任意长度的配置密钥派生为 32 字节 key，结果缓存
func deriveKey(key string) []byte {
	if k, ok := derived.Load(key); ok {
		return k.([]byte)
	}
	k := pbkdf2.Key([]byte(key), auditSalt, kdfIterations, 32, sha256.New)
	derived.Store(key, k)
	return k
}

func fieldCipher(key string) (cipher.AEAD, error) {
	block, err := aes.NewCipher(deriveKey(key))
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// seal 返回 nonce+ciphertext
func seal(key string, plain []byte) ([]byte, error) {
	aead, err := fieldCipher(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plain)+aead.Overhead())
	if _, err := rand.Read(out); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	return aead.Seal(out, out, plain, nil), nil
}

// open 拆出 nonce 后解密
func open(key string, data []byte) ([]byte, error) {
	aead, err := fieldCipher(key)
	if err != nil {
		return nil, err
	}
	n := aead.NonceSize()
	if len(data) < n {
		return nil, errShortCipher
	}
	plain, err := aead.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plain, nil
}

// EncryptField 把明文加密为 base64 字符串；未配置密钥时原样返回
func EncryptField(key, plain string) (string, error) {
	if plain == "" || key == "" {
		return plain, nil
	}
	b, err := seal(key, []byte(plain))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// DecryptField 尝试解密 base64+AES，失败则返回原值
func DecryptField(key, enc string) string {
	if enc == "" || key == "" {
		return enc
	}
	b, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return enc
	}
	plain, err := open(key, b)
	if err != nil {
		return enc
	}
	return string(plain)
}
