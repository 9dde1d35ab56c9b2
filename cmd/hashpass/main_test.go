package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRun(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(strings.NewReader("correct horse\n"), &out))

	hash := strings.TrimSpace(out.String())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("correct horse")))
}

func TestRun_TooShort(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run(strings.NewReader("short"), &out))
	assert.Empty(t, out.String())
}
