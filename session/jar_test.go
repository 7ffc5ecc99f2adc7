package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJarMergeOverwritesAndKeepsOrder(t *testing.T) {
	jar := NewJar()
	jar.Merge([]string{
		"JSESSIONID=abc; Path=/crsc; HttpOnly",
		"A=1",
	})
	jar.Merge([]string{"JSESSIONID=def; Secure", "B=2"})

	v, ok := jar.Get("JSESSIONID")
	require.True(t, ok)
	assert.Equal(t, "def", v)
	assert.Equal(t, 3, jar.Len())
	assert.Equal(t, "JSESSIONID=def; A=1; B=2", jar.Header())
}

func TestJarMergeSkipsMalformed(t *testing.T) {
	jar := NewJar()
	jar.Merge([]string{"novalue", "=orphan", "  spaced = value ; Path=/", ""})

	assert.Equal(t, 1, jar.Len())
	v, _ := jar.Get("spaced")
	assert.Equal(t, "value", v)
}

func TestJarValueMayContainEquals(t *testing.T) {
	jar := NewJar()
	jar.Merge([]string{"token=a=b==; Path=/"})

	v, _ := jar.Get("token")
	assert.Equal(t, "a=b==", v)
}

func TestEmptyJarHeader(t *testing.T) {
	assert.Equal(t, "", NewJar().Header())
}
