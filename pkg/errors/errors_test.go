package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithContext(t *testing.T) {
	err := WithContext(New("boom"), "sync file")
	assert.EqualError(t, err, "sync file: boom")

	nested := WithContext(err, "reconcile")
	assert.EqualError(t, nested, "reconcile: sync file: boom")
}

func TestGetPrintableMessage(t *testing.T) {
	assert.Equal(t, "plain", GetPrintableMessage(New("plain")))

	friendly := NewFriendlyError("something went wrong: %d", 7)
	assert.Equal(t, "something went wrong: 7", GetPrintableMessage(friendly))

	assert.Equal(t, `"x" does not exist`,
		GetPrintableMessage(FileNotFound{Path: "x"}))

	invalid := InvalidPathError{Path: "/p/", Reason: "trailing separator"}
	assert.Equal(t, `The path "/p/" can't be scanned: trailing separator.`,
		GetPrintableMessage(invalid))
}
