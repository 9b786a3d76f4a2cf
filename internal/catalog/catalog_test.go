package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/membergate/membergate/internal/model"
)

// Every enumerated code must have exactly one catalog entry.
func TestCatalog_CoversEveryCode(t *testing.T) {
	for _, code := range model.AllErrorCodes() {
		_, ok := messages[code]
		assert.True(t, ok, "code %q has no catalog entry", code)
	}
	assert.Len(t, messages, len(model.AllErrorCodes()))
}

func TestMessageFor_UnknownCodeIsGeneric(t *testing.T) {
	assert.Equal(t, genericMessage, MessageFor(model.ErrorCode("never_defined")))
}

func TestMessageFor_SharedEmptyUsernameMessage(t *testing.T) {
	// The login-flow wording shadows the lost-password variant.
	assert.Equal(t, "You do have an email address, right?", MessageFor(model.CodeEmptyUsername))
}

func TestMessagesFor_PreservesOrder(t *testing.T) {
	msgs := MessagesFor([]model.ErrorCode{model.CodeEmptyUsername, model.CodeEmptyPassword})
	assert.Equal(t, []string{
		"You do have an email address, right?",
		"You need to enter a password to login.",
	}, msgs)
}
