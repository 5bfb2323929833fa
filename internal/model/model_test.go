package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecipientRoundTrip(t *testing.T) {
	var m Message
	m.SetTarget(GroupRecipient("G1"))
	require.Equal(t, "G1", m.ReceiveId)
	require.True(t, m.IsGroupMessage)
	require.Equal(t, GroupRecipient("G1"), m.Target())

	m.SetTarget(UserRecipient("U1"))
	require.False(t, m.IsGroupMessage)
	require.Equal(t, UserRecipient("U1"), m.Target())
}

func TestRecipientZeroValueInvalid(t *testing.T) {
	var r Recipient
	require.False(t, r.Valid())
	require.True(t, GroupRecipient("G1").Valid())
}
