package shop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/storebot/internal/domain"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"+79991234567", "+79991234567", true},
		{" 8 (999) 123-45-67 ", "89991234567", true},
		{"123456789", "", false},
		{"+1234567890123456", "", false},
		{"phone", "", false},
		{"++79991234567", "", false},
	}
	for _, tc := range cases {
		got, err := NormalizePhone(tc.in)
		if !tc.ok {
			assert.ErrorIs(t, err, domain.ErrInvalidPhone, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestWelcomeUnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Welcome(f.ctx, aliceID)
	assert.ErrorIs(t, err, domain.ErrNotRegistered)
}

func TestRegisterPhoneCreatesThenUpdates(t *testing.T) {
	f := newFixture(t)
	who := Identity{TelegramID: aliceID, FirstName: "Alice", LastName: "Smith"}

	c, created, err := f.svc.RegisterPhone(f.ctx, who, "+79991234567")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Alice Smith", c.FullName())

	again, created, err := f.svc.RegisterPhone(f.ctx, who, "+79991234567")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, c.ID, again.ID)

	changed, _, err := f.svc.RegisterPhone(f.ctx, who, "+79990000000")
	require.NoError(t, err)
	assert.Equal(t, "+79990000000", changed.Phone)
}

func TestRegisterPhoneInUseByAnotherUser(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.RegisterPhone(f.ctx, Identity{TelegramID: aliceID}, "+79991234567")
	require.NoError(t, err)

	_, _, err = f.svc.RegisterPhone(f.ctx, Identity{TelegramID: bobID}, "+79991234567")
	assert.ErrorIs(t, err, domain.ErrPhoneInUse)
	assert.Equal(t, domain.CodePhoneInUse, domain.CodeOf(err))
}

func TestRegisterAddress(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RegisterAddress(f.ctx, aliceID, "Main street 1")
	assert.ErrorIs(t, err, domain.ErrNotRegistered)

	_, _, err = f.svc.RegisterPhone(f.ctx, Identity{TelegramID: aliceID}, "+79991234567")
	require.NoError(t, err)

	_, err = f.svc.RegisterAddress(f.ctx, aliceID, "  short ")
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)

	c, err := f.svc.RegisterAddress(f.ctx, aliceID, "  Main street 1 ")
	require.NoError(t, err)
	assert.Equal(t, "Main street 1", c.Address)
	assert.True(t, c.Registered())

	profile, err := f.svc.Profile(f.ctx, aliceID)
	require.NoError(t, err)
	assert.Equal(t, c, profile)
}
