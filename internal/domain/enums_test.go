package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhaseCode_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to PhaseCode
		ok       bool
	}{
		{PhasePending, PhaseAwaitingPayment, true},
		{PhasePending, PhaseRefused, true},
		{PhasePending, PhaseCompleted, false},
		{PhaseAwaitingPayment, PhaseInProduction, true},
		{PhaseAwaitingPayment, PhaseAwaitingPickup, true},
		{PhaseInProduction, PhaseAwaitingPickup, true},
		{PhaseAwaitingPickup, PhaseAwaitingReturn, true},
		{PhaseAwaitingPickup, PhaseRefused, true},
		{PhaseAwaitingReturn, PhaseCompleted, true},
		{PhaseAwaitingReturn, PhaseRefused, false},
		{PhaseCompleted, PhaseRefused, false},
		{PhaseRefused, PhasePending, false},
		{PhasePending, PhaseLate, false},
		{"", PhaseRefused, true},
		{"", PhasePending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%q -> %q", tc.from, tc.to)
	}
}

func TestPhaseCode_IsTerminal(t *testing.T) {
	for _, c := range AllPhaseCodes {
		want := c == PhaseCompleted || c == PhaseRefused
		assert.Equal(t, want, c.IsTerminal(), string(c))
	}
}

func TestParsePhaseCode(t *testing.T) {
	c, ok := ParsePhaseCode("pending")
	assert.True(t, ok)
	assert.Equal(t, PhasePending, c)

	c, ok = ParsePhaseCode(" atrasado ")
	assert.True(t, ok)
	assert.Equal(t, PhaseLate, c)

	_, ok = ParsePhaseCode("EM ANDAMENTO")
	assert.False(t, ok)
}

func TestRole_IsStaff(t *testing.T) {
	assert.True(t, RoleAdmin.IsStaff())
	assert.True(t, RoleReception.IsStaff())
	assert.True(t, RoleAttendant.IsStaff())
	assert.False(t, RoleClient.IsStaff())
	assert.False(t, Role("GUEST").IsValid())
}
