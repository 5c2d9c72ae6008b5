package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want BookingStatus
		ok   bool
	}{
		{"pending", StatusPending, true},
		{"Confirmed", StatusConfirmed, true},
		{"accepted", StatusConfirmed, true},
		{" completed ", StatusCompleted, true},
		{"cancelled", StatusCancelled, true},
		{"canceled", StatusCancelled, true},
		{"done", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseStatus(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestCanTransition(t *testing.T) {
	all := []BookingStatus{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}
	allowed := map[[2]BookingStatus]bool{
		{StatusPending, StatusConfirmed}:   true,
		{StatusPending, StatusCancelled}:   true,
		{StatusConfirmed, StatusCompleted}: true,
		{StatusConfirmed, StatusCancelled}: true,
	}
	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]BookingStatus{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPending.Terminal())
}

func TestAccountProfileComplete(t *testing.T) {
	assert.False(t, Account{Role: RoleMentee}.IsProfileComplete())
	assert.True(t, Account{Role: RoleMentee, Name: "Ayesha"}.IsProfileComplete())
	assert.False(t, Account{Role: RoleMentor, Name: "Sam", HourlyRateCents: 5000}.IsProfileComplete())
	assert.True(t, Account{Role: RoleMentor, Name: "Sam", HourlyRateCents: 5000, Skills: []string{"go"}}.IsProfileComplete())
}
