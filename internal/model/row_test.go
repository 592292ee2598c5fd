package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanCell(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  ", ""},
		{"n/a", ""},
		{"N/A", ""},
		{"NaN", ""},
		{"na", ""},
		{" 83.0 ", "83.0"},
		{"Not yet introduced", "Not yet introduced"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanCell(tt.in), "CleanCell(%q)", tt.in)
	}
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "ALB", NormalizeCode(" alb "))
	assert.Equal(t, "ZWE", NormalizeCode("ZWE"))
	assert.Equal(t, "", NormalizeCode("   "))
}

func TestIntroYear(t *testing.T) {
	tests := []struct {
		raw    string
		want   int
		wantOK bool
	}{
		{"2018", 2018, true},
		{"2018.0", 2018, true}, // Excel float serialization
		{"2018.5", 0, false},
		{"", 0, false},
		{"n/a", 0, false},
		{"unknown", 0, false},
	}
	for _, tt := range tests {
		r := Row{FirstIntroRaw: tt.raw}
		got, ok := r.IntroYear()
		assert.Equal(t, tt.wantOK, ok, "IntroYear(%q) ok", tt.raw)
		assert.Equal(t, tt.want, got, "IntroYear(%q)", tt.raw)
	}
}

func TestCoverageValue(t *testing.T) {
	r := Row{VaxFdCov: "83.5"}
	v, ok := r.CoverageValue()
	require.True(t, ok)
	assert.Equal(t, 83.5, v)

	for _, raw := range []string{"", "na", "not reported"} {
		r := Row{VaxFdCov: raw}
		_, ok := r.CoverageValue()
		assert.False(t, ok, "CoverageValue(%q)", raw)
	}

	// "0" is a real observation, not missing.
	r = Row{VaxFdCov: "0"}
	v, ok = r.CoverageValue()
	require.True(t, ok)
	assert.Equal(t, 0.0, v)
}

func TestCloneIsDeep(t *testing.T) {
	rate := 12.5
	r := &Row{CountryCode: "ALB", Year: 2020, CervicalRate: &rate}

	c := r.Clone()
	require.Equal(t, *r, *c)

	*c.CervicalRate = 99
	c.CountryCode = "ZWE"
	assert.Equal(t, 12.5, *r.CervicalRate)
	assert.Equal(t, "ALB", r.CountryCode)
}

func TestTrajectoryCodeOf(t *testing.T) {
	assert.Equal(t, 1, TrajectoryCodeOf(TrajectoryClassicAlways))
	assert.Equal(t, 2, TrajectoryCodeOf(TrajectoryGraduated))
	assert.Equal(t, 3, TrajectoryCodeOf(TrajectoryMICEntry))
	assert.Equal(t, 4, TrajectoryCodeOf(TrajectoryNeverAlways))
	assert.Equal(t, 0, TrajectoryCodeOf("something else"))
}

func TestIncomeClassLabelOf(t *testing.T) {
	assert.Equal(t, "LIC", IncomeClassLabelOf("L"))
	assert.Equal(t, "LMIC", IncomeClassLabelOf("LM"))
	assert.Equal(t, "UMIC", IncomeClassLabelOf("UM"))
	assert.Equal(t, "HIC", IncomeClassLabelOf("H"))
	assert.Equal(t, "", IncomeClassLabelOf(""))
}
