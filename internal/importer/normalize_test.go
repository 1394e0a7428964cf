package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"\t\n", ""},
		{"none", ""},
		{"None", ""},
		{" NONE ", ""},
		{"nonesuch", "nonesuch"},
		{"  Sở Y tế  ", "Sở Y tế"},
		{"0", "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeText(tt.in), "NormalizeText(%q)", tt.in)
	}
}

func TestNormalizeCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"-5", 0},
		{"abc", 0},
		{"3.7", 4},
		{"2.5", 3},
		{"2.4", 2},
		{"", 0},
		{"  ", 0},
		{" 7 ", 7},
		{"0", 0},
		{"-0.4", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"1e2", 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeCount(tt.in), "NormalizeCount(%q)", tt.in)
	}
}

func TestCell_OutOfRange(t *testing.T) {
	row := []string{"a", "b"}
	assert.Equal(t, "", cell(row, NotFound))
	assert.Equal(t, "", cell(row, 5))
	assert.Equal(t, "b", cell(row, 1))
}
