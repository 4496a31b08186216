package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuarterForMonth(t *testing.T) {
	cases := []struct {
		month time.Month
		want  int
	}{
		{time.January, 4},
		{time.February, 1},
		{time.March, 1},
		{time.April, 1},
		{time.May, 2},
		{time.June, 2},
		{time.July, 2},
		{time.August, 3},
		{time.September, 3},
		{time.October, 3},
		{time.November, 4},
		{time.December, 4},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, QuarterForMonth(tc.month), tc.month.String())
	}
}
