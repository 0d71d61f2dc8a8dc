package simpleops_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/hostpulse/hostpulse/share/simpleops"
)

type FilterTestSuite struct {
	suite.Suite
}

func (f *FilterTestSuite) TestEmptySlice() {
	org := []string{}

	f.Equal([]string(nil), simpleops.FilterSlice(org, func(s string) bool {
		return false
	}))
}

func (f *FilterTestSuite) TestFilterOut() {
	org := []int{1, 2, 3}

	f.Equal([]int(nil), simpleops.FilterSlice(org, func(int) bool {
		return false
	}))
}

func (f *FilterTestSuite) TestFilterIn() {
	org := []int{1, 2, 3}

	f.Equal(org, simpleops.FilterSlice(org, func(int) bool {
		return true
	}))
}

func (f *FilterTestSuite) TestFilterSome() {
	org := []int{1, 2, 3, 4}

	f.Equal([]int{2, 4}, simpleops.FilterSlice(org, func(n int) bool {
		return n%2 == 0
	}))
}

func TestFilterTestSuite(t *testing.T) {
	suite.Run(t, new(FilterTestSuite))
}
