package common_test

import (
	"testing"
	"time"

	"github.com/sbomtools/bomsync/common"
	"github.com/sbomtools/bomsync/hamlet"
)

func TestCanUseStopwatch(t *testing.T) {
	must_be, wont_be := hamlet.Specifications(t)

	sut := common.Stopwatch("hello")
	wont_be.Nil(sut)
	limit := common.Duration(10 * time.Millisecond)
	must_be.True(sut.Elapsed() < limit)
}

func TestDurationFormatting(t *testing.T) {
	must_be, _ := hamlet.Specifications(t)

	must_be.Text("1.500s", common.Duration(1500*time.Millisecond))
	must_be.Text("0.000s", common.Duration(0))
}
