package parser

import (
	"time"

	"github.com/rs/zerolog"
)

// fixedNow 测试中固定当前时间为 2026 年，可接受年份上限为 2027
func fixedNow() time.Time {
	return time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
}

func testOptions() Options {
	o := DefaultOptions()
	o.Now = fixedNow
	o.Logger = zerolog.Nop()
	return o
}

func intp(i int) *int { return &i }
