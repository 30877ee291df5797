package logger

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

func TestGet_ConcurrentFirstUse(t *testing.T) {
	instance.Store(nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l := Get()
			if l == nil {
				t.Error("Get returned nil")
				return
			}
			l.Debug().Msg("concurrent get")
		}()
	}
	wg.Wait()
}

func TestInit_LevelParsing(t *testing.T) {
	cases := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"WARN", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tc := range cases {
		if err := Init(tc.level, ""); err != nil {
			t.Fatalf("Init(%q) = %v", tc.level, err)
		}
		if got := Get().GetLevel(); got != tc.want {
			t.Errorf("Init(%q): level = %v, want %v", tc.level, got, tc.want)
		}
	}
}

func TestInit_ReplacesEarlyDefault(t *testing.T) {
	instance.Store(nil)

	before := Get()
	if err := Init("warn", ""); err != nil {
		t.Fatalf("Init: %v", err)
	}
	after := Get()
	if before == after {
		t.Fatal("Init must replace the pre-Init discard logger")
	}
	if after.GetLevel() != zerolog.WarnLevel {
		t.Errorf("level = %v, want warn", after.GetLevel())
	}
}
