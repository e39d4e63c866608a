package backend

import (
	"errors"
	"testing"

	"github.com/sailfishos/mce-ledind/repository"
	"github.com/sirupsen/logrus"
)

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(nopWriter{})
	return l
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestBuild_DegradesToNoneWhenFamilyUnregistered(t *testing.T) {
	mu.Lock()
	delete(builders, repository.Family(999))
	mu.Unlock()

	d := Build(repository.Family(999), Config{}, discardLogger())
	if _, ok := d.(noneDriver); !ok {
		t.Fatalf("expected noneDriver, got %T", d)
	}
}

func TestBuild_DegradesToNoneOnBuilderError(t *testing.T) {
	family := repository.Family(1000)
	RegisterFamily(family, func(Config, *logrus.Logger) (Driver, error) {
		return nil, errors.New("boom")
	})
	t.Cleanup(func() {
		mu.Lock()
		delete(builders, family)
		mu.Unlock()
	})

	d := Build(family, Config{}, discardLogger())
	if _, ok := d.(noneDriver); !ok {
		t.Fatalf("expected noneDriver, got %T", d)
	}
}

func TestRegisterFamily_PanicsOnDuplicate(t *testing.T) {
	family := repository.Family(1001)
	RegisterFamily(family, func(Config, *logrus.Logger) (Driver, error) { return NewNone(), nil })
	t.Cleanup(func() {
		mu.Lock()
		delete(builders, family)
		mu.Unlock()
	})

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	RegisterFamily(family, func(Config, *logrus.Logger) (Driver, error) { return NewNone(), nil })
}

func TestDecodeProgram_RejectsInvalidHex(t *testing.T) {
	if _, err := decodeProgram("not-hex"); err == nil {
		t.Fatal("expected error for invalid hex program")
	}
	b, err := decodeProgram("0a1b2c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b) != 3 {
		t.Fatalf("expected 3 decoded bytes, got %d", len(b))
	}
}

func TestClampBrightness_Bounds(t *testing.T) {
	cases := map[int]int{-5: 0, 0: 0, 15: 15, 16: 15, 1000: 15}
	for in, want := range cases {
		if got := clampBrightness(in); got != want {
			t.Errorf("clampBrightness(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestScaleBrightnessTo255_ZeroStaysZeroRestIsAtLeastOne(t *testing.T) {
	if got := scaleBrightnessTo255(0); got != 0 {
		t.Fatalf("scaleBrightnessTo255(0) = %d, want 0", got)
	}
	for level := 1; level <= 15; level++ {
		got := scaleBrightnessTo255(level)
		if got < 1 || got > 255 {
			t.Errorf("scaleBrightnessTo255(%d) = %d out of range", level, got)
		}
	}
	if got := scaleBrightnessTo255(15); got != 255 {
		t.Fatalf("scaleBrightnessTo255(15) = %d, want 255", got)
	}
}

func TestSplitRGB(t *testing.T) {
	r, g, b := splitRGB(0x112233)
	if r != 0x11 || g != 0x22 || b != 0x33 {
		t.Fatalf("splitRGB = %02x %02x %02x", r, g, b)
	}
}

func TestNewRGBShim_RequiresIndicator(t *testing.T) {
	if _, err := newRGBShim(Config{}, discardLogger()); err == nil {
		t.Fatal("expected error when no IndicatorClient is configured")
	}
}
