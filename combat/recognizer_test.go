package combat

import (
	"context"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/autowsgr/helmsman/device"
	"github.com/autowsgr/helmsman/vision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidFrame(c color.RGBA, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func solidTemplate(name string, c color.RGBA) vision.Template {
	return vision.Template{
		Name:             name,
		Image:            solidFrame(c, 4, 4),
		DefaultThreshold: 0.8,
	}
}

func TestWaitForPhaseReturnsFirstMatchingCandidate(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	fake := device.NewFake(20, 20, solidFrame(red, 20, 20))

	PhaseSignatures[CombatPhase(-1)] = sig([]vision.Template{solidTemplate("mock", red)}, 1.0)
	defer delete(PhaseSignatures, CombatPhase(-1))

	r := NewRecognizer(fake, nil)
	phase, err := r.WaitForPhase(context.Background(), []PhaseTarget{{Phase: CombatPhase(-1)}}, nil)
	require.NoError(t, err)
	assert.Equal(t, CombatPhase(-1), phase)
}

func TestWaitForPhaseTimesOutWhenNoTemplateMatches(t *testing.T) {
	blue := color.RGBA{0, 0, 255, 255}
	fake := device.NewFake(20, 20, solidFrame(blue, 20, 20))

	// A phase whose signature carries no templates never matches, no
	// matter what the screen shows; it always runs out the clock.
	PhaseSignatures[CombatPhase(-2)] = sig(nil, 0.02)
	defer delete(PhaseSignatures, CombatPhase(-2))

	r := NewRecognizer(fake, nil)
	r.PollInterval = 5 * time.Millisecond
	_, err := r.WaitForPhase(context.Background(), []PhaseTarget{{Phase: CombatPhase(-2)}}, nil)
	require.Error(t, err)
	var timeoutErr *RecognitionTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
}

func TestWaitForPhaseRunsPollActionEachIteration(t *testing.T) {
	blue := color.RGBA{0, 0, 255, 255}
	red := color.RGBA{255, 0, 0, 255}
	fake := device.NewFake(20, 20, solidFrame(blue, 20, 20), solidFrame(red, 20, 20))

	PhaseSignatures[CombatPhase(-3)] = sig([]vision.Template{solidTemplate("mock", red)}, 1.0)
	defer delete(PhaseSignatures, CombatPhase(-3))

	calls := 0
	r := NewRecognizer(fake, nil)
	r.PollInterval = time.Millisecond
	_, err := r.WaitForPhase(context.Background(), []PhaseTarget{{Phase: CombatPhase(-3)}}, func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, calls, 1)
}

func TestGetSignatureAppliesModeOverride(t *testing.T) {
	r := NewRecognizer(nil, BattleModeOverrides)
	sig := r.GetSignature(PhaseFormation)
	assert.Equal(t, 15*time.Second, sig.DefaultTimeout)
	assert.Equal(t, 0.8, sig.Confidence)
}

func TestGetSignatureUnknownPhaseFallsBackToDefault(t *testing.T) {
	r := NewRecognizer(nil, nil)
	sig := r.GetSignature(CombatPhase(12345))
	assert.Equal(t, 10*time.Second, sig.DefaultTimeout)
}

func TestNewPhaseTableAttachesTemplatesByKey(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	templatesByKey := map[string]vision.Template{
		"proceed": solidTemplate("proceed", red),
	}

	table := NewPhaseTable(templatesByKey)
	require.Len(t, table[PhaseProceed].Templates, 1)
	assert.Equal(t, "proceed", table[PhaseProceed].Templates[0].Name)

	// A phase with no matching asset key keeps the zero-value Templates
	// slice, same as the unpopulated default table.
	assert.Empty(t, table[PhaseFightCondition].Templates)
}

func TestNewPhaseTableLeavesDefaultTableUntouched(t *testing.T) {
	templatesByKey := map[string]vision.Template{"proceed": solidTemplate("proceed", color.RGBA{1, 2, 3, 255})}
	NewPhaseTable(templatesByKey)
	assert.Empty(t, PhaseSignatures[PhaseProceed].Templates, "NewPhaseTable must return a copy, not mutate the package-level default table")
}

func TestIdentifyCurrentMatchesWithoutWaiting(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	screen := solidFrame(red, 20, 20)

	PhaseSignatures[CombatPhase(-4)] = sig([]vision.Template{solidTemplate("mock", red)}, 1.0)
	defer delete(PhaseSignatures, CombatPhase(-4))

	r := NewRecognizer(nil, nil)
	phase, ok := r.IdentifyCurrent(screen, []CombatPhase{CombatPhase(-4)})
	assert.True(t, ok)
	assert.Equal(t, CombatPhase(-4), phase)
}
