package combat

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/autowsgr/helmsman/device"
	"github.com/autowsgr/helmsman/log"
	"github.com/autowsgr/helmsman/vision"
)

// PhaseSignature is one phase's visual recognition signature: the
// templates to look for, plus timing defaults.
type PhaseSignature struct {
	Templates       []vision.Template
	DefaultTimeout  time.Duration
	Confidence      float64
	AfterMatchDelay time.Duration
}

func sig(templates []vision.Template, timeoutSec float64, opts ...func(*PhaseSignature)) PhaseSignature {
	s := PhaseSignature{
		Templates:      templates,
		DefaultTimeout: time.Duration(timeoutSec * float64(time.Second)),
		Confidence:     0.8,
	}
	for _, o := range opts {
		o(&s)
	}
	return s
}

func withDelay(seconds float64) func(*PhaseSignature) {
	return func(s *PhaseSignature) { s.AfterMatchDelay = time.Duration(seconds * float64(time.Second)) }
}

func withConfidence(c float64) func(*PhaseSignature) {
	return func(s *PhaseSignature) { s.Confidence = c }
}

// PhaseSignatures is the default per-phase visual signature table,
// grounded on original_source's PHASE_SIGNATURES. Templates are supplied
// by the caller (image assets live outside this module); NewPhaseTable
// builds a populated copy from an asset-key-keyed template map.
var PhaseSignatures = map[CombatPhase]PhaseSignature{
	PhaseProceed:              sig(nil, 7.5, withDelay(0.5)),
	PhaseFightCondition:       sig(nil, 22.5),
	PhaseSpotEnemySuccess:     sig(nil, 22.5),
	PhaseFormation:            sig(nil, 22.5),
	PhaseMissileAnimation:     sig(nil, 3.0),
	PhaseFightPeriod:          sig(nil, 30.0),
	PhaseNightPrompt:          sig(nil, 150.0, withDelay(1.75)),
	PhaseResult:               sig(nil, 90.0),
	PhaseGetShip:              sig(nil, 5.0, withDelay(1.0)),
	PhaseFlagshipSevereDamage: sig(nil, 7.5),
	PhaseMapPage:              sig(nil, 7.5),
	PhaseBattlePage:           sig(nil, 7.5),
	PhaseExercisePage:         sig(nil, 7.5),
}

// phaseTemplateKeys maps each phase to the asset key its template file is
// expected to be loaded under, grounded on original_source's
// image_resources.py _build_map (e.g. combat/proceed.png -> "proceed").
// A phase absent from this map has no single-file template convention
// (it's matched some other way, or not matched by template at all).
var phaseTemplateKeys = map[CombatPhase]string{
	PhaseProceed:              "proceed",
	PhaseFightCondition:       "fight_condition",
	PhaseSpotEnemySuccess:     "spot_enemy",
	PhaseFormation:            "formation",
	PhaseMissileAnimation:     "missile_animation",
	PhaseFightPeriod:          "fight_period",
	PhaseNightPrompt:          "night_battle",
	PhaseResult:               "result",
	PhaseGetShip:              "get_ship",
	PhaseFlagshipSevereDamage: "flagship_damage",
	PhaseMapPage:              "end_map_page",
	PhaseBattlePage:           "end_battle_page",
	PhaseExercisePage:         "end_exercise_page",
}

// NewPhaseTable builds a populated copy of PhaseSignatures, attaching to
// each phase the template found in templatesByKey under its
// phaseTemplateKeys entry (typically an operator's --assets directory,
// keyed by filename without extension). A phase whose key has no
// matching entry keeps its zero-value Templates slice — WaitForPhase
// simply never matches it by template, same as today's default table.
func NewPhaseTable(templatesByKey map[string]vision.Template) map[CombatPhase]PhaseSignature {
	out := make(map[CombatPhase]PhaseSignature, len(PhaseSignatures))
	for phase, base := range PhaseSignatures {
		key, ok := phaseTemplateKeys[phase]
		if ok {
			if t, ok := templatesByKey[key]; ok {
				base.Templates = []vision.Template{t}
			}
		}
		out[phase] = base
	}
	return out
}

// BattleModeOverrides shortens several phases' timeouts/confidence for
// Battle mode, grounded on original_source's BATTLE_MODE_OVERRIDES.
type SignatureOverride struct {
	DefaultTimeout *time.Duration
	Confidence     *float64
}

func durOverride(seconds float64) *time.Duration {
	d := time.Duration(seconds * float64(time.Second))
	return &d
}

func confOverride(c float64) *float64 { return &c }

var BattleModeOverrides = map[CombatPhase]SignatureOverride{
	PhaseSpotEnemySuccess: {DefaultTimeout: durOverride(15.0)},
	PhaseFormation:        {DefaultTimeout: durOverride(15.0), Confidence: confOverride(0.8)},
	PhaseFightPeriod:      {DefaultTimeout: durOverride(7.5)},
	PhaseResult:           {DefaultTimeout: durOverride(75.0)},
}

// RecognitionTimeoutError is raised by WaitForPhase when none of the
// candidate phases matched before the computed deadline.
type RecognitionTimeoutError struct {
	Candidates []CombatPhase
	Timeout    time.Duration
}

func (e *RecognitionTimeoutError) Error() string {
	return fmt.Sprintf("combat: timed out after %s waiting for phases %v", e.Timeout, e.Candidates)
}

// Recognizer drives a device's screenshot loop to identify combat
// phases. It owns no engine state; Engine is the only caller.
type Recognizer struct {
	Device    device.Controller
	Overrides map[CombatPhase]SignatureOverride
	// PollInterval is fixed at 300ms per Design Notes — original_source
	// used two different loop intervals across layers; this module
	// keeps the recognizer's distinct from the navigator's rather than
	// unifying them.
	PollInterval time.Duration
}

// NewRecognizer constructs a Recognizer with the default poll interval.
func NewRecognizer(d device.Controller, overrides map[CombatPhase]SignatureOverride) *Recognizer {
	return &Recognizer{Device: d, Overrides: overrides, PollInterval: 300 * time.Millisecond}
}

// GetSignature returns phase's signature with any mode override applied.
func (r *Recognizer) GetSignature(phase CombatPhase) PhaseSignature {
	base, ok := PhaseSignatures[phase]
	if !ok {
		return PhaseSignature{DefaultTimeout: 10 * time.Second, Confidence: 0.8}
	}
	override, ok := r.Overrides[phase]
	if !ok {
		return base
	}
	if override.DefaultTimeout != nil {
		base.DefaultTimeout = *override.DefaultTimeout
	}
	if override.Confidence != nil {
		base.Confidence = *override.Confidence
	}
	return base
}

// candidateSig pairs a candidate phase with its resolved signature and
// effective timeout.
type candidateSig struct {
	phase   CombatPhase
	sig     PhaseSignature
	timeout time.Duration
}

// WaitForPhase polls screenshots until one of candidates' templates
// matches or the computed deadline passes. pollAction, if non-nil, runs
// once per poll iteration before the screenshot (speed-up taps, node
// tracking).
func (r *Recognizer) WaitForPhase(ctx context.Context, candidates []PhaseTarget, pollAction func(context.Context) error) (CombatPhase, error) {
	var sigs []candidateSig
	var maxTimeout time.Duration
	minConfidence := 0.8
	haveConfidence := false

	for _, c := range candidates {
		s := r.GetSignature(c.Phase)
		timeout := s.DefaultTimeout
		if c.TimeoutOverride != nil {
			timeout = time.Duration(*c.TimeoutOverride * float64(time.Second))
		}
		if timeout > maxTimeout {
			maxTimeout = timeout
		}
		if !haveConfidence || s.Confidence < minConfidence {
			minConfidence = s.Confidence
			haveConfidence = true
		}
		sigs = append(sigs, candidateSig{phase: c.Phase, sig: s, timeout: timeout})
	}

	deadline := time.Now().Add(maxTimeout)
	phaseNamesList := make([]CombatPhase, len(sigs))
	for i, cs := range sigs {
		phaseNamesList[i] = cs.phase
	}
	log.Debug("combat: waiting for phase", log.F("candidates", fmt.Sprint(phaseNamesList)), log.F("timeout", maxTimeout.String()))

	for time.Now().Before(deadline) {
		if pollAction != nil {
			if err := pollAction(ctx); err != nil {
				return 0, err
			}
		}

		screen, err := r.Device.Screenshot(ctx)
		if err != nil {
			return 0, fmt.Errorf("combat: screenshot during wait: %w", err)
		}

		for _, cs := range sigs {
			if len(cs.sig.Templates) == 0 {
				continue
			}
			if matchAnyTemplate(screen, cs.sig.Templates, minConfidence) {
				if cs.sig.AfterMatchDelay > 0 {
					time.Sleep(cs.sig.AfterMatchDelay)
				}
				log.Info("combat: phase matched", log.F("phase", cs.phase.String()))
				return cs.phase, nil
			}
		}

		time.Sleep(r.PollInterval)
	}

	return 0, &RecognitionTimeoutError{Candidates: phaseNamesList, Timeout: maxTimeout}
}

// IdentifyCurrent checks a single screenshot against candidates without
// waiting, used by recovery logic.
func (r *Recognizer) IdentifyCurrent(screen image.Image, candidates []CombatPhase) (CombatPhase, bool) {
	for _, phase := range candidates {
		s := r.GetSignature(phase)
		if len(s.Templates) == 0 {
			continue
		}
		if matchAnyTemplate(screen, s.Templates, s.Confidence) {
			return phase, true
		}
	}
	return 0, false
}

func matchAnyTemplate(screen image.Image, templates []vision.Template, confidence float64) bool {
	for _, t := range templates {
		roi := t.DefaultROI
		if roi.X2 == 0 && roi.Y2 == 0 {
			roi = vision.FullScreen()
		}
		if vision.TemplateExists(screen, t, roi, confidence) {
			return true
		}
	}
	return false
}
