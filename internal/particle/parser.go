package particle

import (
	"fmt"
)

// Resolve converts a YAML emitter profile into EmitterParams.
//
// Parameters:
//   - kind: Which effect the profile drives (splash or foam)
//   - cfg: Profile as loaded from YAML
//
// Returns:
//   - EmitterParams: Profile with every range expanded
//   - error: Any parse error or out-of-range value
//
// Example usage:
//
//	params, err := Resolve(KindSplash, EmitterConfig{Capacity: 30, BaseCount: 50, Lifetime: "[0.6 1.2]"})
func Resolve(kind Kind, cfg EmitterConfig) (EmitterParams, error) {
	p := EmitterParams{
		Kind:      kind,
		Capacity:  cfg.Capacity,
		BaseCount: cfg.BaseCount,
	}

	if p.Capacity < 1 {
		return p, fmt.Errorf("%s emitter: capacity must be >= 1, got %d", kind, cfg.Capacity)
	}
	if p.BaseCount < 0 {
		return p, fmt.Errorf("%s emitter: baseCount must be >= 0, got %d", kind, cfg.BaseCount)
	}

	var err error
	if p.Radius, err = ParseSingle(cfg.Radius, 0); err != nil {
		return p, fmt.Errorf("%s emitter radius: %w", kind, err)
	}
	if p.LifetimeMin, p.LifetimeMax, err = ParseRange(cfg.Lifetime); err != nil {
		return p, fmt.Errorf("%s emitter lifetime: %w", kind, err)
	}
	if p.LifetimeMin <= 0 {
		return p, fmt.Errorf("%s emitter: lifetime must be > 0, got %q", kind, cfg.Lifetime)
	}
	if p.Radius < 0 {
		return p, fmt.Errorf("%s emitter: radius must be >= 0, got %.2f", kind, p.Radius)
	}
	if p.ConeSpeedMin, p.ConeSpeedMax, err = ParseRange(cfg.ConeSpeed); err != nil {
		return p, fmt.Errorf("%s emitter coneSpeed: %w", kind, err)
	}
	if p.ConeSpeedMin < 0 {
		return p, fmt.Errorf("%s emitter: coneSpeed must be >= 0, got %q", kind, cfg.ConeSpeed)
	}
	if p.ConeAngle, err = ParseSingle(cfg.ConeAngle, 30); err != nil {
		return p, fmt.Errorf("%s emitter coneAngle: %w", kind, err)
	}
	if p.ConeAngle < 0 || p.ConeAngle > 180 {
		return p, fmt.Errorf("%s emitter: coneAngle must be within [0, 180], got %.2f", kind, p.ConeAngle)
	}
	if p.DirectionalGain, err = ParseSingle(cfg.DirectionalGain, 0); err != nil {
		return p, fmt.Errorf("%s emitter directionalGain: %w", kind, err)
	}
	if p.BaseScaleMin, p.BaseScaleMax, err = ParseRange(cfg.BaseScale); err != nil {
		return p, fmt.Errorf("%s emitter baseScale: %w", kind, err)
	}
	if p.BaseScaleMax == 0 {
		// 未配置时默认原始大小
		p.BaseScaleMin, p.BaseScaleMax = 1, 1
	}
	if p.BaseScaleMin < 0 {
		return p, fmt.Errorf("%s emitter: baseScale must be >= 0, got %q", kind, cfg.BaseScale)
	}
	if p.ShrinkFactor, err = ParseSingle(cfg.ShrinkFactor, 0); err != nil {
		return p, fmt.Errorf("%s emitter shrinkFactor: %w", kind, err)
	}
	if p.ShrinkFactor < 0 || p.ShrinkFactor > 1 {
		return p, fmt.Errorf("%s emitter: shrinkFactor must be within [0, 1], got %.2f", kind, p.ShrinkFactor)
	}
	if p.Gravity, err = ParseSingle(cfg.Gravity, 9.8); err != nil {
		return p, fmt.Errorf("%s emitter gravity: %w", kind, err)
	}

	return p, nil
}
