package rotation

import "github.com/calebrowe/weaver/internal/config"

// RegisterDefaults builds the built-in job rotations from cfg and registers
// them on s. The warden uses the target-based enmity source; hosts with a
// real enmity table register their own rotation instead.
func RegisterDefaults(s *Scheduler, cfg *config.Config) error {
	sage, err := NewSageRotation(cfg.Healer)
	if err != nil {
		return err
	}
	warden, err := NewWardenRotation(cfg.Tank, TargetEnmity{})
	if err != nil {
		return err
	}
	reaver, err := NewReaverRotation(cfg.Melee)
	if err != nil {
		return err
	}
	for _, r := range []Rotation{sage, warden, reaver} {
		if err := s.Register(r); err != nil {
			return err
		}
	}
	return nil
}
