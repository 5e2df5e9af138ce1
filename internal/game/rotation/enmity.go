package rotation

import "github.com/calebrowe/weaver/internal/game/actor"

// EnmitySource computes the "losing aggro" signal the provoke handler acts
// on. Hosts with a real enmity table inject their own implementation.
type EnmitySource interface {
	LosingAggro(enemy actor.EnemyView, self actor.ID) bool
}

// TargetEnmity is the default EnmitySource: an enemy visibly attacking
// someone else means aggro is lost.
type TargetEnmity struct{}

// LosingAggro reports whether enemy is attacking an entity other than self.
func (TargetEnmity) LosingAggro(enemy actor.EnemyView, self actor.ID) bool {
	return enemy.TargetID != "" && enemy.TargetID != self
}
