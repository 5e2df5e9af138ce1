package action

// Ability IDs for the three shipped jobs. The numeric tuning for each lives
// in the Definition table below; thresholds that gate their use live in
// configuration.
const (
	// Sage (healer).
	SageMend        ID = "sage.mend"         // single-target GCD heal
	SageGreaterMend ID = "sage.greater_mend" // emergency single-target GCD heal
	SageRadiance    ID = "sage.radiance"     // self-centered AoE GCD heal
	SageBenison     ID = "sage.benison"      // target-centered ground AoE heal
	SageSoothe      ID = "sage.soothe"       // single-target HoT
	SageSwiftmend   ID = "sage.swiftmend"    // oGCD charge-based heal
	SageSealburst   ID = "sage.sealburst"    // seal-consuming heal
	SagePurify      ID = "sage.purify"       // debuff cleanse
	SageBlight      ID = "sage.blight"       // damage DoT
	SageLance       ID = "sage.lance"        // damage filler
	SageClarity     ID = "sage.clarity"      // MP regen buff (oGCD)

	// Warden (tank).
	WardenLastStand  ID = "warden.last_stand" // invulnerability
	WardenBulwark    ID = "warden.bulwark"    // large shield cooldown
	WardenSentinel   ID = "warden.sentinel"   // major mitigation
	WardenRampart    ID = "warden.rampart"    // short self mitigation
	WardenIronhide   ID = "warden.ironhide"   // short self/ally mitigation
	WardenReprisal   ID = "warden.reprisal"   // party-wide mitigation
	WardenProvoke    ID = "warden.provoke"
	WardenBloodsworn ID = "warden.bloodsworn" // self damage buff
	WardenSlash      ID = "warden.slash"      // combo step 1
	WardenRend       ID = "warden.rend"       // combo step 2
	WardenEviscerate ID = "warden.eviscerate" // combo finisher
	WardenWhirlwind  ID = "warden.whirlwind"  // AoE filler

	// Reaver (melee dps).
	ReaverVenom      ID = "reaver.venom"      // damage DoT
	ReaverSlash      ID = "reaver.slash"
	ReaverRend       ID = "reaver.rend"
	ReaverEviscerate ID = "reaver.eviscerate"
	ReaverMaelstrom  ID = "reaver.maelstrom"  // AoE filler
)

// Catalog maps ability IDs to their static definitions.
type Catalog map[ID]Definition

// Lookup returns the definition for id.
//
// Postcondition: Returns (Definition{}, false) for unknown ids.
func (c Catalog) Lookup(id ID) (Definition, bool) {
	d, ok := c[id]
	return d, ok
}

// DefaultCatalog returns the built-in ability table for the shipped jobs.
// Numbers are placeholder tuning; hosts may supply their own catalog.
func DefaultCatalog() Catalog {
	defs := []Definition{
		{ID: SageMend, Name: "Mend", Kind: KindGCD, Targeting: TargetSingle, CastTime: 2.0, Range: 30, MPCost: 400, HealAmount: 4500, MinLevel: 2},
		{ID: SageGreaterMend, Name: "Greater Mend", Kind: KindGCD, Targeting: TargetSingle, CastTime: 2.0, Range: 30, MPCost: 1000, HealAmount: 9000, MinLevel: 30},
		{ID: SageRadiance, Name: "Radiance", Kind: KindGCD, Targeting: TargetSelfRadius, CastTime: 2.0, Radius: 15, MPCost: 1000, HealAmount: 4000, MinLevel: 18},
		{ID: SageBenison, Name: "Benison Field", Kind: KindGCD, Targeting: TargetGround, CastTime: 2.0, Range: 30, Radius: 20, MPCost: 1300, HealAmount: 3000, MinLevel: 52},
		{ID: SageSoothe, Name: "Soothe", Kind: KindGCD, Targeting: TargetSingle, Range: 30, MPCost: 500, HealAmount: 1500, MinLevel: 35},
		{ID: SageSwiftmend, Name: "Swiftmend", Kind: KindOGCD, Targeting: TargetSingle, Range: 30, HealAmount: 7000, MinLevel: 60},
		{ID: SageSealburst, Name: "Sealburst", Kind: KindOGCD, Targeting: TargetSingle, Range: 30, HealAmount: 5400, MinLevel: 45},
		{ID: SagePurify, Name: "Purify", Kind: KindGCD, Targeting: TargetSingle, Range: 30, MPCost: 500, MinLevel: 10},
		{ID: SageBlight, Name: "Blight", Kind: KindGCD, Targeting: TargetSingle, Range: 30, MPCost: 400, MinLevel: 4},
		{ID: SageLance, Name: "Lance", Kind: KindGCD, Targeting: TargetSingle, CastTime: 1.5, Range: 30, MPCost: 400, MinLevel: 1},
		{ID: SageClarity, Name: "Clarity", Kind: KindOGCD, Targeting: TargetSingle, MinLevel: 24},

		{ID: WardenLastStand, Name: "Last Stand", Kind: KindOGCD, Targeting: TargetSingle, MinLevel: 50},
		{ID: WardenBulwark, Name: "Bulwark", Kind: KindOGCD, Targeting: TargetSingle, MPCost: 2000, MinLevel: 38},
		{ID: WardenSentinel, Name: "Sentinel", Kind: KindOGCD, Targeting: TargetSingle, MinLevel: 38},
		{ID: WardenRampart, Name: "Rampart", Kind: KindOGCD, Targeting: TargetSingle, MinLevel: 8},
		{ID: WardenIronhide, Name: "Ironhide", Kind: KindOGCD, Targeting: TargetSingle, Range: 30, MinLevel: 35},
		{ID: WardenReprisal, Name: "Reprisal", Kind: KindOGCD, Targeting: TargetSelfRadius, Radius: 5, MinLevel: 22},
		{ID: WardenProvoke, Name: "Provoke", Kind: KindOGCD, Targeting: TargetSingle, Range: 25, MinLevel: 15},
		{ID: WardenBloodsworn, Name: "Bloodsworn", Kind: KindOGCD, Targeting: TargetSingle, MinLevel: 30},
		{ID: WardenSlash, Name: "Slash", Kind: KindGCD, Targeting: TargetSingle, Range: 3, MinLevel: 1},
		{ID: WardenRend, Name: "Rend", Kind: KindGCD, Targeting: TargetSingle, Range: 3, MinLevel: 4},
		{ID: WardenEviscerate, Name: "Eviscerate", Kind: KindGCD, Targeting: TargetSingle, Range: 3, MinLevel: 26},
		{ID: WardenWhirlwind, Name: "Whirlwind", Kind: KindGCD, Targeting: TargetSelfRadius, Radius: 5, MinLevel: 40},

		{ID: ReaverVenom, Name: "Venom", Kind: KindGCD, Targeting: TargetSingle, Range: 3, MinLevel: 10},
		{ID: ReaverSlash, Name: "Slash", Kind: KindGCD, Targeting: TargetSingle, Range: 3, MinLevel: 1},
		{ID: ReaverRend, Name: "Rend", Kind: KindGCD, Targeting: TargetSingle, Range: 3, MinLevel: 4},
		{ID: ReaverEviscerate, Name: "Eviscerate", Kind: KindGCD, Targeting: TargetSingle, Range: 3, MinLevel: 26},
		{ID: ReaverMaelstrom, Name: "Maelstrom", Kind: KindGCD, Targeting: TargetSelfRadius, Radius: 5, MinLevel: 35},
	}
	c := make(Catalog, len(defs))
	for _, d := range defs {
		c[d.ID] = d
	}
	return c
}
