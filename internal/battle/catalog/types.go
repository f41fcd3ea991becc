// Package catalog holds the static, read-only unit and ability tables the
// simulator is built from. Both tables are initialized once from Go data
// literals (the same "single source of truth" table style the rest of the
// pack uses for weapon/combo configuration) and never mutated afterward.
package catalog

import "fmt"

// Role classifies a unit template's combat archetype.
type Role string

const (
	RoleTank      Role = "tank"
	RoleMeleeDPS  Role = "melee_dps"
	RoleRangedDPS Role = "ranged_dps"
	RoleMage      Role = "mage"
	RoleSupport   Role = "support"
	RoleControl   Role = "control"
)

// Stats is a unit's base combat statistics before status modifiers.
type Stats struct {
	HP         int
	Atk        int
	AtkCount   int
	Armor      int
	Speed      int
	Initiative int
	Dodge      int // percent, 0..100
}

// UnitTemplate is an immutable unit definition loaded from the catalog.
type UnitTemplate struct {
	ID         string
	Name       string
	Role       Role
	Cost       int
	Stats      Stats
	Range      int
	AbilityIDs []string
}

// DamageType distinguishes how armor interacts with a damage effect.
type DamageType string

const (
	DamagePhysical DamageType = "physical"
	DamageMagical  DamageType = "magical"
	DamageTrue     DamageType = "true"
)

// StatKind names the stat a buff/debuff modifies.
type StatKind string

const (
	StatAtk        StatKind = "atk"
	StatArmor      StatKind = "armor"
	StatSpeed      StatKind = "speed"
	StatInitiative StatKind = "initiative"
	StatDodge      StatKind = "dodge"
)

// EffectKind is the tag of the AbilityEffect variant.
type EffectKind string

const (
	EffectDamage  EffectKind = "damage"
	EffectHeal    EffectKind = "heal"
	EffectBuff    EffectKind = "buff"
	EffectDebuff  EffectKind = "debuff"
	EffectStun    EffectKind = "stun"
	EffectTaunt   EffectKind = "taunt"
	EffectSummon  EffectKind = "summon"
	EffectShield  EffectKind = "shield"
	EffectDoT     EffectKind = "dot"
	EffectHoT     EffectKind = "hot"
	EffectCleanse EffectKind = "cleanse"
	EffectDispel  EffectKind = "dispel"
)

// Effect is a tagged variant over every AbilityEffect kind the spec names.
// Only the fields relevant to Kind are meaningful; this mirrors the flat,
// all-fields-in-one-struct data shape the catalog tables already use for
// weapons and combos rather than introducing a class hierarchy per kind.
type Effect struct {
	Kind EffectKind

	// damage
	Value         float64
	DamageType    DamageType
	AttackScaling float64

	// buff / debuff
	Stat       StatKind
	Percentage bool
	Duration   int
	Stackable  bool
	MaxStacks  int

	// summon
	SummonTemplateID string
	SummonCount      int

	// shield
	ShieldAmount float64

	// cleanse / dispel: 0 means "all"
	RemoveCount int
}

// AbilityKind is the tag of the Ability variant.
type AbilityKind string

const (
	AbilityActive  AbilityKind = "active"
	AbilityPassive AbilityKind = "passive"
)

// TargetType selects which units an ability may legally target.
type TargetType string

const (
	TargetSelf          TargetType = "self"
	TargetAlly          TargetType = "ally"
	TargetEnemy         TargetType = "enemy"
	TargetArea          TargetType = "area"
	TargetAllEnemies    TargetType = "all_enemies"
	TargetAllAllies     TargetType = "all_allies"
	TargetRandomEnemy   TargetType = "random_enemy"
	TargetRandomAlly    TargetType = "random_ally"
	TargetLowestHPAlly  TargetType = "lowest_hp_ally"
	TargetLowestHPEnemy TargetType = "lowest_hp_enemy"
)

// PassiveTrigger names the condition that fires a Passive ability.
type PassiveTrigger string

const (
	TriggerOnHit        PassiveTrigger = "on_hit"
	TriggerOnDamaged    PassiveTrigger = "on_damaged"
	TriggerOnHPBelow    PassiveTrigger = "on_hp_below"
	TriggerOnTurnStart  PassiveTrigger = "on_turn_start"
	TriggerOnAllyDeath  PassiveTrigger = "on_ally_death"
	TriggerOnKill       PassiveTrigger = "on_kill"
)

// Ability is a tagged variant over {Active, Passive}.
type Ability struct {
	ID   string
	Name string
	Kind AbilityKind

	// Active
	Cooldown           int
	Range              int
	TargetType         TargetType
	AreaSize           int
	UsableWhileStunned bool

	// Passive
	Trigger          PassiveTrigger
	TriggerThreshold float64
	InternalCooldown int
	MaxTriggers      int

	Effects []Effect
}

// validateEffect checks that an effect's parameters are coherent for its kind.
func validateEffect(e Effect) error {
	switch e.Kind {
	case EffectDamage:
		if e.DamageType == "" {
			return fmt.Errorf("damage effect missing damage type")
		}
	case EffectBuff, EffectDebuff:
		if e.Stat == "" {
			return fmt.Errorf("%s effect missing stat", e.Kind)
		}
		if e.Stackable && e.MaxStacks < 1 {
			return fmt.Errorf("%s effect stackable with maxStacks < 1", e.Kind)
		}
	case EffectStun, EffectTaunt, EffectDoT, EffectHoT:
		if e.Duration < 1 {
			return fmt.Errorf("%s effect requires duration >= 1", e.Kind)
		}
	case EffectSummon:
		if e.SummonTemplateID == "" {
			return fmt.Errorf("summon effect missing template id")
		}
	case EffectShield:
		if e.ShieldAmount <= 0 {
			return fmt.Errorf("shield effect requires positive amount")
		}
	case EffectHeal, EffectCleanse, EffectDispel:
		// no required parameters beyond Kind
	default:
		return fmt.Errorf("unknown effect kind %q", e.Kind)
	}
	return nil
}
